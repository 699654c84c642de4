package dto

import (
	"time"

	"maturity_backend/internals/features/enterprises/model"

	"github.com/google/uuid"
)

type EnterpriseDTO struct {
	EnterpriseID uuid.UUID `json:"id_entreprise"`
	Name         string    `json:"nom"`
	Sector       string    `json:"secteur"`
	Size         string    `json:"taille,omitempty"`
	CreatedAt    time.Time `json:"date_creation"`
}

func ToEnterpriseDTO(m model.EnterpriseModel) EnterpriseDTO {
	return EnterpriseDTO{
		EnterpriseID: m.EnterpriseID,
		Name:         m.Name,
		Sector:       m.Sector,
		Size:         m.Size,
		CreatedAt:    m.CreatedAt,
	}
}

type ListQuery struct {
	Search string `query:"q" validate:"omitempty,max=100"`
	Sector string `query:"secteur" validate:"omitempty,max=120"`
}
