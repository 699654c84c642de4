package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EnterpriseModel is the tenant boundary: it owns actors and evaluations.
type EnterpriseModel struct {
	EnterpriseID uuid.UUID `gorm:"type:uuid;primaryKey;column:id_entreprise" json:"id_entreprise"`
	Name         string    `gorm:"type:varchar(200);not null;column:nom" json:"nom"`
	Sector       string    `gorm:"type:varchar(120);column:secteur" json:"secteur"`
	Size         string    `gorm:"type:varchar(40);column:taille" json:"taille,omitempty"`
	CreatedAt    time.Time `gorm:"column:date_creation;autoCreateTime" json:"date_creation"`
	UpdatedAt    time.Time `gorm:"column:date_modification;autoUpdateTime" json:"date_modification"`
}

func (EnterpriseModel) TableName() string { return "entreprises" }

func (m *EnterpriseModel) BeforeCreate(tx *gorm.DB) error {
	if m.EnterpriseID == uuid.Nil {
		m.EnterpriseID = uuid.New()
	}
	return nil
}
