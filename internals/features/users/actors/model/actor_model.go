package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActorModel is a platform user (evaluator, manager, admin).
// EnterpriseID is nil for global roles.
type ActorModel struct {
	ActorID      uuid.UUID  `gorm:"type:uuid;primaryKey;column:id_acteur" json:"id_acteur"`
	EnterpriseID *uuid.UUID `gorm:"type:uuid;column:id_entreprise;index:idx_acteurs_entreprise" json:"id_entreprise,omitempty"`
	Email        string     `gorm:"type:varchar(160);not null;uniqueIndex:uq_acteurs_email;column:email" json:"email"`
	FullName     string     `gorm:"type:varchar(160);column:nom_prenom" json:"nom_prenom"`
	Role         string     `gorm:"type:varchar(40);not null;column:role" json:"role"`
	AccessLevel  *string    `gorm:"type:varchar(32);column:niveau_acces" json:"niveau_acces,omitempty"`
	IsActive     bool       `gorm:"not null;default:true;column:actif" json:"actif"`
	CreatedAt    time.Time  `gorm:"column:date_creation;autoCreateTime" json:"date_creation"`
	UpdatedAt    time.Time  `gorm:"column:date_modification;autoUpdateTime" json:"date_modification"`
}

func (ActorModel) TableName() string { return "acteurs" }

func (m *ActorModel) BeforeCreate(tx *gorm.DB) error {
	if m.ActorID == uuid.Nil {
		m.ActorID = uuid.New()
	}
	return nil
}
