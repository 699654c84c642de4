package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "PENDING"
	InvitationAccepted  InvitationStatus = "ACCEPTED"
	InvitationExpired   InvitationStatus = "EXPIRED"
	InvitationCompleted InvitationStatus = "COMPLETED"
)

// InvitationModel links an actor to one evaluation attempt. EvaluationID is set on acceptance.
type InvitationModel struct {
	InvitationID uuid.UUID        `gorm:"type:uuid;primaryKey;column:id_invitation" json:"id_invitation"`
	ActorID      uuid.UUID        `gorm:"type:uuid;not null;index:idx_invitations_acteur;column:id_acteur" json:"id_acteur"`
	EnterpriseID *uuid.UUID       `gorm:"type:uuid;column:id_entreprise" json:"id_entreprise,omitempty"`
	EvaluationID *uuid.UUID       `gorm:"type:uuid;column:id_evaluation" json:"id_evaluation,omitempty"`
	Token        string           `gorm:"type:varchar(80);not null;uniqueIndex:uq_invitations_token;column:token" json:"token"`
	Status       InvitationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_invitations_statut;column:statut" json:"statut"`
	ExpiresAt    time.Time        `gorm:"not null;column:date_expiration" json:"date_expiration"`
	AcceptedAt   *time.Time       `gorm:"column:date_acceptation" json:"date_acceptation,omitempty"`
	CreatedAt    time.Time        `gorm:"column:date_creation;autoCreateTime" json:"date_creation"`
	UpdatedAt    time.Time        `gorm:"column:date_modification;autoUpdateTime" json:"date_modification"`
}

func (InvitationModel) TableName() string { return "invitations" }

func (m *InvitationModel) BeforeCreate(tx *gorm.DB) error {
	if m.InvitationID == uuid.Nil {
		m.InvitationID = uuid.New()
	}
	if m.Token == "" {
		m.Token = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = InvitationPending
	}
	return nil
}

func (m InvitationModel) IsExpiredAt(now time.Time) bool {
	return m.ExpiresAt.Before(now)
}
