package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultScaleMax = 5.0

// QuestionModel belongs to a theme (standard model) or directly to a function (global model).
// Retired questions keep IsActive=false so historical responses stay readable.
type QuestionModel struct {
	QuestionID uuid.UUID  `gorm:"type:uuid;primaryKey;column:id_question" json:"id_question"`
	FonctionID uuid.UUID  `gorm:"type:uuid;not null;index:idx_questions_fonction;column:id_fonction" json:"id_fonction"`
	ThemeID    *uuid.UUID `gorm:"type:uuid;index:idx_questions_thematique;column:id_thematique" json:"id_thematique,omitempty"`
	Text       string     `gorm:"type:text;not null;column:texte" json:"texte"`
	Weight     float64    `gorm:"not null;default:1;column:ponderation" json:"ponderation"`
	ScaleMax   float64    `gorm:"not null;default:5;column:echelle_max" json:"echelle_max"`
	Order      int        `gorm:"not null;default:0;column:ordre" json:"ordre"`
	IsActive   bool       `gorm:"not null;default:true;column:actif" json:"actif"`
	CreatedAt  time.Time  `gorm:"column:date_creation;autoCreateTime" json:"date_creation"`
	UpdatedAt  time.Time  `gorm:"column:date_modification;autoUpdateTime" json:"date_modification"`
}

func (QuestionModel) TableName() string { return "questions" }

func (m *QuestionModel) BeforeCreate(tx *gorm.DB) error {
	if m.QuestionID == uuid.Nil {
		m.QuestionID = uuid.New()
	}
	if m.ScaleMax <= 0 {
		m.ScaleMax = DefaultScaleMax
	}
	if m.Weight <= 0 {
		m.Weight = 1
	}
	return nil
}

// EffectiveScaleMax guards rows written before echelle_max existed.
func (m QuestionModel) EffectiveScaleMax() float64 {
	if m.ScaleMax <= 0 {
		return DefaultScaleMax
	}
	return m.ScaleMax
}
