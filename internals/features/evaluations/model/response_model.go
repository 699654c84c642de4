package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResponseModel: 1 evaluation × 1 question. Writes are upserts on that pair.
// Value nil = the question was opened (maybe commented) but not answered.
type ResponseModel struct {
	ResponseID   uuid.UUID `gorm:"type:uuid;primaryKey;column:id_reponse" json:"id_reponse"`
	EvaluationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_reponses_eval_question,priority:1;column:id_evaluation" json:"id_evaluation"`
	QuestionID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_reponses_eval_question,priority:2;index:idx_reponses_question;column:id_question" json:"id_question"`
	Value        *float64  `gorm:"column:valeur" json:"valeur"`
	Comment      *string   `gorm:"type:text;column:commentaire" json:"commentaire,omitempty"`
	Score        *float64  `gorm:"column:score" json:"score,omitempty"`
	CreatedAt    time.Time `gorm:"column:date_creation;autoCreateTime" json:"date_creation"`
	UpdatedAt    time.Time `gorm:"column:date_modification;autoUpdateTime" json:"date_modification"`
}

func (ResponseModel) TableName() string { return "reponses" }

func (m *ResponseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ResponseID == uuid.Nil {
		m.ResponseID = uuid.New()
	}
	return nil
}
