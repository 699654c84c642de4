package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EvaluationStatus string

const (
	EvaluationNew        EvaluationStatus = "NEW"
	EvaluationInProgress EvaluationStatus = "IN_PROGRESS"
	EvaluationCompleted  EvaluationStatus = "COMPLETED"
)

// Questionnaire model an evaluation is answered against.
type ModelType string

const (
	ModelStandard ModelType = "STANDARD" // questions grouped by theme
	ModelGlobal   ModelType = "GLOBAL"   // questions attached directly to functions
)

/*
=========================================================

	EVALUATIONS
	- score_global / niveau_global / evaluation_scores_fonction
	  are derived from reponses at finalization, never edited by hand
	- immutable once statut = COMPLETED

=========================================================
*/
type EvaluationModel struct {
	EvaluationID uuid.UUID        `gorm:"type:uuid;primaryKey;column:id_evaluation" json:"id_evaluation"`
	ActorID      uuid.UUID        `gorm:"type:uuid;not null;index:idx_evaluations_acteur;column:id_acteur" json:"id_acteur"`
	EnterpriseID uuid.UUID        `gorm:"type:uuid;not null;index:idx_evaluations_entreprise;column:id_entreprise" json:"id_entreprise"`
	ModelType    ModelType        `gorm:"type:varchar(20);not null;default:'STANDARD';column:type_modele" json:"type_modele"`
	Status       EvaluationStatus `gorm:"type:varchar(20);not null;default:'NEW';index:idx_evaluations_statut;column:statut" json:"statut"`

	GlobalScore     *float64 `gorm:"column:score_global" json:"score_global,omitempty"`
	GlobalLevel     *string  `gorm:"type:varchar(120);column:niveau_global" json:"niveau_global,omitempty"`
	DurationMinutes *int     `gorm:"column:duree_minutes" json:"duree_minutes,omitempty"`

	// scores sent by the client at submit, kept for audit only
	ClientScores datatypes.JSON `gorm:"column:scores_client" json:"scores_client,omitempty"`

	StartedAt   *time.Time `gorm:"column:date_debut" json:"date_debut,omitempty"`
	CompletedAt *time.Time `gorm:"column:date_fin" json:"date_fin,omitempty"`
	CreatedAt   time.Time  `gorm:"column:date_creation;autoCreateTime" json:"date_creation"`
	UpdatedAt   time.Time  `gorm:"column:date_modification;autoUpdateTime" json:"date_modification"`

	FonctionScores []EvaluationFonctionScoreModel `gorm:"foreignKey:EvaluationID;references:EvaluationID" json:"scores_fonctions,omitempty"`
}

func (EvaluationModel) TableName() string { return "evaluations" }

func (m *EvaluationModel) BeforeCreate(tx *gorm.DB) error {
	if m.EvaluationID == uuid.Nil {
		m.EvaluationID = uuid.New()
	}
	if m.Status == "" {
		m.Status = EvaluationNew
	}
	if m.ModelType == "" {
		m.ModelType = ModelStandard
	}
	return nil
}

func (m EvaluationModel) IsCompleted() bool { return m.Status == EvaluationCompleted }

// EvaluationFonctionScoreModel is the per-function score written at finalization.
type EvaluationFonctionScoreModel struct {
	FonctionScoreID uuid.UUID `gorm:"type:uuid;primaryKey;column:id_score_fonction" json:"id_score_fonction"`
	EvaluationID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_scores_fonction_eval,priority:1;column:id_evaluation" json:"id_evaluation"`
	FonctionID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_scores_fonction_eval,priority:2;column:id_fonction" json:"id_fonction"`
	Score           float64   `gorm:"not null;default:0;column:score" json:"score"`
	Percentage      float64   `gorm:"not null;default:0;column:pourcentage" json:"pourcentage"`
	Level           *string   `gorm:"type:varchar(120);column:niveau" json:"niveau,omitempty"`
	Answered        int       `gorm:"not null;default:0;column:nb_reponses" json:"nb_reponses"`
	UpdatedAt       time.Time `gorm:"column:date_modification;autoUpdateTime" json:"date_modification"`
}

func (EvaluationFonctionScoreModel) TableName() string { return "evaluation_scores_fonction" }

func (m *EvaluationFonctionScoreModel) BeforeCreate(tx *gorm.DB) error {
	if m.FonctionScoreID == uuid.Nil {
		m.FonctionScoreID = uuid.New()
	}
	return nil
}

// Progress of an evaluation: answered = distinct active questions with a value.
type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// Percent = round(answered/total*100), 0 when the model has no active question.
func (p Progress) Percent() int {
	if p.Total <= 0 || p.Answered <= 0 {
		return 0
	}
	if p.Answered >= p.Total {
		return 100
	}
	return int(float64(p.Answered)/float64(p.Total)*100 + 0.5)
}
