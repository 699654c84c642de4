package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaturityLevelModel is one row of an interpretation grid, attached to exactly one
// function or one theme.
type MaturityLevelModel struct {
	LevelID        uuid.UUID  `gorm:"type:uuid;primaryKey;column:id_niveau" json:"id_niveau"`
	FonctionID     *uuid.UUID `gorm:"type:uuid;index:idx_niveaux_fonction;column:id_fonction" json:"id_fonction,omitempty"`
	ThemeID        *uuid.UUID `gorm:"type:uuid;index:idx_niveaux_thematique;column:id_thematique" json:"id_thematique,omitempty"`
	ScoreMin       float64    `gorm:"not null;column:score_min" json:"score_min"`
	ScoreMax       float64    `gorm:"not null;column:score_max" json:"score_max"`
	Label          string     `gorm:"type:varchar(120);not null;column:niveau" json:"niveau"`
	Description    string     `gorm:"type:text;column:description" json:"description,omitempty"`
	Recommendation string     `gorm:"type:text;column:recommandations" json:"recommandations,omitempty"`
	CreatedAt      time.Time  `gorm:"column:date_creation;autoCreateTime" json:"date_creation"`
}

func (MaturityLevelModel) TableName() string { return "niveaux_maturite" }

func (m *MaturityLevelModel) BeforeCreate(tx *gorm.DB) error {
	if m.LevelID == uuid.Nil {
		m.LevelID = uuid.New()
	}
	return nil
}
