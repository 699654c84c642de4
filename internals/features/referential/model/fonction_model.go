package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FonctionModel is the top content node of the assessment model (e.g. "Stratégie", "Data").
// Weight is optional: when at least one function carries one, the global score is a weighted mean.
type FonctionModel struct {
	FonctionID  uuid.UUID `gorm:"type:uuid;primaryKey;column:id_fonction" json:"id_fonction"`
	Name        string    `gorm:"type:varchar(160);not null;column:nom" json:"nom"`
	Description string    `gorm:"type:text;column:description" json:"description,omitempty"`
	Weight      *float64  `gorm:"column:poids" json:"poids,omitempty"`
	Order       int       `gorm:"not null;default:0;column:ordre" json:"ordre"`
	IsActive    bool      `gorm:"not null;default:true;column:actif" json:"actif"`
	CreatedAt   time.Time `gorm:"column:date_creation;autoCreateTime" json:"date_creation"`
	UpdatedAt   time.Time `gorm:"column:date_modification;autoUpdateTime" json:"date_modification"`

	Themes []ThemeModel         `gorm:"foreignKey:FonctionID;references:FonctionID" json:"thematiques,omitempty"`
	Levels []MaturityLevelModel `gorm:"foreignKey:FonctionID;references:FonctionID" json:"niveaux,omitempty"`
}

func (FonctionModel) TableName() string { return "fonctions" }

func (m *FonctionModel) BeforeCreate(tx *gorm.DB) error {
	if m.FonctionID == uuid.Nil {
		m.FonctionID = uuid.New()
	}
	return nil
}
