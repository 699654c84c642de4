package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ThemeModel struct {
	ThemeID    uuid.UUID `gorm:"type:uuid;primaryKey;column:id_thematique" json:"id_thematique"`
	FonctionID uuid.UUID `gorm:"type:uuid;not null;index:idx_thematiques_fonction;column:id_fonction" json:"id_fonction"`
	Name       string    `gorm:"type:varchar(160);not null;column:nom" json:"nom"`
	Order      int       `gorm:"not null;default:0;column:ordre" json:"ordre"`
	IsActive   bool      `gorm:"not null;default:true;column:actif" json:"actif"`
	CreatedAt  time.Time `gorm:"column:date_creation;autoCreateTime" json:"date_creation"`

	Levels []MaturityLevelModel `gorm:"foreignKey:ThemeID;references:ThemeID" json:"niveaux,omitempty"`
}

func (ThemeModel) TableName() string { return "thematiques" }

func (m *ThemeModel) BeforeCreate(tx *gorm.DB) error {
	if m.ThemeID == uuid.Nil {
		m.ThemeID = uuid.New()
	}
	return nil
}
