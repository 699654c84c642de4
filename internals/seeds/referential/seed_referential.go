package referential

import (
	"fmt"
	"log"
	"os"

	"maturity_backend/internals/features/evaluations/scoring"
	"maturity_backend/internals/features/referential/model"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LevelSeed struct {
	ScoreMin       float64 `json:"score_min"`
	ScoreMax       float64 `json:"score_max"`
	Label          string  `json:"niveau"`
	Description    string  `json:"description"`
	Recommendation string  `json:"recommandations"`
}

type QuestionSeed struct {
	Text     string  `json:"texte"`
	Weight   float64 `json:"ponderation"`
	ScaleMax float64 `json:"echelle_max"`
}

type ThemeSeed struct {
	Name      string         `json:"nom"`
	Questions []QuestionSeed `json:"questions"`
	Levels    []LevelSeed    `json:"niveaux"`
}

// FonctionSeed: Themes feed the STANDARD model, Questions (no theme) the GLOBAL one.
type FonctionSeed struct {
	Name        string         `json:"nom"`
	Description string         `json:"description"`
	Weight      *float64       `json:"poids"`
	Themes      []ThemeSeed    `json:"thematiques"`
	Questions   []QuestionSeed `json:"questions"`
	Levels      []LevelSeed    `json:"niveaux"`
}

func SeedReferentialFromJSON(db *gorm.DB, filePath string) (int, error) {
	log.Println("📥 Reading seed file:", filePath)

	content, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", filePath, err)
	}
	var data []FonctionSeed
	if err := sonic.Unmarshal(content, &data); err != nil {
		return 0, fmt.Errorf("decode %s: %w", filePath, err)
	}
	return Seed(db, data)
}

// Seed inserts each function with its tree; functions already present by name are skipped.
func Seed(db *gorm.DB, data []FonctionSeed) (int, error) {
	created := 0
	for i, item := range data {
		var n int64
		if err := db.Model(&model.FonctionModel{}).Where("nom = ?", item.Name).Count(&n).Error; err != nil {
			return created, err
		}
		if n > 0 {
			log.Printf("ℹ️ Function %q already exists, skipping", item.Name)
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			return seedFonction(tx, i+1, item)
		})
		if err != nil {
			return created, fmt.Errorf("function %q: %w", item.Name, err)
		}
		created++
	}
	return created, nil
}

func seedFonction(tx *gorm.DB, order int, item FonctionSeed) error {
	f := model.FonctionModel{
		Name:        item.Name,
		Description: item.Description,
		Weight:      item.Weight,
		Order:       order,
		IsActive:    true,
	}
	if err := tx.Create(&f).Error; err != nil {
		return err
	}
	for j, q := range item.Questions {
		row := q.toModel(f.FonctionID, nil, j+1)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	if err := createLevels(tx, item.Levels, &f.FonctionID, nil); err != nil {
		return err
	}

	for j, th := range item.Themes {
		theme := model.ThemeModel{FonctionID: f.FonctionID, Name: th.Name, Order: j + 1, IsActive: true}
		if err := tx.Create(&theme).Error; err != nil {
			return err
		}
		for k, q := range th.Questions {
			row := q.toModel(f.FonctionID, &theme.ThemeID, k+1)
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		if err := createLevels(tx, th.Levels, nil, &theme.ThemeID); err != nil {
			return err
		}
	}
	return nil
}

func (q QuestionSeed) toModel(fonctionID uuid.UUID, themeID *uuid.UUID, order int) model.QuestionModel {
	return model.QuestionModel{
		FonctionID: fonctionID,
		ThemeID:    themeID,
		Text:       q.Text,
		Weight:     q.Weight,
		ScaleMax:   q.ScaleMax,
		Order:      order,
		IsActive:   true,
	}
}

func createLevels(tx *gorm.DB, levels []LevelSeed, fonctionID, themeID *uuid.UUID) error {
	if len(levels) == 0 {
		return nil
	}
	ranges := make([]scoring.Range, 0, len(levels))
	for _, l := range levels {
		ranges = append(ranges, scoring.Range{Min: l.ScoreMin, Max: l.ScoreMax, Label: l.Label})
	}
	if err := scoring.ValidateRanges(ranges); err != nil {
		return err
	}
	rows := make([]model.MaturityLevelModel, 0, len(levels))
	for _, l := range levels {
		rows = append(rows, model.MaturityLevelModel{
			FonctionID:     fonctionID,
			ThemeID:        themeID,
			ScoreMin:       l.ScoreMin,
			ScoreMax:       l.ScoreMax,
			Label:          l.Label,
			Description:    l.Description,
			Recommendation: l.Recommendation,
		})
	}
	return tx.Create(&rows).Error
}
