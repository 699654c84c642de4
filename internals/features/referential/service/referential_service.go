package service

import (
	"context"
	"errors"
	"log"

	evalModel "maturity_backend/internals/features/evaluations/model"
	"maturity_backend/internals/features/evaluations/scoring"
	"maturity_backend/internals/features/referential/dto"
	"maturity_backend/internals/features/referential/model"
	"maturity_backend/internals/helpers/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReferentialService struct {
	db *gorm.DB
}

func NewReferentialService(db *gorm.DB) *ReferentialService {
	return &ReferentialService{db: db}
}

// Questionnaire lists active functions with the questions of the given model:
// theme questions for STANDARD, direct function questions for GLOBAL.
func (s *ReferentialService) Questionnaire(ctx context.Context, mt evalModel.ModelType) ([]dto.FonctionDTO, error) {
	db := s.db.WithContext(ctx)

	var fonctions []model.FonctionModel
	if err := db.Where("actif = ?", true).Order("ordre ASC, nom ASC").Find(&fonctions).Error; err != nil {
		return nil, err
	}
	var themes []model.ThemeModel
	if err := db.Where("actif = ?", true).Order("ordre ASC, nom ASC").Find(&themes).Error; err != nil {
		return nil, err
	}
	var questions []model.QuestionModel
	if err := db.Where("actif = ?", true).Order("ordre ASC, date_creation ASC").Find(&questions).Error; err != nil {
		return nil, err
	}

	byTheme := map[uuid.UUID][]dto.QuestionDTO{}
	direct := map[uuid.UUID][]dto.QuestionDTO{}
	for _, q := range questions {
		switch {
		case q.ThemeID != nil && mt == evalModel.ModelStandard:
			byTheme[*q.ThemeID] = append(byTheme[*q.ThemeID], dto.ToQuestionDTO(q))
		case q.ThemeID == nil && mt == evalModel.ModelGlobal:
			direct[q.FonctionID] = append(direct[q.FonctionID], dto.ToQuestionDTO(q))
		}
	}
	themesOf := map[uuid.UUID][]dto.ThemeDTO{}
	for _, t := range themes {
		if qs := byTheme[t.ThemeID]; len(qs) > 0 {
			themesOf[t.FonctionID] = append(themesOf[t.FonctionID], dto.ThemeDTO{
				ThemeID: t.ThemeID, Name: t.Name, Order: t.Order, Questions: qs,
			})
		}
	}

	out := make([]dto.FonctionDTO, 0, len(fonctions))
	for _, f := range fonctions {
		fd := dto.FonctionDTO{
			FonctionID:  f.FonctionID,
			Name:        f.Name,
			Description: f.Description,
			Order:       f.Order,
			Themes:      themesOf[f.FonctionID],
			Questions:   direct[f.FonctionID],
		}
		if len(fd.Themes) == 0 && len(fd.Questions) == 0 {
			continue
		}
		out = append(out, fd)
	}
	return out, nil
}

// Owner selects which node a grid hangs off.
type Owner struct {
	FonctionID *uuid.UUID
	ThemeID    *uuid.UUID
}

func (o Owner) scope(db *gorm.DB) *gorm.DB {
	if o.ThemeID != nil {
		return db.Where("id_thematique = ?", *o.ThemeID)
	}
	return db.Where("id_fonction = ? AND id_thematique IS NULL", *o.FonctionID)
}

func (s *ReferentialService) Levels(ctx context.Context, o Owner) ([]dto.LevelDTO, error) {
	if err := s.ensureOwner(s.db.WithContext(ctx), o); err != nil {
		return nil, err
	}
	var rows []model.MaturityLevelModel
	if err := s.db.WithContext(ctx).Scopes(o.scope).Order("score_min ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return dto.ToLevelDTOs(rows), nil
}

// ReplaceLevels validates the grid then swaps it in one transaction.
func (s *ReferentialService) ReplaceLevels(ctx context.Context, o Owner, ranges []scoring.Range) ([]dto.LevelDTO, error) {
	if err := scoring.ValidateRanges(ranges); err != nil {
		return nil, err
	}

	var rows []model.MaturityLevelModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureOwner(tx, o); err != nil {
			return err
		}
		if err := tx.Scopes(o.scope).Delete(&model.MaturityLevelModel{}).Error; err != nil {
			return err
		}
		for _, r := range ranges {
			rows = append(rows, model.MaturityLevelModel{
				FonctionID:     o.FonctionID,
				ThemeID:        o.ThemeID,
				ScoreMin:       r.Min,
				ScoreMax:       r.Max,
				Label:          r.Label,
				Description:    r.Description,
				Recommendation: r.Recommendation,
			})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[ReferentialService] grid replaced fonction=%v thematique=%v (%d levels)", o.FonctionID, o.ThemeID, len(rows))
	return s.Levels(ctx, o)
}

func (s *ReferentialService) ensureOwner(db *gorm.DB, o Owner) error {
	var err error
	switch {
	case o.ThemeID != nil:
		err = db.Select("id_thematique").Where("id_thematique = ?", *o.ThemeID).Take(&model.ThemeModel{}).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("theme %s not found", *o.ThemeID)
		}
	case o.FonctionID != nil:
		err = db.Select("id_fonction").Where("id_fonction = ?", *o.FonctionID).Take(&model.FonctionModel{}).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("fonction %s not found", *o.FonctionID)
		}
	default:
		return apperror.Internal(nil, "grid owner is empty")
	}
	return err
}
