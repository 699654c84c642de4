package store

import (
	"context"

	"maturity_backend/internals/features/evaluations/model"
	"maturity_backend/internals/features/evaluations/scoring"
	refModel "maturity_backend/internals/features/referential/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Store) LoadHierarchy(ctx context.Context, modelType model.ModelType) (scoring.Hierarchy, error) {
	return loadHierarchy(s.db.WithContext(ctx), modelType)
}

// loadHierarchy reads active functions, themes and questions plus every grid,
// keeping only the branches the model uses ("" keeps both).
func loadHierarchy(tx *gorm.DB, modelType model.ModelType) (scoring.Hierarchy, error) {
	var (
		fonctions []refModel.FonctionModel
		themes    []refModel.ThemeModel
		questions []refModel.QuestionModel
		levels    []refModel.MaturityLevelModel
	)
	db := tx.Session(&gorm.Session{NewDB: true})
	if err := db.Where("actif = ?", true).Order("ordre ASC, nom ASC").Find(&fonctions).Error; err != nil {
		return scoring.Hierarchy{}, err
	}
	if err := db.Where("actif = ?", true).Order("ordre ASC, nom ASC").Find(&themes).Error; err != nil {
		return scoring.Hierarchy{}, err
	}
	if err := db.Where("actif = ?", true).Order("ordre ASC").Find(&questions).Error; err != nil {
		return scoring.Hierarchy{}, err
	}
	if err := db.Order("score_min ASC").Find(&levels).Error; err != nil {
		return scoring.Hierarchy{}, err
	}

	fonctionGrid := map[uuid.UUID][]scoring.Range{}
	themeGrid := map[uuid.UUID][]scoring.Range{}
	for _, l := range levels {
		r := scoring.Range{
			Min:            l.ScoreMin,
			Max:            l.ScoreMax,
			Label:          l.Label,
			Description:    l.Description,
			Recommendation: l.Recommendation,
		}
		switch {
		case l.ThemeID != nil:
			themeGrid[*l.ThemeID] = append(themeGrid[*l.ThemeID], r)
		case l.FonctionID != nil:
			fonctionGrid[*l.FonctionID] = append(fonctionGrid[*l.FonctionID], r)
		}
	}

	themeQuestions := map[uuid.UUID][]scoring.QuestionInput{}
	directQuestions := map[uuid.UUID][]scoring.QuestionInput{}
	for _, q := range questions {
		in := scoring.QuestionInput{ID: q.QuestionID, Weight: q.Weight, ScaleMax: q.EffectiveScaleMax()}
		if q.ThemeID != nil {
			if modelType != model.ModelGlobal {
				themeQuestions[*q.ThemeID] = append(themeQuestions[*q.ThemeID], in)
			}
			continue
		}
		if modelType != model.ModelStandard {
			directQuestions[q.FonctionID] = append(directQuestions[q.FonctionID], in)
		}
	}

	themesOf := map[uuid.UUID][]scoring.ThemeInput{}
	for _, t := range themes {
		qs := themeQuestions[t.ThemeID]
		if len(qs) == 0 {
			continue
		}
		themesOf[t.FonctionID] = append(themesOf[t.FonctionID], scoring.ThemeInput{
			ID:        t.ThemeID,
			Name:      t.Name,
			Questions: qs,
			Ranges:    themeGrid[t.ThemeID],
		})
	}

	h := scoring.Hierarchy{Fonctions: make([]scoring.FonctionInput, 0, len(fonctions))}
	for _, f := range fonctions {
		fi := scoring.FonctionInput{
			ID:        f.FonctionID,
			Name:      f.Name,
			Weight:    f.Weight,
			Themes:    themesOf[f.FonctionID],
			Questions: directQuestions[f.FonctionID],
			Ranges:    fonctionGrid[f.FonctionID],
		}
		if len(fi.Themes) == 0 && len(fi.Questions) == 0 {
			continue
		}
		h.Fonctions = append(h.Fonctions, fi)
	}
	return h, nil
}

func withinHierarchy(h scoring.Hierarchy, values map[uuid.UUID]float64) map[uuid.UUID]float64 {
	out := make(map[uuid.UUID]float64, len(values))
	keep := func(qs []scoring.QuestionInput) {
		for _, q := range qs {
			if v, ok := values[q.ID]; ok {
				out[q.ID] = v
			}
		}
	}
	for _, f := range h.Fonctions {
		keep(f.Questions)
		for _, t := range f.Themes {
			keep(t.Questions)
		}
	}
	return out
}

func (s *Store) AnsweredValues(ctx context.Context, evaluationID uuid.UUID) (map[uuid.UUID]float64, error) {
	return answeredValues(s.db.WithContext(ctx), evaluationID)
}

func answeredValues(tx *gorm.DB, evaluationID uuid.UUID) (map[uuid.UUID]float64, error) {
	var rows []model.ResponseModel
	err := tx.Session(&gorm.Session{NewDB: true}).
		Where("id_evaluation = ? AND valeur IS NOT NULL", evaluationID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]float64, len(rows))
	for _, r := range rows {
		out[r.QuestionID] = *r.Value
	}
	return out, nil
}
