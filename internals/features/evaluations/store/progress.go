package store

import (
	"context"

	"maturity_backend/internals/features/evaluations/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// activeQuestions scopes "questions q" to the active questions of a model:
// STANDARD = theme questions, GLOBAL = function-level questions, "" = both.
func activeQuestions(tx *gorm.DB, modelType model.ModelType) *gorm.DB {
	q := tx.Table("questions AS q").
		Joins("JOIN fonctions f ON f.id_fonction = q.id_fonction AND f.actif = ?", true).
		Where("q.actif = ?", true)

	switch modelType {
	case model.ModelStandard:
		q = q.Joins("JOIN thematiques t ON t.id_thematique = q.id_thematique AND t.actif = ?", true)
	case model.ModelGlobal:
		q = q.Where("q.id_thematique IS NULL")
	default:
		q = q.Joins("LEFT JOIN thematiques t ON t.id_thematique = q.id_thematique").
			Where("q.id_thematique IS NULL OR t.actif = ?", true)
	}
	return q
}

func (s *Store) ComputeProgress(ctx context.Context, evaluationID uuid.UUID) (model.Progress, error) {
	var ev model.EvaluationModel
	if err := s.db.WithContext(ctx).Where("id_evaluation = ?", evaluationID).Take(&ev).Error; err != nil {
		return model.Progress{}, notFound(err, "evaluation %s not found", evaluationID)
	}
	return progressOf(s.db.WithContext(ctx), &ev)
}

func progressOf(tx *gorm.DB, ev *model.EvaluationModel) (model.Progress, error) {
	var total int64
	if err := activeQuestions(tx.Session(&gorm.Session{NewDB: true}), ev.ModelType).
		Count(&total).Error; err != nil {
		return model.Progress{}, err
	}

	var answered int64
	err := activeQuestions(tx.Session(&gorm.Session{NewDB: true}), ev.ModelType).
		Joins("JOIN reponses r ON r.id_question = q.id_question").
		Where("r.id_evaluation = ? AND r.valeur IS NOT NULL", ev.EvaluationID).
		Distinct("q.id_question").
		Count(&answered).Error
	if err != nil {
		return model.Progress{}, err
	}
	return model.Progress{Answered: int(answered), Total: int(total)}, nil
}
