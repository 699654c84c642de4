package store

import (
	"context"

	"maturity_backend/internals/features/evaluations/model"
	"maturity_backend/internals/features/evaluations/scoring"
	"maturity_backend/internals/helpers/apperror"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FinalizeInput struct {
	DurationMinutes *int
	// ClientScores is stored as sent, for audit. The server never trusts it.
	ClientScores datatypes.JSON
}

var fonctionScoreConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "id_evaluation"}, {Name: "id_fonction"}},
	DoUpdates: clause.AssignmentColumns([]string{"score", "pourcentage", "niveau", "nb_reponses", "date_modification"}),
}

// Finalize scores the evaluation from its stored responses and marks it COMPLETED,
// all in one transaction. A concurrent or repeated call gets a Conflict.
func (s *Store) Finalize(ctx context.Context, evaluationID uuid.UUID, in FinalizeInput) (*model.EvaluationModel, scoring.Tree, error) {
	var tree scoring.Tree
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		tree, err = s.FinalizeTx(tx, evaluationID, in)
		return err
	})
	if err != nil {
		return nil, scoring.Tree{}, err
	}
	ev, err := s.GetEvaluation(ctx, evaluationID)
	if err != nil {
		return nil, scoring.Tree{}, err
	}
	return ev, tree, nil
}

func (s *Store) FinalizeTx(tx *gorm.DB, evaluationID uuid.UUID, in FinalizeInput) (scoring.Tree, error) {
	ev, err := lockEvaluation(tx, evaluationID)
	if err != nil {
		return scoring.Tree{}, err
	}
	if ev.IsCompleted() {
		return scoring.Tree{}, apperror.Conflict("evaluation %s is already completed", evaluationID)
	}

	h, err := loadHierarchy(tx, ev.ModelType)
	if err != nil {
		return scoring.Tree{}, err
	}
	values, err := answeredValues(tx, evaluationID)
	if err != nil {
		return scoring.Tree{}, err
	}
	// answers to retired or other-model questions do not count
	values = withinHierarchy(h, values)
	if len(values) == 0 {
		return scoring.Tree{}, apperror.Conflict("evaluation %s has no response to score", evaluationID)
	}
	tree := scoring.BuildTree(h, values)

	now := s.now()
	updates := map[string]any{
		"statut":       model.EvaluationCompleted,
		"score_global": tree.Score,
		"date_fin":     now,
	}
	if tree.Level != nil {
		updates["niveau_global"] = tree.Level.Label
	}
	if ev.StartedAt == nil {
		updates["date_debut"] = now
	}
	if in.DurationMinutes != nil {
		updates["duree_minutes"] = *in.DurationMinutes
	}
	if len(in.ClientScores) > 0 {
		updates["scores_client"] = in.ClientScores
	}

	res := tx.Model(&model.EvaluationModel{}).
		Where("id_evaluation = ? AND statut <> ?", evaluationID, model.EvaluationCompleted).
		Updates(updates)
	if res.Error != nil {
		return scoring.Tree{}, res.Error
	}
	if res.RowsAffected == 0 {
		return scoring.Tree{}, apperror.Conflict("evaluation %s is already completed", evaluationID)
	}

	rows := make([]model.EvaluationFonctionScoreModel, 0, len(tree.Fonctions))
	for _, f := range tree.Fonctions {
		row := model.EvaluationFonctionScoreModel{
			EvaluationID: evaluationID,
			FonctionID:   f.ID,
			Score:        f.Score,
			Percentage:   f.Percentage,
			Answered:     f.Answered,
		}
		if f.Level != nil {
			label := f.Level.Label
			row.Level = &label
		}
		rows = append(rows, row)
	}
	if len(rows) > 0 {
		if err := tx.Clauses(fonctionScoreConflict).Create(&rows).Error; err != nil {
			return scoring.Tree{}, err
		}
	}

	if err := tx.Model(&model.InvitationModel{}).
		Where("id_evaluation = ? AND statut = ?", evaluationID, model.InvitationAccepted).
		Update("statut", model.InvitationCompleted).Error; err != nil {
		return scoring.Tree{}, err
	}
	return tree, nil
}
