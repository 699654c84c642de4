package store

import (
	"context"
	"fmt"

	"maturity_backend/internals/features/evaluations/model"
	"maturity_backend/internals/features/evaluations/scoring"
	refModel "maturity_backend/internals/features/referential/model"
	"maturity_backend/internals/helpers/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var responseConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "id_evaluation"}, {Name: "id_question"}},
	DoUpdates: clause.AssignmentColumns([]string{"valeur", "commentaire", "score", "date_modification"}),
}

// UpsertResponse writes one answer; a second call for the same question overwrites it.
func (s *Store) UpsertResponse(ctx context.Context, evaluationID uuid.UUID, in ResponseInput) (*model.ResponseModel, error) {
	var out model.ResponseModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.writeResponses(tx, evaluationID, []ResponseInput{in}); err != nil {
			return err
		}
		return tx.Where("id_evaluation = ? AND id_question = ?", evaluationID, in.QuestionID).
			Take(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpsertResponses is all-or-nothing. Duplicate question ids in one batch: last one wins.
func (s *Store) UpsertResponses(ctx context.Context, evaluationID uuid.UUID, in []ResponseInput) (int, error) {
	var n int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = s.writeResponses(tx, evaluationID, in)
		return err
	})
	return n, err
}

// UpsertResponsesTx is UpsertResponses for callers already holding a transaction.
func (s *Store) UpsertResponsesTx(tx *gorm.DB, evaluationID uuid.UUID, in []ResponseInput) (int, error) {
	return s.writeResponses(tx, evaluationID, in)
}

func (s *Store) writeResponses(tx *gorm.DB, evaluationID uuid.UUID, in []ResponseInput) (int, error) {
	ev, err := lockEvaluation(tx, evaluationID)
	if err != nil {
		return 0, err
	}
	if ev.IsCompleted() {
		return 0, apperror.Conflict("evaluation %s is completed and can no longer be modified", evaluationID)
	}

	batch := dedupe(in)
	if len(batch) == 0 {
		return 0, nil
	}

	questions, err := questionsFor(tx, ev.ModelType, batch)
	if err != nil {
		return 0, err
	}

	rows := make([]model.ResponseModel, 0, len(batch))
	fields := map[string][]string{}
	for i, r := range batch {
		q, ok := questions[r.QuestionID]
		if !ok {
			return 0, apperror.NotFound("question %s is not an active question of this evaluation", r.QuestionID)
		}
		row := model.ResponseModel{
			EvaluationID: evaluationID,
			QuestionID:   r.QuestionID,
			Value:        r.Value,
			Comment:      r.Comment,
		}
		if r.Value != nil {
			scaleMax := q.EffectiveScaleMax()
			if *r.Value < 0 || *r.Value > scaleMax {
				key := fmt.Sprintf("responses[%d].valeur", i)
				fields[key] = append(fields[key], fmt.Sprintf("must be between 0 and %g", scaleMax))
				continue
			}
			score := scoring.Round2(scoring.Normalize(*r.Value, scaleMax))
			row.Score = &score
		}
		rows = append(rows, row)
	}
	if len(fields) > 0 {
		return 0, apperror.Validation("invalid response values", fields)
	}

	if err := tx.Clauses(responseConflict).Create(&rows).Error; err != nil {
		return 0, err
	}

	if ev.Status == model.EvaluationNew {
		now := s.now()
		updates := map[string]any{"statut": model.EvaluationInProgress}
		if ev.StartedAt == nil {
			updates["date_debut"] = now
		}
		if err := tx.Model(&model.EvaluationModel{}).
			Where("id_evaluation = ?", evaluationID).
			Updates(updates).Error; err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func dedupe(in []ResponseInput) []ResponseInput {
	pos := make(map[uuid.UUID]int, len(in))
	out := make([]ResponseInput, 0, len(in))
	for _, r := range in {
		if i, ok := pos[r.QuestionID]; ok {
			out[i] = r
			continue
		}
		pos[r.QuestionID] = len(out)
		out = append(out, r)
	}
	return out
}

func questionsFor(tx *gorm.DB, modelType model.ModelType, batch []ResponseInput) (map[uuid.UUID]refModel.QuestionModel, error) {
	ids := make([]uuid.UUID, 0, len(batch))
	for _, r := range batch {
		ids = append(ids, r.QuestionID)
	}
	var rows []refModel.QuestionModel
	err := activeQuestions(tx.Session(&gorm.Session{NewDB: true}), modelType).
		Select("q.*").
		Where("q.id_question IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]refModel.QuestionModel, len(rows))
	for _, q := range rows {
		out[q.QuestionID] = q
	}
	return out, nil
}
