package store

import (
	"context"
	"errors"

	"maturity_backend/internals/features/evaluations/model"
	"maturity_backend/internals/features/evaluations/scoring"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StartInput struct {
	ActorID      uuid.UUID
	EnterpriseID uuid.UUID
	ModelType    model.ModelType
}

// StartEvaluation returns the actor's open evaluation of that model, or creates
// an IN_PROGRESS one. created reports which.
func (s *Store) StartEvaluation(ctx context.Context, in StartInput) (ev *model.EvaluationModel, created bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open model.EvaluationModel
		qerr := tx.Where("id_acteur = ? AND type_modele = ? AND statut <> ?",
			in.ActorID, in.ModelType, model.EvaluationCompleted).
			Order("date_creation DESC").
			Take(&open).Error
		switch {
		case qerr == nil:
			if open.Status == model.EvaluationNew {
				now := s.now()
				if err := tx.Model(&open).Updates(map[string]any{
					"statut":     model.EvaluationInProgress,
					"date_debut": now,
				}).Error; err != nil {
					return err
				}
				open.Status = model.EvaluationInProgress
				open.StartedAt = &now
			}
			ev = &open
			return nil
		case !errors.Is(qerr, gorm.ErrRecordNotFound):
			return qerr
		}

		now := s.now()
		fresh := model.EvaluationModel{
			ActorID:      in.ActorID,
			EnterpriseID: in.EnterpriseID,
			ModelType:    in.ModelType,
			Status:       model.EvaluationInProgress,
			StartedAt:    &now,
		}
		if err := tx.Create(&fresh).Error; err != nil {
			return err
		}
		ev, created = &fresh, true
		return nil
	})
	return ev, created, err
}

type ListFilter struct {
	Status       model.EvaluationStatus
	EnterpriseID *uuid.UUID
	Offset       int
	Limit        int
	// Scope restricts visibility; applied before any other filter.
	Scope func(*gorm.DB) *gorm.DB
}

func (s *Store) ListEvaluations(ctx context.Context, f ListFilter) ([]model.EvaluationModel, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.EvaluationModel{})
	if f.Scope != nil {
		q = q.Scopes(f.Scope)
	}
	if f.Status != "" {
		q = q.Where("statut = ?", f.Status)
	}
	if f.EnterpriseID != nil {
		q = q.Where("id_entreprise = ?", *f.EnterpriseID)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.EvaluationModel
	err := q.Order("date_creation DESC").Offset(f.Offset).Limit(f.Limit).Find(&rows).Error
	return rows, total, err
}

type EnterpriseRollup struct {
	EnterpriseID uuid.UUID    `json:"id_entreprise"`
	Evaluations  int64        `json:"nb_evaluations"`
	Tree         scoring.Tree `json:"scores"`
}

// EnterpriseRollup averages, per question, the answers of every completed evaluation
// of the enterprise and scores the full hierarchy from those averages.
func (s *Store) EnterpriseRollup(ctx context.Context, enterpriseID uuid.UUID) (EnterpriseRollup, error) {
	db := s.db.WithContext(ctx)
	out := EnterpriseRollup{EnterpriseID: enterpriseID}

	completed := db.Model(&model.EvaluationModel{}).
		Select("id_evaluation").
		Where("id_entreprise = ? AND statut = ?", enterpriseID, model.EvaluationCompleted)

	if err := db.Model(&model.EvaluationModel{}).
		Where("id_entreprise = ? AND statut = ?", enterpriseID, model.EvaluationCompleted).
		Count(&out.Evaluations).Error; err != nil {
		return out, err
	}

	var avgs []struct {
		QuestionID uuid.UUID `gorm:"column:id_question"`
		Value      float64   `gorm:"column:valeur"`
	}
	err := db.Model(&model.ResponseModel{}).
		Select("id_question, AVG(valeur) AS valeur").
		Where("valeur IS NOT NULL AND id_evaluation IN (?)", completed).
		Group("id_question").
		Scan(&avgs).Error
	if err != nil {
		return out, err
	}

	values := make(map[uuid.UUID]float64, len(avgs))
	for _, a := range avgs {
		values[a.QuestionID] = a.Value
	}
	h, err := loadHierarchy(db, "")
	if err != nil {
		return out, err
	}
	out.Tree = scoring.BuildTree(h, values)
	return out, nil
}
