// Package store is the persistence side of the evaluation engine: response upserts,
// progress, finalization writes and the reads the state machine and scorer need.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"maturity_backend/internals/features/evaluations/model"
	"maturity_backend/internals/features/evaluations/scoring"
	actorModel "maturity_backend/internals/features/users/actors/model"
	"maturity_backend/internals/helpers/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatusReader feeds the state machine.
type StatusReader interface {
	GetActor(ctx context.Context, actorID uuid.UUID) (*actorModel.ActorModel, error)
	ListInvitations(ctx context.Context, actorID uuid.UUID) ([]model.InvitationModel, error)
	GetEvaluation(ctx context.Context, evaluationID uuid.UUID) (*model.EvaluationModel, error)
	LatestEvaluation(ctx context.Context, actorID uuid.UUID) (*model.EvaluationModel, error)
	ComputeProgress(ctx context.Context, evaluationID uuid.UUID) (model.Progress, error)
}

type ResponseStore interface {
	UpsertResponse(ctx context.Context, evaluationID uuid.UUID, in ResponseInput) (*model.ResponseModel, error)
	UpsertResponses(ctx context.Context, evaluationID uuid.UUID, in []ResponseInput) (int, error)
	ListResponses(ctx context.Context, evaluationID uuid.UUID) ([]model.ResponseModel, error)
	ComputeProgress(ctx context.Context, evaluationID uuid.UUID) (model.Progress, error)
}

type ScoreWriter interface {
	Finalize(ctx context.Context, evaluationID uuid.UUID, in FinalizeInput) (*model.EvaluationModel, scoring.Tree, error)
}

type HierarchyReader interface {
	LoadHierarchy(ctx context.Context, modelType model.ModelType) (scoring.Hierarchy, error)
	AnsweredValues(ctx context.Context, evaluationID uuid.UUID) (map[uuid.UUID]float64, error)
}

type ResponseInput struct {
	QuestionID uuid.UUID
	Value      *float64
	Comment    *string
}

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithClock replaces the time source (tests, sweeps).
func (s *Store) WithClock(now func() time.Time) *Store {
	cp := *s
	cp.now = now
	return &cp
}

func (s *Store) DB() *gorm.DB { return s.db }

func isSQLite(db *gorm.DB) bool {
	return strings.EqualFold(db.Dialector.Name(), "sqlite")
}

// lockEvaluation loads the evaluation row inside tx, FOR UPDATE where the dialect has it.
func lockEvaluation(tx *gorm.DB, evaluationID uuid.UUID) (*model.EvaluationModel, error) {
	q := tx
	if !isSQLite(tx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var ev model.EvaluationModel
	if err := q.Where("id_evaluation = ?", evaluationID).Take(&ev).Error; err != nil {
		return nil, notFound(err, "evaluation %s not found", evaluationID)
	}
	return &ev, nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(format, args...)
	}
	return err
}

/* ===== reads ===== */

func (s *Store) GetActor(ctx context.Context, actorID uuid.UUID) (*actorModel.ActorModel, error) {
	var a actorModel.ActorModel
	if err := s.db.WithContext(ctx).Where("id_acteur = ?", actorID).Take(&a).Error; err != nil {
		return nil, notFound(err, "actor %s not found", actorID)
	}
	return &a, nil
}

func (s *Store) ListInvitations(ctx context.Context, actorID uuid.UUID) ([]model.InvitationModel, error) {
	var rows []model.InvitationModel
	err := s.db.WithContext(ctx).
		Where("id_acteur = ?", actorID).
		Order("date_creation DESC").
		Find(&rows).Error
	return rows, err
}

func (s *Store) GetEvaluation(ctx context.Context, evaluationID uuid.UUID) (*model.EvaluationModel, error) {
	var ev model.EvaluationModel
	err := s.db.WithContext(ctx).
		Preload("FonctionScores").
		Where("id_evaluation = ?", evaluationID).
		Take(&ev).Error
	if err != nil {
		return nil, notFound(err, "evaluation %s not found", evaluationID)
	}
	return &ev, nil
}

// LatestEvaluation returns nil, nil when the actor never started one.
func (s *Store) LatestEvaluation(ctx context.Context, actorID uuid.UUID) (*model.EvaluationModel, error) {
	var ev model.EvaluationModel
	err := s.db.WithContext(ctx).
		Where("id_acteur = ?", actorID).
		Order("date_creation DESC").
		Take(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func (s *Store) ListResponses(ctx context.Context, evaluationID uuid.UUID) ([]model.ResponseModel, error) {
	var rows []model.ResponseModel
	err := s.db.WithContext(ctx).
		Where("id_evaluation = ?", evaluationID).
		Order("date_creation ASC").
		Find(&rows).Error
	return rows, err
}
