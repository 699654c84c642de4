package service

import (
	"context"
	"log"
	"time"

	"maturity_backend/internals/features/access/scope"
	"maturity_backend/internals/features/evaluations/dto"
	"maturity_backend/internals/features/evaluations/model"
	"maturity_backend/internals/features/evaluations/scoring"
	"maturity_backend/internals/features/evaluations/store"
	"maturity_backend/internals/helpers/apperror"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EvaluationService orchestrates the store, the scorer and the access checks.
type EvaluationService struct {
	store  *store.Store
	status store.StatusReader
	now    func() time.Time
}

func NewEvaluationService(st *store.Store) *EvaluationService {
	return &EvaluationService{store: st, status: st, now: time.Now}
}

// WithStatusReader swaps the reader behind CheckStatus.
func (s *EvaluationService) WithStatusReader(r store.StatusReader) *EvaluationService {
	cp := *s
	cp.status = r
	return &cp
}

func (s *EvaluationService) WithClock(now func() time.Time) *EvaluationService {
	cp := *s
	cp.now = now
	return &cp
}

/* =============================
   Reads
============================= */

// Get returns the evaluation with its current progress.
func (s *EvaluationService) Get(ctx context.Context, p scope.Principal, id uuid.UUID) (dto.EvaluationDTO, error) {
	ev, err := s.viewable(ctx, p, id)
	if err != nil {
		return dto.EvaluationDTO{}, err
	}
	progress, err := s.store.ComputeProgress(ctx, id)
	if err != nil {
		return dto.EvaluationDTO{}, err
	}
	out := dto.ToEvaluationDTO(*ev)
	out.Progress = &progress
	return out, nil
}

func (s *EvaluationService) List(ctx context.Context, p scope.Principal, f store.ListFilter) ([]dto.EvaluationDTO, int64, error) {
	if f.EnterpriseID != nil {
		if err := p.EnsureEnterprise(*f.EnterpriseID); err != nil {
			return nil, 0, err
		}
	}
	f.Scope = p.ScopeQuery("id_entreprise", "id_acteur")
	rows, total, err := s.store.ListEvaluations(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return dto.ToEvaluationDTOs(rows), total, nil
}

// Results scores the evaluation from its stored answers, completed or not.
func (s *EvaluationService) Results(ctx context.Context, p scope.Principal, id uuid.UUID) (scoring.Tree, error) {
	ev, err := s.viewable(ctx, p, id)
	if err != nil {
		return scoring.Tree{}, err
	}
	h, err := s.store.LoadHierarchy(ctx, ev.ModelType)
	if err != nil {
		return scoring.Tree{}, err
	}
	values, err := s.store.AnsweredValues(ctx, id)
	if err != nil {
		return scoring.Tree{}, err
	}
	return scoring.BuildTree(h, values), nil
}

func (s *EvaluationService) ListResponses(ctx context.Context, p scope.Principal, id uuid.UUID) ([]dto.ResponseDTO, error) {
	if _, err := s.viewable(ctx, p, id); err != nil {
		return nil, err
	}
	rows, err := s.store.ListResponses(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ResponseDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ToResponseDTO(r))
	}
	return out, nil
}

/* =============================
   Writes
============================= */

// UpdateProgress saves the step's answers and completes the evaluation once the
// client reports the last step, in one transaction. Completion needs
// totalSteps > 0 and currentStep >= totalSteps; a 0/0 report only saves answers.
func (s *EvaluationService) UpdateProgress(ctx context.Context, p scope.Principal, req dto.UpdateProgressRequest) (dto.UpdateProgressResponse, error) {
	id := uuid.MustParse(req.EvaluationID)
	if _, err := s.mutable(ctx, p, id); err != nil {
		return dto.UpdateProgressResponse{}, err
	}

	complete := req.TotalSteps > 0 && req.CurrentStep >= req.TotalSteps
	var saved int
	err := s.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if saved, err = s.store.UpsertResponsesTx(tx, id, dto.ToResponseInputs(req.Responses)); err != nil {
			return err
		}
		if !complete {
			return nil
		}
		tree, err := s.store.FinalizeTx(tx, id, store.FinalizeInput{})
		if err != nil {
			return err
		}
		log.Printf("[EvaluationService] ✅ evaluation %s completed on last step, score=%.2f", id, tree.Score)
		return nil
	})
	if err != nil {
		return dto.UpdateProgressResponse{}, err
	}
	return dto.UpdateProgressResponse{Success: true, IsCompleted: complete, Saved: saved}, nil
}

func (s *EvaluationService) SaveBatch(ctx context.Context, p scope.Principal, id uuid.UUID, items []dto.ResponseItem) (int, error) {
	if _, err := s.mutable(ctx, p, id); err != nil {
		return 0, err
	}
	return s.store.UpsertResponses(ctx, id, dto.ToResponseInputs(items))
}

func (s *EvaluationService) SaveOne(ctx context.Context, p scope.Principal, id, questionID uuid.UUID, req dto.SaveResponseRequest) (dto.ResponseDTO, error) {
	if _, err := s.mutable(ctx, p, id); err != nil {
		return dto.ResponseDTO{}, err
	}
	row, err := s.store.UpsertResponse(ctx, id, store.ResponseInput{
		QuestionID: questionID,
		Value:      req.Value,
		Comment:    req.Comment,
	})
	if err != nil {
		return dto.ResponseDTO{}, err
	}
	return dto.ToResponseDTO(*row), nil
}

// Submit finalizes the evaluation. The scores the client computed are kept
// for audit only; the stored score always comes from the scorer.
func (s *EvaluationService) Submit(ctx context.Context, p scope.Principal, id uuid.UUID, req dto.SubmitRequest) (dto.SubmitResponse, error) {
	if _, err := s.mutable(ctx, p, id); err != nil {
		return dto.SubmitResponse{}, err
	}

	in := store.FinalizeInput{DurationMinutes: req.DurationMinutes}
	if len(req.Scores) > 0 {
		raw, err := sonic.Marshal(req.Scores)
		if err != nil {
			return dto.SubmitResponse{}, apperror.Internal(err, "encode client scores")
		}
		in.ClientScores = datatypes.JSON(raw)
	}

	ev, tree, err := s.store.Finalize(ctx, id, in)
	if err != nil {
		return dto.SubmitResponse{}, err
	}
	logDivergence(id, req.Scores, tree)

	return dto.SubmitResponse{
		Success:    true,
		Message:    "Évaluation soumise avec succès",
		Evaluation: dto.ToEvaluationDTO(*ev),
		Scores:     tree,
	}, nil
}

// logDivergence reports client-side function scores that disagree with the server's.
func logDivergence(id uuid.UUID, client map[string]float64, tree scoring.Tree) {
	if len(client) == 0 {
		return
	}
	for _, f := range tree.Fonctions {
		v, ok := client[f.ID.String()]
		if !ok {
			continue
		}
		if diff := v - f.Score; diff > 0.01 || diff < -0.01 {
			log.Printf("[EvaluationService] ⚠️ evaluation %s fonction %s: client score %.2f, server %.2f", id, f.ID, v, f.Score)
		}
	}
}

// Start returns the actor's open evaluation or opens a new one.
func (s *EvaluationService) Start(ctx context.Context, p scope.Principal, req dto.StartRequest) (dto.EvaluationDTO, bool, error) {
	var enterprise uuid.UUID
	switch {
	case req.EnterpriseID != nil:
		enterprise = uuid.MustParse(*req.EnterpriseID)
		if err := p.EnsureEnterprise(enterprise); err != nil {
			return dto.EvaluationDTO{}, false, err
		}
	case p.Actor.EnterpriseID != nil:
		enterprise = *p.Actor.EnterpriseID
	default:
		return dto.EvaluationDTO{}, false, apperror.ValidationField("id_entreprise", "required for actors without an enterprise")
	}

	ev, created, err := s.store.StartEvaluation(ctx, store.StartInput{
		ActorID:      p.Actor.ID,
		EnterpriseID: enterprise,
		ModelType:    dto.ModelTypeOrDefault(req.ModelType),
	})
	if err != nil {
		return dto.EvaluationDTO{}, false, err
	}
	if created {
		log.Printf("[EvaluationService] 🆕 evaluation %s started by %s", ev.EvaluationID, p.Actor.ID)
	}
	return dto.ToEvaluationDTO(*ev), created, nil
}

func (s *EvaluationService) AcceptInvitation(ctx context.Context, p scope.Principal, token string, req dto.AcceptInvitationRequest) (dto.AcceptInvitationResponse, error) {
	var enterprise uuid.UUID
	if p.Actor.EnterpriseID != nil {
		enterprise = *p.Actor.EnterpriseID
	} else {
		inv, err := s.store.FindInvitationByToken(ctx, token)
		if err != nil {
			return dto.AcceptInvitationResponse{}, err
		}
		if inv.EnterpriseID == nil {
			return dto.AcceptInvitationResponse{}, apperror.ValidationField("id_entreprise", "invitation has no enterprise and the actor belongs to none")
		}
		enterprise = *inv.EnterpriseID
	}

	inv, ev, err := s.store.AcceptInvitation(ctx, store.AcceptInput{
		Token:        token,
		ActorID:      p.Actor.ID,
		EnterpriseID: enterprise,
		ModelType:    dto.ModelTypeOrDefault(req.ModelType),
	})
	if err != nil {
		return dto.AcceptInvitationResponse{}, err
	}
	return dto.AcceptInvitationResponse{
		Invitation: dto.InvitationDTO{
			InvitationID: inv.InvitationID,
			Status:       string(inv.Status),
			ExpiresAt:    inv.ExpiresAt,
			AcceptedAt:   inv.AcceptedAt,
			EvaluationID: inv.EvaluationID,
		},
		Evaluation: dto.ToEvaluationDTO(*ev),
		RedirectTo: "/evaluation-maturite/" + ev.EvaluationID.String(),
	}, nil
}

/* =============================
   Access
============================= */

func (s *EvaluationService) viewable(ctx context.Context, p scope.Principal, id uuid.UUID) (*model.EvaluationModel, error) {
	ev, err := s.store.GetEvaluation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanView(ev.EnterpriseID, ev.ActorID) {
		return nil, apperror.AccessDenied("access to evaluation %s denied", id)
	}
	return ev, nil
}

func (s *EvaluationService) mutable(ctx context.Context, p scope.Principal, id uuid.UUID) (*model.EvaluationModel, error) {
	ev, err := s.store.GetEvaluation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.EnsureMutate(ev.EnterpriseID, ev.ActorID); err != nil {
		return nil, err
	}
	return ev, nil
}
