package service

import (
	"context"
	"log"

	"maturity_backend/internals/features/access/scope"
	"maturity_backend/internals/features/evaluations/dto"
	"maturity_backend/internals/features/evaluations/lifecycle"
	"maturity_backend/internals/features/evaluations/model"
	actorModel "maturity_backend/internals/features/users/actors/model"
	"maturity_backend/internals/helpers/apperror"

	"github.com/google/uuid"
)

// CheckStatus tells the actor where they stand in the evaluation flow.
//
// Access problems are returned as errors (403/404). Anything that goes wrong
// while loading the lifecycle inputs degrades to the ERROR state instead.
func (s *EvaluationService) CheckStatus(ctx context.Context, p scope.Principal, actorID uuid.UUID) (dto.StatusResponse, error) {
	actor, err := s.status.GetActor(ctx, actorID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return dto.StatusResponse{}, err
		}
		log.Printf("[StatusService] ❌ load actor %s: %v", actorID, err)
		return degraded(), nil
	}
	if !canSeeActor(p, actor) {
		return dto.StatusResponse{}, apperror.AccessDenied("you cannot read the evaluation status of actor %s", actorID)
	}

	res, inv, ev, progress, err := s.resolveStatus(ctx, actor)
	if err != nil {
		log.Printf("[StatusService] ❌ resolve status of %s: %v", actorID, err)
		return degraded(), nil
	}
	return dto.NewStatusResponse(res, inv, ev, progress), nil
}

func (s *EvaluationService) resolveStatus(ctx context.Context, actor *actorModel.ActorModel) (lifecycle.Result, *model.InvitationModel, *model.EvaluationModel, model.Progress, error) {
	var progress model.Progress
	now := s.now()

	invs, err := s.status.ListInvitations(ctx, actor.ActorID)
	if err != nil {
		return lifecycle.Result{}, nil, nil, progress, err
	}
	inv := lifecycle.SelectActiveInvitation(invs, now)

	var ev *model.EvaluationModel
	if inv != nil {
		if inv.EvaluationID != nil {
			ev, err = s.status.GetEvaluation(ctx, *inv.EvaluationID)
		} else {
			ev, err = s.status.LatestEvaluation(ctx, actor.ActorID)
		}
		if err != nil {
			return lifecycle.Result{}, nil, nil, progress, err
		}
	}
	if ev != nil {
		if progress, err = s.status.ComputeProgress(ctx, ev.EvaluationID); err != nil {
			return lifecycle.Result{}, nil, nil, progress, err
		}
	}

	res := lifecycle.Resolve(lifecycle.Input{
		Actor: lifecycle.Actor{
			ID:           actor.ActorID,
			Role:         actor.Role,
			EnterpriseID: actor.EnterpriseID,
		},
		Invitation: inv,
		Evaluation: ev,
		Progress:   progress,
		Now:        now,
	})
	return res, inv, ev, progress, nil
}

// canSeeActor: self, GLOBAL, or a member of the same enterprise allowed to view the actor's resources.
func canSeeActor(p scope.Principal, actor *actorModel.ActorModel) bool {
	if p.Actor.ID == actor.ActorID || p.Scope == scope.ScopeGlobal {
		return true
	}
	if actor.EnterpriseID == nil {
		return false
	}
	return p.CanView(*actor.EnterpriseID, actor.ActorID)
}

func degraded() dto.StatusResponse {
	return dto.NewStatusResponse(lifecycle.Failed(), nil, nil, model.Progress{})
}
