// Package lifecycle resolves where an actor stands in the evaluation flow
// from the invitation, evaluation and progress rows. It performs no I/O.
package lifecycle

import (
	"fmt"
	"net/url"
	"sort"
	"time"

	"maturity_backend/internals/constants"
	"maturity_backend/internals/features/evaluations/model"

	"github.com/google/uuid"
)

type State string

const (
	StateNoInvitation      State = "NO_INVITATION"
	StateExpired           State = "EXPIRED"
	StatePendingAcceptance State = "PENDING_ACCEPTANCE"
	StateReadyToStart      State = "READY_TO_START"
	StateInProgress        State = "IN_PROGRESS"
	StateCompleted         State = "COMPLETED"
	StateError             State = "ERROR"
)

const (
	RouteDashboard     = "/dashboard"
	RouteNewEvaluation = "/evaluation-maturite/nouvelle"
)

type Actor struct {
	ID           uuid.UUID
	Role         string
	EnterpriseID *uuid.UUID
}

type Input struct {
	Actor Actor
	// Invitation is the active one (see SelectActiveInvitation), nil when the actor has none.
	Invitation *model.InvitationModel
	Evaluation *model.EvaluationModel
	Progress   model.Progress
	Now        time.Time
}

type Result struct {
	State        State
	Message      string
	RedirectTo   string
	ShouldResume bool
	Percentage   int
}

// HasEvaluation is true when the actor has something to open or resume.
func (r Result) HasEvaluation() bool {
	switch r.State {
	case StateInProgress, StateCompleted, StateReadyToStart:
		return true
	}
	return false
}

// SelectActiveInvitation prefers the most recently accepted unexpired invitation,
// then falls back to the most recently created one. Nil only for an empty list.
func SelectActiveInvitation(invs []model.InvitationModel, now time.Time) *model.InvitationModel {
	if len(invs) == 0 {
		return nil
	}
	var best *model.InvitationModel
	for i := range invs {
		inv := &invs[i]
		if inv.Status != model.InvitationAccepted || inv.IsExpiredAt(now) {
			continue
		}
		if best == nil || acceptedAt(inv).After(acceptedAt(best)) {
			best = inv
		}
	}
	if best != nil {
		return best
	}

	sorted := make([]*model.InvitationModel, len(invs))
	for i := range invs {
		sorted[i] = &invs[i]
	}
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].CreatedAt.After(sorted[b].CreatedAt) })
	return sorted[0]
}

func acceptedAt(inv *model.InvitationModel) time.Time {
	if inv.AcceptedAt != nil {
		return *inv.AcceptedAt
	}
	return inv.CreatedAt
}

// IsExpired: past its deadline and not ACCEPTED. The swept EXPIRED status is
// only written to rows already past their date, so the date alone decides.
func IsExpired(inv *model.InvitationModel, now time.Time) bool {
	return inv.Status != model.InvitationAccepted && inv.IsExpiredAt(now)
}

// Resolve applies the precedence rules in order, first match wins.
func Resolve(in Input) Result {
	inv := in.Invitation
	if inv == nil {
		return Result{
			State:      StateNoInvitation,
			Message:    "Aucune invitation à une évaluation n'a été trouvée.",
			RedirectTo: RouteDashboard,
		}
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	if IsExpired(inv, now) {
		return Result{
			State:      StateExpired,
			Message:    "Votre invitation a expiré. Contactez votre administrateur pour en recevoir une nouvelle.",
			RedirectTo: RouteDashboard,
		}
	}

	if inv.Status == model.InvitationPending {
		return Result{
			State:      StatePendingAcceptance,
			Message:    "Une invitation est en attente de votre acceptation.",
			RedirectTo: "/invitation/accept/" + url.PathEscape(inv.Token),
		}
	}

	ev := in.Evaluation
	if ev != nil && ev.Status == model.EvaluationCompleted {
		return Result{
			State:      StateCompleted,
			Message:    "Votre évaluation est terminée.",
			RedirectTo: completedRedirect(in.Actor, ev),
			Percentage: 100,
		}
	}

	if (ev != nil && ev.Status == model.EvaluationInProgress) || in.Progress.Answered > 0 {
		res := Result{
			State:        StateInProgress,
			ShouldResume: true,
			Percentage:   in.Progress.Percent(),
			Message: fmt.Sprintf("Évaluation en cours : %d question(s) sur %d complétée(s).",
				in.Progress.Answered, in.Progress.Total),
			RedirectTo: RouteNewEvaluation,
		}
		if ev != nil {
			res.RedirectTo = "/evaluation-maturite/" + ev.EvaluationID.String() + "?resume=true"
		}
		return res
	}

	res := Result{
		State:      StateReadyToStart,
		Message:    "Vous pouvez commencer votre évaluation.",
		RedirectTo: RouteNewEvaluation,
	}
	if ev != nil {
		res.RedirectTo = "/evaluation-maturite/" + ev.EvaluationID.String()
	}
	return res
}

// Failed is the degraded answer used when the inputs could not be loaded.
func Failed() Result {
	return Result{
		State:      StateError,
		Message:    "Impossible de déterminer l'état de votre évaluation pour le moment.",
		RedirectTo: RouteDashboard,
	}
}

func completedRedirect(actor Actor, ev *model.EvaluationModel) string {
	role := constants.NormalizeRole(actor.Role)
	switch {
	case role == constants.RoleManager:
		enterprise := ev.EnterpriseID
		if actor.EnterpriseID != nil {
			enterprise = *actor.EnterpriseID
		}
		return "/analyses/fonctions?id_entreprise=" + url.QueryEscape(enterprise.String())
	case constants.IsKnownRole(role):
		return "/formulaires?id_acteur=" + url.QueryEscape(actor.ID.String())
	default:
		return RouteDashboard
	}
}
