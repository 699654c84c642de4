package dto

import (
	"time"

	"maturity_backend/internals/features/evaluations/lifecycle"
	"maturity_backend/internals/features/evaluations/model"
	"maturity_backend/internals/features/evaluations/scoring"
	"maturity_backend/internals/features/evaluations/store"

	"github.com/google/uuid"
)

/* =============================
   Requests
============================= */

type ResponseItem struct {
	QuestionID string   `json:"id_question" validate:"required,uuid"`
	Value      *float64 `json:"valeur" validate:"omitempty,gte=0"`
	Comment    *string  `json:"commentaire" validate:"omitempty,max=2000"`
}

type UpdateProgressRequest struct {
	EvaluationID string         `json:"id_evaluation" validate:"required,uuid"`
	Responses    []ResponseItem `json:"responses" validate:"omitempty,dive"`
	CurrentStep  int            `json:"currentStep" validate:"gte=0"`
	TotalSteps   int            `json:"totalSteps" validate:"gte=0"`
}

type BatchResponsesRequest struct {
	Responses []ResponseItem `json:"responses" validate:"required,min=1,dive"`
}

type SaveResponseRequest struct {
	Value   *float64 `json:"valeur" validate:"omitempty,gte=0"`
	Comment *string  `json:"commentaire" validate:"omitempty,max=2000"`
}

// SubmitRequest.Scores is what the client computed; kept for audit, never trusted.
type SubmitRequest struct {
	Scores          map[string]float64 `json:"scores" validate:"omitempty,dive,gte=0,lte=5"`
	DurationMinutes *int               `json:"duree_minutes" validate:"omitempty,gte=0,lte=1440"`
}

type StartRequest struct {
	ModelType    string  `json:"type_modele" validate:"omitempty,oneof=STANDARD GLOBAL"`
	EnterpriseID *string `json:"id_entreprise" validate:"omitempty,uuid"`
}

type AcceptInvitationRequest struct {
	ModelType string `json:"type_modele" validate:"omitempty,oneof=STANDARD GLOBAL"`
}

func ToResponseInputs(items []ResponseItem) []store.ResponseInput {
	out := make([]store.ResponseInput, 0, len(items))
	for _, it := range items {
		out = append(out, store.ResponseInput{
			QuestionID: uuid.MustParse(it.QuestionID),
			Value:      it.Value,
			Comment:    it.Comment,
		})
	}
	return out
}

func ModelTypeOrDefault(s string) model.ModelType {
	if s == "" {
		return model.ModelStandard
	}
	return model.ModelType(s)
}

/* =============================
   Responses
============================= */

type ProgressDTO struct {
	EvaluationID *uuid.UUID `json:"id_evaluation,omitempty"`
	Answered     int        `json:"answered"`
	Total        int        `json:"total"`
	Percentage   int        `json:"percentage"`
	ShouldResume bool       `json:"shouldResume"`
}

type InvitationDTO struct {
	InvitationID uuid.UUID  `json:"id_invitation"`
	Status       string     `json:"statut"`
	ExpiresAt    time.Time  `json:"date_expiration"`
	AcceptedAt   *time.Time `json:"date_acceptation,omitempty"`
	EvaluationID *uuid.UUID `json:"id_evaluation,omitempty"`
}

// StatusResponse is the body of GET /evaluation-status/check/:actorId.
type StatusResponse struct {
	HasEvaluation bool           `json:"hasEvaluation"`
	Status        string         `json:"status"`
	Message       string         `json:"message"`
	RedirectTo    string         `json:"redirectTo"`
	Progress      *ProgressDTO   `json:"progress,omitempty"`
	Invitation    *InvitationDTO `json:"invitation,omitempty"`
}

func NewStatusResponse(res lifecycle.Result, inv *model.InvitationModel, ev *model.EvaluationModel, p model.Progress) StatusResponse {
	out := StatusResponse{
		HasEvaluation: res.HasEvaluation(),
		Status:        string(res.State),
		Message:       res.Message,
		RedirectTo:    res.RedirectTo,
	}
	if inv != nil {
		out.Invitation = &InvitationDTO{
			InvitationID: inv.InvitationID,
			Status:       string(inv.Status),
			ExpiresAt:    inv.ExpiresAt,
			AcceptedAt:   inv.AcceptedAt,
			EvaluationID: inv.EvaluationID,
		}
	}
	if res.State == lifecycle.StateInProgress || res.State == lifecycle.StateCompleted || res.State == lifecycle.StateReadyToStart {
		pd := &ProgressDTO{
			Answered:     p.Answered,
			Total:        p.Total,
			Percentage:   res.Percentage,
			ShouldResume: res.ShouldResume,
		}
		if ev != nil {
			id := ev.EvaluationID
			pd.EvaluationID = &id
		}
		out.Progress = pd
	}
	return out
}

type UpdateProgressResponse struct {
	Success     bool `json:"success"`
	IsCompleted bool `json:"isCompleted"`
	Saved       int  `json:"saved"`
}

type BatchResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

type SubmitResponse struct {
	Success    bool          `json:"success"`
	Message    string        `json:"message"`
	Evaluation EvaluationDTO `json:"evaluation"`
	Scores     scoring.Tree  `json:"scores"`
}

type FonctionScoreDTO struct {
	FonctionID uuid.UUID `json:"id_fonction"`
	Score      float64   `json:"score"`
	Percentage float64   `json:"pourcentage"`
	Level      *string   `json:"niveau,omitempty"`
	Answered   int       `json:"nb_reponses"`
}

type EvaluationDTO struct {
	EvaluationID    uuid.UUID          `json:"id_evaluation"`
	ActorID         uuid.UUID          `json:"id_acteur"`
	EnterpriseID    uuid.UUID          `json:"id_entreprise"`
	ModelType       string             `json:"type_modele"`
	Status          string             `json:"statut"`
	GlobalScore     *float64           `json:"score_global,omitempty"`
	GlobalLevel     *string            `json:"niveau_global,omitempty"`
	DurationMinutes *int               `json:"duree_minutes,omitempty"`
	StartedAt       *time.Time         `json:"date_debut,omitempty"`
	CompletedAt     *time.Time         `json:"date_fin,omitempty"`
	CreatedAt       time.Time          `json:"date_creation"`
	FonctionScores  []FonctionScoreDTO `json:"scores_fonctions,omitempty"`
	Progress        *model.Progress    `json:"progress,omitempty"`
}

func ToEvaluationDTO(m model.EvaluationModel) EvaluationDTO {
	out := EvaluationDTO{
		EvaluationID:    m.EvaluationID,
		ActorID:         m.ActorID,
		EnterpriseID:    m.EnterpriseID,
		ModelType:       string(m.ModelType),
		Status:          string(m.Status),
		GlobalScore:     m.GlobalScore,
		GlobalLevel:     m.GlobalLevel,
		DurationMinutes: m.DurationMinutes,
		StartedAt:       m.StartedAt,
		CompletedAt:     m.CompletedAt,
		CreatedAt:       m.CreatedAt,
	}
	for _, fs := range m.FonctionScores {
		out.FonctionScores = append(out.FonctionScores, FonctionScoreDTO{
			FonctionID: fs.FonctionID,
			Score:      fs.Score,
			Percentage: fs.Percentage,
			Level:      fs.Level,
			Answered:   fs.Answered,
		})
	}
	return out
}

func ToEvaluationDTOs(rows []model.EvaluationModel) []EvaluationDTO {
	out := make([]EvaluationDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToEvaluationDTO(r))
	}
	return out
}

type ResponseDTO struct {
	ResponseID   uuid.UUID `json:"id_reponse"`
	EvaluationID uuid.UUID `json:"id_evaluation"`
	QuestionID   uuid.UUID `json:"id_question"`
	Value        *float64  `json:"valeur"`
	Comment      *string   `json:"commentaire,omitempty"`
	Score        *float64  `json:"score,omitempty"`
	UpdatedAt    time.Time `json:"date_modification"`
}

func ToResponseDTO(m model.ResponseModel) ResponseDTO {
	return ResponseDTO{
		ResponseID:   m.ResponseID,
		EvaluationID: m.EvaluationID,
		QuestionID:   m.QuestionID,
		Value:        m.Value,
		Comment:      m.Comment,
		Score:        m.Score,
		UpdatedAt:    m.UpdatedAt,
	}
}

type AcceptInvitationResponse struct {
	Invitation InvitationDTO `json:"invitation"`
	Evaluation EvaluationDTO `json:"evaluation"`
	RedirectTo string        `json:"redirectTo"`
}
