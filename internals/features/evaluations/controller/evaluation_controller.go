package controller

import (
	"strings"

	"maturity_backend/internals/features/access/scope"
	"maturity_backend/internals/features/evaluations/dto"
	"maturity_backend/internals/features/evaluations/model"
	"maturity_backend/internals/features/evaluations/service"
	"maturity_backend/internals/features/evaluations/store"
	helper "maturity_backend/internals/helpers"
	"maturity_backend/internals/helpers/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type EvaluationController struct {
	Svc      *service.EvaluationService
	Validate *validator.Validate
}

func NewEvaluationController(svc *service.EvaluationService, v *validator.Validate) *EvaluationController {
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	return &EvaluationController{Svc: svc, Validate: v}
}

// parse decodes then validates the body.
func (ctl *EvaluationController) parse(c *fiber.Ctx, out any) error {
	if err := helper.BodyParser(c, out); err != nil {
		return err
	}
	return ctl.Validate.Struct(out)
}

/* =============================
   Status
============================= */

// GET /api/evaluation-status/check/:actorId
func (ctl *EvaluationController) CheckStatus(c *fiber.Ctx) error {
	p, err := scope.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	actorID, err := helper.ParseUUIDParam(c, "actorId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	res, err := ctl.Svc.CheckStatus(c.UserContext(), p, actorID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return c.JSON(res)
}

// POST /api/evaluation-status/update-progress
// Completes when totalSteps > 0 and currentStep >= totalSteps.
func (ctl *EvaluationController) UpdateProgress(c *fiber.Ctx) error {
	p, err := scope.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.UpdateProgressRequest
	if err := ctl.parse(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	res, err := ctl.Svc.UpdateProgress(c.UserContext(), p, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return c.JSON(res)
}

/* =============================
   Maturity evaluation
============================= */

// GET /api/maturity-evaluation?statut=&id_entreprise=&page=&per_page=
func (ctl *EvaluationController) List(c *fiber.Ctx) error {
	p, err := scope.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	f := store.ListFilter{}
	if st := strings.ToUpper(strings.TrimSpace(c.Query("statut"))); st != "" {
		switch model.EvaluationStatus(st) {
		case model.EvaluationNew, model.EvaluationInProgress, model.EvaluationCompleted:
			f.Status = model.EvaluationStatus(st)
		default:
			return helper.JsonFromError(c, apperror.ValidationField("statut", "must be one of NEW IN_PROGRESS COMPLETED"))
		}
	}
	if f.EnterpriseID, err = helper.ParseUUIDQuery(c, "id_entreprise"); err != nil {
		return helper.JsonFromError(c, err)
	}

	paging := helper.ResolvePaging(c, 20, 100)
	f.Offset, f.Limit = paging.Offset, paging.Limit

	rows, total, err := ctl.Svc.List(c.UserContext(), p, f)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "Liste des évaluations", rows, helper.BuildPagination(total, paging, rows))
}

// GET /api/maturity-evaluation/:id
func (ctl *EvaluationController) Get(c *fiber.Ctx) error {
	p, err := scope.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := ctl.Svc.Get(c.UserContext(), p, id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "Évaluation", out)
}

// GET /api/maturity-evaluation/:id/responses
func (ctl *EvaluationController) ListResponses(c *fiber.Ctx) error {
	p, err := scope.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := ctl.Svc.ListResponses(c.UserContext(), p, id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "Réponses", out)
}

// GET /api/maturity-evaluation/:id/results
func (ctl *EvaluationController) Results(c *fiber.Ctx) error {
	p, err := scope.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	tree, err := ctl.Svc.Results(c.UserContext(), p, id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "Résultats", tree)
}

// POST /api/maturity-evaluation/start
func (ctl *EvaluationController) Start(c *fiber.Ctx) error {
	p, err := scope.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.StartRequest
	if len(c.Body()) > 0 {
		if err := ctl.parse(c, &req); err != nil {
			return helper.JsonFromError(c, err)
		}
	}
	ev, created, err := ctl.Svc.Start(c.UserContext(), p, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	if created {
		return helper.JsonCreated(c, "Évaluation démarrée", ev)
	}
	return helper.JsonOK(c, "Évaluation en cours reprise", ev)
}

// POST /api/maturity-evaluation/:id/responses-batch
func (ctl *EvaluationController) SaveBatch(c *fiber.Ctx) error {
	p, err := scope.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.BatchResponsesRequest
	if err := ctl.parse(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	n, err := ctl.Svc.SaveBatch(c.UserContext(), p, id, req.Responses)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return c.JSON(dto.BatchResponse{Success: true, Count: n})
}

// PUT /api/maturity-evaluation/:id/responses/:questionId
func (ctl *EvaluationController) SaveOne(c *fiber.Ctx) error {
	p, err := scope.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	questionID, err := helper.ParseUUIDParam(c, "questionId")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.SaveResponseRequest
	if err := ctl.parse(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := ctl.Svc.SaveOne(c.UserContext(), p, id, questionID, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "Réponse enregistrée", out)
}

// POST /api/maturity-evaluation/:id/submit
func (ctl *EvaluationController) Submit(c *fiber.Ctx) error {
	p, err := scope.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.SubmitRequest
	if len(c.Body()) > 0 {
		if err := ctl.parse(c, &req); err != nil {
			return helper.JsonFromError(c, err)
		}
	}
	out, err := ctl.Svc.Submit(c.UserContext(), p, id, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return c.JSON(out)
}

/* =============================
   Invitations
============================= */

// POST /api/invitations/:token/accept
func (ctl *EvaluationController) AcceptInvitation(c *fiber.Ctx) error {
	p, err := scope.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	token := strings.TrimSpace(c.Params("token"))
	if token == "" {
		return helper.JsonFromError(c, apperror.ValidationField("token", "required"))
	}
	var req dto.AcceptInvitationRequest
	if len(c.Body()) > 0 {
		if err := ctl.parse(c, &req); err != nil {
			return helper.JsonFromError(c, err)
		}
	}
	out, err := ctl.Svc.AcceptInvitation(c.UserContext(), p, token, req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "Invitation acceptée", out)
}
