package controller

import (
	"maturity_backend/internals/features/access/scope"
	"maturity_backend/internals/features/enterprises/dto"
	"maturity_backend/internals/features/enterprises/service"
	helper "maturity_backend/internals/helpers"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type EnterpriseController struct {
	Svc *service.EnterpriseService
}

func NewEnterpriseController(svc *service.EnterpriseService) *EnterpriseController {
	return &EnterpriseController{Svc: svc}
}

// GET /api/entreprises?q=&secteur=&page=&per_page=
func (ctl *EnterpriseController) List(c *fiber.Ctx) error {
	p, err := scope.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var q dto.ListQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Query invalide")
	}
	if err := validate.Struct(&q); err != nil {
		return helper.JsonFromError(c, err)
	}
	paging := helper.ResolvePaging(c, 20, 100)

	rows, total, err := ctl.Svc.List(c.UserContext(), p, q, paging.Offset, paging.Limit)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonList(c, "Liste des entreprises", rows, helper.BuildPagination(total, paging, rows))
}

// GET /api/entreprises/:id
func (ctl *EnterpriseController) Get(c *fiber.Ctx) error {
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
	return helper.JsonOK(c, "Entreprise", out)
}

// GET /api/entreprises/:id/fonctions
func (ctl *EnterpriseController) Fonctions(c *fiber.Ctx) error {
	p, err := scope.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := ctl.Svc.FonctionRollup(c.UserContext(), p, id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "Analyse par fonction", out)
}
