package controller

import (
	"strings"

	evalModel "maturity_backend/internals/features/evaluations/model"
	"maturity_backend/internals/features/referential/dto"
	"maturity_backend/internals/features/referential/service"
	helper "maturity_backend/internals/helpers"
	"maturity_backend/internals/helpers/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type ReferentialController struct {
	Svc *service.ReferentialService
}

func NewReferentialController(svc *service.ReferentialService) *ReferentialController {
	return &ReferentialController{Svc: svc}
}

// GET /api/fonctions?type_modele=STANDARD|GLOBAL
func (ctl *ReferentialController) Questionnaire(c *fiber.Ctx) error {
	mt := evalModel.ModelType(strings.ToUpper(strings.TrimSpace(c.Query("type_modele", string(evalModel.ModelStandard)))))
	if mt != evalModel.ModelStandard && mt != evalModel.ModelGlobal {
		return helper.JsonFromError(c, apperror.ValidationField("type_modele", "must be STANDARD or GLOBAL"))
	}
	out, err := ctl.Svc.Questionnaire(c.UserContext(), mt)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "Questionnaire", out)
}

// GET /api/fonctions/:id/niveaux
func (ctl *ReferentialController) FonctionLevels(c *fiber.Ctx) error {
	return ctl.levels(c, func(id uuid.UUID) service.Owner { return service.Owner{FonctionID: &id} })
}

// GET /api/thematiques/:id/niveaux
func (ctl *ReferentialController) ThemeLevels(c *fiber.Ctx) error {
	return ctl.levels(c, func(id uuid.UUID) service.Owner { return service.Owner{ThemeID: &id} })
}

// PUT /api/fonctions/:id/niveaux
func (ctl *ReferentialController) ReplaceFonctionLevels(c *fiber.Ctx) error {
	return ctl.replace(c, func(id uuid.UUID) service.Owner { return service.Owner{FonctionID: &id} })
}

// PUT /api/thematiques/:id/niveaux
func (ctl *ReferentialController) ReplaceThemeLevels(c *fiber.Ctx) error {
	return ctl.replace(c, func(id uuid.UUID) service.Owner { return service.Owner{ThemeID: &id} })
}

func (ctl *ReferentialController) levels(c *fiber.Ctx, owner func(uuid.UUID) service.Owner) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := ctl.Svc.Levels(c.UserContext(), owner(id))
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "Niveaux de maturité", out)
}

func (ctl *ReferentialController) replace(c *fiber.Ctx, owner func(uuid.UUID) service.Owner) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.ReplaceLevelsRequest
	if err := helper.BodyParser(c, &req); err != nil {
		return helper.JsonFromError(c, err)
	}
	if err := validate.Struct(&req); err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := ctl.Svc.ReplaceLevels(c.UserContext(), owner(id), req.Ranges())
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "Grille de maturité mise à jour", out)
}
