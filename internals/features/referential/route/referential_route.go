package route

import (
	accessModel "maturity_backend/internals/features/access/model"
	"maturity_backend/internals/features/access/scope"
	"maturity_backend/internals/features/referential/controller"
	"maturity_backend/internals/features/referential/service"
	"maturity_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ReferentialRoutes: questionnaire reads for every actor, grid edits behind niveaux:update.
func ReferentialRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewReferentialController(service.NewReferentialService(db))
	view := auth.RequireModule(scope.ModuleNiveaux, accessModel.ActionView)
	update := auth.RequireModule(scope.ModuleNiveaux, accessModel.ActionUpdate)

	api.Get("/fonctions", ctl.Questionnaire)
	api.Get("/fonctions/:id/niveaux", view, ctl.FonctionLevels)
	api.Put("/fonctions/:id/niveaux", update, ctl.ReplaceFonctionLevels)
	api.Get("/thematiques/:id/niveaux", view, ctl.ThemeLevels)
	api.Put("/thematiques/:id/niveaux", update, ctl.ReplaceThemeLevels)
}
