package route

import (
	accessModel "maturity_backend/internals/features/access/model"
	"maturity_backend/internals/features/access/scope"
	"maturity_backend/internals/features/enterprises/controller"
	"maturity_backend/internals/features/enterprises/service"
	"maturity_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func EnterpriseRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewEnterpriseController(service.NewEnterpriseService(db))

	view := auth.RequireModule(scope.ModuleEntreprises, accessModel.ActionView)

	api.Get("/entreprises", view, ctl.List)
	api.Get("/entreprises/:id", view, ctl.Get)
	api.Get("/entreprises/:id/fonctions", view, ctl.Fonctions)
}
