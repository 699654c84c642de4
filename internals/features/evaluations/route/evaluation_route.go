package route

import (
	accessModel "maturity_backend/internals/features/access/model"
	"maturity_backend/internals/features/access/scope"
	"maturity_backend/internals/features/evaluations/controller"
	"maturity_backend/internals/features/evaluations/service"
	"maturity_backend/internals/features/evaluations/store"
	"maturity_backend/internals/middlewares"
	"maturity_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// EvaluationRoutes mounts the lifecycle endpoints on an authenticated /api group.
func EvaluationRoutes(api fiber.Router, db *gorm.DB) {
	ctl := controller.NewEvaluationController(service.NewEvaluationService(store.New(db)), nil)
	MountEvaluationRoutes(api, ctl)
}

func MountEvaluationRoutes(api fiber.Router, ctl *controller.EvaluationController) {
	view := auth.RequireModule(scope.ModuleEvaluations, accessModel.ActionView)
	write := auth.RequireModule(scope.ModuleEvaluations, accessModel.ActionUpdate)

	status := api.Group("/evaluation-status")
	status.Get("/check/:actorId", ctl.CheckStatus)
	status.Post("/update-progress", write, middlewares.SubmitRateLimiter(), ctl.UpdateProgress)

	ev := api.Group("/maturity-evaluation", view)
	ev.Get("/", ctl.List)
	ev.Post("/start", write, ctl.Start)
	ev.Get("/:id", ctl.Get)
	ev.Get("/:id/responses", ctl.ListResponses)
	ev.Get("/:id/results", ctl.Results)
	ev.Post("/:id/responses-batch", write, ctl.SaveBatch)
	ev.Put("/:id/responses/:questionId", write, ctl.SaveOne)
	ev.Post("/:id/submit", write, middlewares.SubmitRateLimiter(), ctl.Submit)

	api.Post("/invitations/:token/accept", ctl.AcceptInvitation)
}
