package routes

import (
	"log"
	"time"

	"maturity_backend/internals/configs"
	"maturity_backend/internals/features/access/scope"
	benchmarkRoute "maturity_backend/internals/features/benchmarks/route"
	"maturity_backend/internals/middlewares"
	"maturity_backend/internals/middlewares/auth"
	routeDetails "maturity_backend/internals/route/details"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var startTime time.Time

// SetupRoutes mounts /health and the authenticated /api tree.
func SetupRoutes(app *fiber.App, db *gorm.DB, access scope.AccessScope, cfg configs.AppConfig) {
	startTime = time.Now()

	log.Println("[INFO] Setting up BaseRoutes...")
	BaseRoutes(app, db)

	log.Printf("[INFO] Setting up API group (access model: %s)...", access.Name())
	api := app.Group("/api",
		middlewares.GlobalRateLimiter(),
		auth.AuthMiddleware(db, access),
	)

	log.Println("[INFO] Mounting Evaluation routes...")
	routeDetails.EvaluationRoutes(api, db)

	log.Println("[INFO] Mounting Enterprise routes...")
	routeDetails.EnterpriseRoutes(api, db, benchmarkRoute.NewBenchmarkService(db, cfg))
}
