package route

import (
	accessModel "maturity_backend/internals/features/access/model"
	"maturity_backend/internals/features/access/scope"
	"maturity_backend/internals/features/benchmarks/cache"
	"maturity_backend/internals/features/benchmarks/client"
	"maturity_backend/internals/features/benchmarks/controller"
	"maturity_backend/internals/features/benchmarks/service"
	"maturity_backend/internals/features/evaluations/store"
	"maturity_backend/internals/middlewares/auth"

	"maturity_backend/internals/configs"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// NewBenchmarkService wires the HTTP client and the memory + database cache from config.
func NewBenchmarkService(db *gorm.DB, cfg configs.AppConfig) *service.BenchmarkService {
	tiers := cache.NewTiered(
		cache.NewMemory(cfg.BenchmarkCacheSize, cfg.BenchmarkCacheTTL),
		cache.NewPersisted(db),
	)
	api := client.NewHTTPClient(cfg.BenchmarkAPIURL, cfg.BenchmarkAPIKey, cfg.BenchmarkTimeout)
	return service.NewBenchmarkService(db, store.New(db), api, tiers, cfg.BenchmarkCacheTTL)
}

func BenchmarkRoutes(api fiber.Router, svc *service.BenchmarkService) {
	ctl := controller.NewBenchmarkController(svc)
	api.Get("/entreprises/:id/benchmark",
		auth.RequireModule(scope.ModuleBenchmarks, accessModel.ActionView),
		ctl.Compare,
	)
}
