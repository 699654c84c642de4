package details

import (
	benchmarkRoute "maturity_backend/internals/features/benchmarks/route"
	benchmarkService "maturity_backend/internals/features/benchmarks/service"
	enterpriseRoute "maturity_backend/internals/features/enterprises/route"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// EnterpriseRoutes: scoped enterprise reads, function analysis and sector benchmark.
func EnterpriseRoutes(api fiber.Router, db *gorm.DB, bench *benchmarkService.BenchmarkService) {
	enterpriseRoute.EnterpriseRoutes(api, db)
	benchmarkRoute.BenchmarkRoutes(api, bench)
}
