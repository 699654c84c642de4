package controller

import (
	"maturity_backend/internals/features/access/scope"
	"maturity_backend/internals/features/benchmarks/service"
	helper "maturity_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
)

type BenchmarkController struct {
	Svc *service.BenchmarkService
}

func NewBenchmarkController(svc *service.BenchmarkService) *BenchmarkController {
	return &BenchmarkController{Svc: svc}
}

// GET /api/entreprises/:id/benchmark
func (ctl *BenchmarkController) Compare(c *fiber.Ctx) error {
	p, err := scope.FromFiber(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	out, err := ctl.Svc.Compare(c.UserContext(), p, id)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonOK(c, "Benchmark sectoriel", out)
}
