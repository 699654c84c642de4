package details

import (
	evaluationRoute "maturity_backend/internals/features/evaluations/route"
	referentialRoute "maturity_backend/internals/features/referential/route"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// EvaluationRoutes: lifecycle, responses, submission and the questionnaire it runs on.
func EvaluationRoutes(api fiber.Router, db *gorm.DB) {
	evaluationRoute.EvaluationRoutes(api, db)
	referentialRoute.ReferentialRoutes(api, db)
}
