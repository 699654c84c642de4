package middlewares

import (
	"time"

	"maturity_backend/internals/configs"
	"maturity_backend/internals/middlewares/logger"

	"github.com/gofiber/fiber/v2"
)

func SetupMiddlewares(app *fiber.App, cfg configs.AppConfig) {
	app.Use(RecoveryMiddleware())
	app.Use(RequestID(5 * time.Second))
	app.Use(logger.LoggerMiddleware())
	app.Use(CorsMiddleware(cfg.CorsOrigins))
}
