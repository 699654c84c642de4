package auth

import (
	"log"

	"maturity_backend/internals/constants"
	"maturity_backend/internals/features/access/scope"
	helper "maturity_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
)

// OnlyRoles lets through actors whose role is one of roles.
func OnlyRoles(customMessage string, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("userRole").(string)
		if !ok {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized: missing role information")
		}
		if constants.InRoles(role, roles) {
			return c.Next()
		}
		if customMessage == "" {
			customMessage = "Forbidden: you are not authorized to access this resource"
		}
		return helper.JsonError(c, fiber.StatusForbidden, customMessage)
	}
}

// RequireModule checks a module/action grant against the active permission model.
func RequireModule(module, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := scope.FromFiber(c)
		if err != nil {
			return helper.JsonFromError(c, err)
		}
		if err := p.EnsureModule(c.UserContext(), module, action); err != nil {
			log.Printf("[AUTH] %s denied %s:%s", p.Actor.ID, module, action)
			return helper.JsonFromError(c, err)
		}
		return c.Next()
	}
}
