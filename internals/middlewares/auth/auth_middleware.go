// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"errors"
	"log"
	"time"

	"maturity_backend/internals/configs"
	"maturity_backend/internals/features/access/scope"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// AuthMiddleware verifies the bearer token, reloads the actor (role and enterprise
// may have changed since issuance) and stores the resolved scope.Principal in Locals.
func AuthMiddleware(db *gorm.DB, model scope.AccessScope) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		secretKey := configs.JWTSecret
		if secretKey == "" {
			log.Println("[ERROR] JWT_SECRET is empty")
			return fiber.NewError(fiber.StatusInternalServerError, "Missing JWT Secret")
		}

		claims := jwt.MapClaims{}
		parser := jwt.Parser{SkipClaimsValidation: true, ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
		if _, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		}); err != nil {
			log.Println("[ERROR] token parse:", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token parse error")
		}

		if err := validateTokenExpiry(claims, 30*time.Second); err != nil {
			log.Println("[ERROR] exp validation:", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token expired")
		}

		actorID, err := extractActorID(claims)
		if err != nil {
			log.Println("[ERROR] actor id:", err)
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid or missing actor ID")
		}

		actor, err := loadActiveActor(db.WithContext(c.UserContext()), actorID)
		if err != nil {
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Actor not found")
			case errors.Is(err, errInactive):
				return fiber.NewError(fiber.StatusForbidden, "Votre compte a été désactivé")
			}
			log.Println("[ERROR] load actor:", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
		}

		principal, err := scope.Resolve(c.UserContext(), model, scope.Actor{
			ID:           actor.ActorID,
			Role:         actor.Role,
			EnterpriseID: actor.EnterpriseID,
			AccessLevel:  actor.AccessLevel,
		})
		if err != nil {
			log.Println("[ERROR] resolve scope:", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
		}

		storeActorToLocals(c, principal)
		return c.Next()
	}
}
