// internals/middlewares/auth/claims_utils.go
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"maturity_backend/internals/constants"
	"maturity_backend/internals/features/access/scope"
	actorModel "maturity_backend/internals/features/users/actors/model"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errInactive = errors.New("actor inactive")

/* ======== Extractors ======== */

func extractBearerToken(c *fiber.Ctx) (string, error) {
	auth := strings.TrimSpace(c.Get("Authorization"))
	if auth == "" {
		if cookieTok := c.Cookies("access_token"); cookieTok != "" {
			auth = "Bearer " + cookieTok
		}
	}
	if auth == "" {
		return "", fmt.Errorf("unauthorized - No token provided")
	}

	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", fmt.Errorf("unauthorized - Invalid token format")
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", fmt.Errorf("unauthorized - Empty token")
	}
	return tok, nil
}

func validateTokenExpiry(claims jwt.MapClaims, skew time.Duration) error {
	expVal, ok := claims["exp"]
	if !ok {
		return fmt.Errorf("token has no exp")
	}

	var expUnix int64
	switch t := expVal.(type) {
	case float64:
		expUnix = int64(t)
	case int64:
		expUnix = t
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid exp format")
		}
		expUnix = n
	default:
		return fmt.Errorf("invalid exp type")
	}

	expTime := time.Unix(expUnix, 0).UTC()
	if time.Now().UTC().After(expTime.Add(skew)) {
		return fmt.Errorf("token expired at %v", expTime)
	}
	return nil
}

// extractActorID reads "id_acteur", then "id", then "sub".
func extractActorID(claims jwt.MapClaims) (uuid.UUID, error) {
	for _, key := range []string{"id_acteur", "id", "sub"} {
		if v, ok := claims[key].(string); ok && strings.TrimSpace(v) != "" {
			return uuid.Parse(strings.TrimSpace(v))
		}
	}
	return uuid.Nil, fmt.Errorf("no actor id")
}

func loadActiveActor(db *gorm.DB, actorID uuid.UUID) (*actorModel.ActorModel, error) {
	var a actorModel.ActorModel
	if err := db.Where("id_acteur = ?", actorID).Take(&a).Error; err != nil {
		return nil, err
	}
	if !a.IsActive {
		return nil, errInactive
	}
	return &a, nil
}

/* ======== Store to Locals ======== */

func storeActorToLocals(c *fiber.Ctx, p scope.Principal) {
	c.Locals(scope.LocalsKey, p)
	c.Locals("user_id", p.Actor.ID.String())
	c.Locals("userRole", constants.NormalizeRole(p.Actor.Role))
	c.Locals("access_level", string(p.Scope))
	if p.Actor.EnterpriseID != nil {
		c.Locals("id_entreprise", p.Actor.EnterpriseID.String())
	}
}
