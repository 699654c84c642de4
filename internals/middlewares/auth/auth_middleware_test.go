package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"maturity_backend/internals/databases/dbtest"
	"maturity_backend/internals/features/access/scope"
	"maturity_backend/internals/middlewares"
	"maturity_backend/internals/middlewares/auth/authtest"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	authtest.UseSecret(t)
	db := dbtest.Open(t)
	app := middlewares.NewApp()
	api := app.Group("/api", AuthMiddleware(db, scope.NewLegacy()))
	api.Get("/me", func(c *fiber.Ctx) error {
		p, err := scope.FromFiber(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": p.Actor.ID, "scope": p.Scope, "role": c.Locals("userRole")})
	})
	api.Get("/managers", OnlyRoles("", "MANAGER"), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	api.Put("/grids", RequireModule(scope.ModuleNiveaux, "update"), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	return app, db
}

func TestAuthMiddleware(t *testing.T) {
	app, db := newApp(t)
	ent := dbtest.Enterprise(t, db, "Acme", "Industrie")
	actor := dbtest.Actor(t, db, "evaluateur", &ent.EnterpriseID)

	status, body := authtest.Do(t, app, "GET", "/api/me", actor.ActorID, nil)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d body=%v", status, body)
	}
	if body["scope"] != string(scope.ScopeEnterpriseFull) || body["role"] != "EVALUATEUR" {
		t.Fatalf("body = %v", body)
	}

	status, body = authtest.Do(t, app, "GET", "/api/me", uuid.Nil, nil)
	if status != fiber.StatusUnauthorized || body["success"] != false || body["error_code"] != "UNAUTHORIZED" {
		t.Fatalf("no token: %d %v", status, body)
	}

	status, _ = authtest.Do(t, app, "GET", "/api/me", uuid.New(), nil)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("unknown actor: %d", status)
	}
}

func TestAuthMiddlewareRejectsExpiredAndForeignTokens(t *testing.T) {
	app, db := newApp(t)
	actor := dbtest.Actor(t, db, "CONSULTANT", nil)

	expired := authtest.Token(t, actor.ActorID, -time.Hour)
	req := httptest.NewRequest("GET", "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	if resp := authtest.DoRaw(t, app, req); resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expired token: %d", resp.StatusCode)
	}

	forged, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id_acteur": actor.ActorID.String(),
		"exp":       time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("another-secret"))
	req = httptest.NewRequest("GET", "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	if resp := authtest.DoRaw(t, app, req); resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("forged token: %d", resp.StatusCode)
	}
}

func TestInactiveActorIsForbidden(t *testing.T) {
	app, db := newApp(t)
	actor := dbtest.Actor(t, db, "MANAGER", nil)
	if err := db.Model(&actor).Update("actif", false).Error; err != nil {
		t.Fatal(err)
	}
	if status, _ := authtest.Do(t, app, "GET", "/api/me", actor.ActorID, nil); status != fiber.StatusForbidden {
		t.Fatalf("status = %d", status)
	}
}

func TestRoleAndModuleGuards(t *testing.T) {
	app, db := newApp(t)
	ent := dbtest.Enterprise(t, db, "Acme", "Industrie")
	manager := dbtest.Actor(t, db, "MANAGER", &ent.EnterpriseID)
	evaluator := dbtest.Actor(t, db, "EVALUATEUR", &ent.EnterpriseID)
	admin := dbtest.Actor(t, db, "ADMIN", &ent.EnterpriseID)

	if status, _ := authtest.Do(t, app, "GET", "/api/managers", manager.ActorID, nil); status != fiber.StatusNoContent {
		t.Fatalf("manager: %d", status)
	}
	if status, _ := authtest.Do(t, app, "GET", "/api/managers", evaluator.ActorID, nil); status != fiber.StatusForbidden {
		t.Fatalf("evaluator: %d", status)
	}

	if status, _ := authtest.Do(t, app, "PUT", "/api/grids", admin.ActorID, nil); status != fiber.StatusNoContent {
		t.Fatalf("admin grid update: %d", status)
	}
	if status, body := authtest.Do(t, app, "PUT", "/api/grids", manager.ActorID, nil); status != fiber.StatusForbidden || body["error_code"] != "FORBIDDEN" {
		t.Fatalf("manager grid update: %d %v", status, body)
	}
}
