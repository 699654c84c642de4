// Package authtest signs bearer tokens and builds authenticated request helpers for HTTP tests.
package authtest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"maturity_backend/internals/configs"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const Secret = "test-secret"

// UseSecret installs Secret as the process JWT secret for the test.
func UseSecret(t testing.TB) {
	t.Helper()
	prev := configs.JWTSecret
	configs.JWTSecret = Secret
	t.Cleanup(func() { configs.JWTSecret = prev })
}

func Token(t testing.TB, actorID uuid.UUID, ttl time.Duration) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id_acteur": actorID.String(),
		"exp":       time.Now().Add(ttl).Unix(),
	})
	s, err := tok.SignedString([]byte(Secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

// Do sends a JSON request as actorID (uuid.Nil sends no token) and decodes the JSON answer.
func Do(t testing.TB, app *fiber.App, method, path string, actorID uuid.UUID, body any) (int, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if actorID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+Token(t, actorID, time.Hour))
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := sonic.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, out
}

// DoRaw is Do with a caller-built request.
func DoRaw(t testing.TB, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}
