package helper

import (
	"strings"

	"maturity_backend/internals/helpers/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ParseUUIDParam reads a path parameter as a uuid; a bad value is a field validation error.
func ParseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return uuid.Nil, apperror.ValidationField(name, "must be a valid uuid")
	}
	return id, nil
}

// ParseUUIDQuery is ParseUUIDParam for an optional query parameter; nil when absent.
func ParseUUIDQuery(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.ValidationField(name, "must be a valid uuid")
	}
	return &id, nil
}

// BodyParser decodes the request body; malformed JSON becomes a 400.
func BodyParser(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}
