package scope

import "github.com/gofiber/fiber/v2"

// LocalsKey is where the auth middleware stores the resolved Principal.
const LocalsKey = "principal"

func FromFiber(c *fiber.Ctx) (Principal, error) {
	p, ok := c.Locals(LocalsKey).(Principal)
	if !ok {
		return Principal{}, fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}
	return p, nil
}
