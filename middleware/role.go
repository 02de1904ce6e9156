package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/clinic-app/utils"
)

// RequireRole lets the request through when the token's role is one of roles.
// It must run after Protected.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := Role(c)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
			Message: "You don't have the required role to perform this action",
		})
	}
}
