package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// CurrentAPIVersion is echoed on every /api response.
const CurrentAPIVersion = "1.0.0"

// Version negotiates the X-Api-Version header: the requested version is
// stored in locals for handlers that branch on it, and every response
// carries the version actually served.
func Version() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requested := c.Get("X-Api-Version", CurrentAPIVersion)
		if requested == "1.0" {
			requested = CurrentAPIVersion
		}
		c.Locals("apiVersion", requested)
		c.Set("X-Api-Version", CurrentAPIVersion)
		return c.Next()
	}
}
