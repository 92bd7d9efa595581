package middleware

import (
	"mentora/backend/config"
	"mentora/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware rejects requests without a valid token from the hosted auth
// provider. Token issuance is not this backend's concern.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := utils.ExtractUserIDFromToken(c, cfg); err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}
