package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/auth/jwtutil"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/identity"
)

// NewAuthMiddleware validates the bearer token locally and stores the caller
// identity in request locals.
func NewAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: missed header"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: Invalid header format"})
		}

		claims, err := jwtutil.ValidateToken(parts[1], false)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: Invalid token"})
		}

		c.Locals("userId", claims.UserID)
		c.Locals("isAdmin", claims.IsAdmin)
		return c.Next()
	}
}

// NewAdminMiddleware rejects non-admin callers. It must run after
// NewAuthMiddleware.
func NewAdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isAdmin, ok := c.Locals("isAdmin").(bool)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Internal error: auth flow violation"})
		}

		if !isAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Admin access required"})
		}

		return c.Next()
	}
}

// CallerFromCtx rebuilds the caller identity the auth middleware stored.
func CallerFromCtx(c *fiber.Ctx) (identity.Caller, bool) {
	userID, ok := c.Locals("userId").(int64)
	if !ok || userID == 0 {
		return identity.Caller{}, false
	}

	isAdmin, ok := c.Locals("isAdmin").(bool)
	if !ok {
		return identity.Caller{}, false
	}

	return identity.Caller{UserID: userID, IsAdmin: isAdmin}, true
}
