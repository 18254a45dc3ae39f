package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/repository"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/service"
)

// respondError maps service errors onto HTTP statuses. Validation failures
// carry per-field details, everything else is a single error string.
func respondError(c *fiber.Ctx, err error) error {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": vErr.Fields,
		})
	}

	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "order not found"})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrOrderNumberExhausted):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "temporary failure, please retry"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
