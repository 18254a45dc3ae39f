package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/middleware"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/service"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/logging"
	"go.uber.org/zap"
)

const requestTimeout = 5 * time.Second

func contextWithTimeout(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), requestTimeout)
}

type OrderHandler struct {
	orders service.OrderService
	cart   service.CartService
	logger *zap.Logger
}

func NewOrderHandler(orders service.OrderService, cart service.CartService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		cart:   cart,
		logger: logger,
	}
}

type validateCartInput struct {
	Items []service.CartItemInput `json:"items"`
}

func (h *OrderHandler) ValidateCart(c *fiber.Ctx) error {
	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	input := new(validateCartInput)
	if err := c.BodyParser(input); err != nil {
		logging.Warn(ctx, h.logger, "body parsing error in validate cart", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	summary, err := h.cart.ValidateCart(ctx, input.Items)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}

func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	caller, ok := middleware.CallerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	req := new(service.CheckoutRequest)
	if err := c.BodyParser(req); err != nil {
		logging.Warn(ctx, h.logger, "body parsing error in checkout", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	order, err := h.orders.Checkout(ctx, caller, req)
	if err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"checkout failed",
			zap.Int64("user_id", caller.UserID),
			zap.Error(err),
		)

		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	caller, ok := middleware.CallerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	orderID, err := c.ParamsInt("id")
	if err != nil || orderID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	order, err := h.orders.GetOrder(ctx, caller, int64(orderID))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(toOrderResponse(order))
}

func (h *OrderHandler) GetOrderStatus(c *fiber.Ctx) error {
	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	caller, ok := middleware.CallerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	orderID, err := c.ParamsInt("id")
	if err != nil || orderID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	order, err := h.orders.GetOrder(ctx, caller, int64(orderID))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":           order.ID,
		"order_number": order.OrderNumber,
		"status":       string(order.Status),
		"total":        order.Total,
		"updated_at":   order.UpdatedAt,
	})
}

func (h *OrderHandler) ListMyOrders(c *fiber.Ctx) error {
	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	caller, ok := middleware.CallerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	summaries, err := h.orders.ListMyOrders(ctx, caller)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"orders": toSummaryResponses(summaries)})
}

func (h *OrderHandler) ListAllOrders(c *fiber.Ctx) error {
	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	caller, ok := middleware.CallerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	summaries, err := h.orders.ListAllOrders(ctx, caller)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"orders": toSummaryResponses(summaries)})
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	caller, ok := middleware.CallerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	orderID, err := c.ParamsInt("id")
	if err != nil || orderID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	req := new(service.UpdateStatusRequest)
	if err := c.BodyParser(req); err != nil {
		logging.Warn(ctx, h.logger, "body parsing error in update status", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	order, err := h.orders.UpdateStatus(ctx, caller, int64(orderID), req)
	if err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"update status failed",
			zap.Int64("order_id", int64(orderID)),
			zap.String("target_status", string(req.Status)),
			zap.Error(err),
		)

		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(toOrderResponse(order))
}

func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	caller, ok := middleware.CallerFromCtx(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	orderID, err := c.ParamsInt("id")
	if err != nil || orderID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid order id"})
	}

	order, err := h.orders.CancelOrder(ctx, caller, int64(orderID))
	if err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"cancel order failed",
			zap.Int64("order_id", int64(orderID)),
			zap.Error(err),
		)

		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(toOrderResponse(order))
}
