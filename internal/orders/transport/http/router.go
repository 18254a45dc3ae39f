package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/middleware"
)

func RegisterRoutes(app *fiber.App, h *OrderHandler) {
	api := app.Group("/api", middleware.NewAuthMiddleware())

	cart := api.Group("/cart")
	cart.Post("/validate", h.ValidateCart)
	cart.Post("/checkout", h.Checkout)

	adminOnly := middleware.NewAdminMiddleware()

	orders := api.Group("/orders")
	orders.Get("", adminOnly, h.ListAllOrders)
	orders.Get("/my", h.ListMyOrders)
	orders.Get("/:id", h.GetOrder)
	orders.Get("/:id/status", h.GetOrderStatus)
	orders.Put("/:id", adminOnly, h.UpdateStatus)
	orders.Post("/:id/cancel", adminOnly, h.CancelOrder)
}
