package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/middleware"
)

func RegisterRoutes(app *fiber.App, h *AuthHandler) {
	authGroup := app.Group("/auth")

	authGroup.Post("/register", h.Register)
	authGroup.Post("/login", h.Login)
	authGroup.Post("/refresh", h.Refresh)
	authGroup.Post("/logout", h.Logout)

	api := app.Group("/api", middleware.NewAuthMiddleware())
	api.Get("/me", h.GetMe)
	api.Put("/me", h.UpdateMe)
}
