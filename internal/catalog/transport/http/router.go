package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/middleware"
)

func RegisterRoutes(app *fiber.App, h *CatalogHandler) {
	authed := middleware.NewAuthMiddleware()
	adminOnly := middleware.NewAdminMiddleware()

	api := app.Group("/api")

	products := api.Group("/products")
	products.Get("", h.ListProducts)
	products.Get("/:id", h.GetProduct)
	products.Post("", authed, adminOnly, h.CreateProduct)
	products.Put("/:id", authed, adminOnly, h.UpdateProduct)
	products.Delete("/:id", authed, adminOnly, h.DeleteProduct)

	categories := api.Group("/categories")
	categories.Get("", h.ListCategories)
	categories.Get("/:slug", h.GetCategory)
	categories.Post("", authed, adminOnly, h.CreateCategory)
	categories.Put("/:id", authed, adminOnly, h.UpdateCategory)
	categories.Delete("/:id", authed, adminOnly, h.DeleteCategory)
}
