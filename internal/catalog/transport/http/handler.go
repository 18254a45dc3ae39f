package http

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/catalog/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/catalog/repository"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/catalog/service"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/logging"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/money"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/utils"
	"go.uber.org/zap"
)

const requestTimeout = 5 * time.Second

type CatalogHandler struct {
	products   service.ProductService
	categories service.CategoryService
	validate   *validator.Validate
	logger     *zap.Logger
}

func NewCatalogHandler(products service.ProductService, categories service.CategoryService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		products:   products,
		categories: categories,
		validate:   validator.New(),
		logger:     logger,
	}
}

type createProductInput struct {
	Name             string       `json:"name" validate:"required,max=255"`
	Slug             string       `json:"slug" validate:"required,max=255"`
	SKU              string       `json:"sku" validate:"required,max=64"`
	Description      string       `json:"description"`
	ShortDescription string       `json:"short_description"`
	Price            money.Money  `json:"price"`
	DiscountPrice    *money.Money `json:"discount_price"`
	StockQuantity    int64        `json:"stock_quantity" validate:"gte=0"`
	CategoryID       int64        `json:"category_id" validate:"required,gt=0"`
	ImageUrl         string       `json:"image_url" validate:"omitempty,url"`
	Images           []string     `json:"images" validate:"omitempty,dive,url"`
	IsActive         *bool        `json:"is_active"`
	IsFeatured       bool         `json:"is_featured"`
}

type createCategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"required,max=100"`
	Description string `json:"description"`
}

func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	input := new(createProductInput)
	if err := c.BodyParser(input); err != nil {
		logging.Warn(ctx, h.logger, "body parsing error in create product", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	if !input.Price.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "price must be positive"})
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	product := &domain.Product{
		Name:             input.Name,
		Slug:             input.Slug,
		SKU:              input.SKU,
		Description:      input.Description,
		ShortDescription: input.ShortDescription,
		Price:            input.Price,
		DiscountPrice:    input.DiscountPrice,
		StockQuantity:    input.StockQuantity,
		CategoryID:       input.CategoryID,
		ImageUrl:         input.ImageUrl,
		Images:           input.Images,
		IsActive:         isActive,
		IsFeatured:       input.IsFeatured,
	}

	id, err := h.products.Create(ctx, product)
	if err != nil {
		if errors.Is(err, repository.ErrSKUAlreadyExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "sku already exists"})
		}
		if errors.Is(err, repository.ErrSlugAlreadyExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "slug already exists"})
		}

		logging.Warn(ctx, h.logger, "create product failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	product.ID = id
	return c.Status(fiber.StatusCreated).JSON(product)
}

// GetProduct resolves numeric params as ids and anything else as a slug, so
// both /products/42 and /products/iphone-15 work.
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	var (
		product *domain.Product
		err     error
	)

	if id, parseErr := c.ParamsInt("id"); parseErr == nil && id > 0 {
		product, err = h.products.FindByID(ctx, int64(id))
	} else {
		product, err = h.products.FindBySlug(ctx, c.Params("id"))
	}

	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusOK).JSON(product)
}

func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	limit := int64(c.QueryInt("limit", 20))
	offset := int64(c.QueryInt("offset", 0))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	filter := repository.ProductFilter{
		Search:       c.Query("search"),
		CategorySlug: c.Query("category"),
		Limit:        limit,
		Offset:       offset,
	}
	if c.Query("featured") != "" {
		featured := c.QueryBool("featured")
		filter.Featured = &featured
	}

	products, total, err := h.products.List(ctx, filter)
	if err != nil {
		logging.Warn(ctx, h.logger, "list products failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"products": products,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	input := new(domain.UpdateProductInput)
	if err := c.BodyParser(input); err != nil {
		logging.Warn(ctx, h.logger, "body parsing error in update product", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if input.Price != nil && !input.Price.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "price must be positive"})
	}

	if err := h.products.Update(ctx, int64(id), input); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}
		if errors.Is(err, repository.ErrSlugAlreadyExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "slug already exists"})
		}

		logging.Warn(ctx, h.logger, "update product failed", zap.Int64("id", int64(id)), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid product id"})
	}

	if err := h.products.Delete(ctx, int64(id)); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
		}

		logging.Warn(ctx, h.logger, "delete product failed", zap.Int64("id", int64(id)), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	input := new(createCategoryInput)
	if err := c.BodyParser(input); err != nil {
		logging.Warn(ctx, h.logger, "body parsing error in create category", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	category := &domain.Category{
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
	}

	if err := h.categories.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "category already exists"})
		}

		logging.Warn(ctx, h.logger, "create category failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	category, err := h.categories.GetBySlug(ctx, c.Params("slug"))
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "category not found"})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusOK).JSON(category)
}

func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	categories, err := h.categories.List(ctx)
	if err != nil {
		logging.Warn(ctx, h.logger, "list categories failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"categories": categories})
}

func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category id"})
	}

	input := new(domain.UpdateCategoryInput)
	if err := c.BodyParser(input); err != nil {
		logging.Warn(ctx, h.logger, "body parsing error in update category", zap.Error(err))

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.categories.Update(ctx, int64(id), input); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "category not found"})
		}

		logging.Warn(ctx, h.logger, "update category failed", zap.Int64("id", int64(id)), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
	defer cancel()

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid category id"})
	}

	if err := h.categories.Delete(ctx, int64(id)); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "category not found"})
		}
		if errors.Is(err, repository.ErrCategoryInUse) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "category has products"})
		}

		logging.Warn(ctx, h.logger, "delete category failed", zap.Int64("id", int64(id)), zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}
