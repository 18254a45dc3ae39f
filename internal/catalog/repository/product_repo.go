package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/catalog/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/logging"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/money"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ProductFilter narrows List results. Zero values mean "no filter".
type ProductFilter struct {
	Search       string
	CategorySlug string
	Featured     *bool
	Limit        int64
	Offset       int64
}

type ProductRepository interface {
	Create(ctx context.Context, tx pgx.Tx, product *domain.Product) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int64, error)
	Update(ctx context.Context, id int64, input *domain.UpdateProductInput) error
	DeleteByID(ctx context.Context, id int64) error
	DecreaseStock(ctx context.Context, tx pgx.Tx, id, quantity int64) error
	IncreaseStock(ctx context.Context, tx pgx.Tx, id, quantity int64) error
}

type productRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewProductRepository(pool *pgxpool.Pool, logger *zap.Logger) ProductRepository {
	return &productRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("catalog/product_repo"),
	}
}

func (r *productRepo) Create(ctx context.Context, tx pgx.Tx, product *domain.Product) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("name", product.Name),
		attribute.String("sku", product.SKU),
	)

	query := `
		INSERT INTO products (name, slug, sku, description, short_description, price, discount_price,
			stock_quantity, category_id, image_url, images, is_active, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, rating, review_count, created_at, updated_at;
	`

	var discount *decimal.Decimal
	if product.DiscountPrice != nil {
		d := product.DiscountPrice.Decimal()
		discount = &d
	}

	images := product.Images
	if images == nil {
		images = []string{}
	}

	err := tx.QueryRow(
		ctx,
		query,
		product.Name,
		product.Slug,
		product.SKU,
		product.Description,
		product.ShortDescription,
		product.Price.Decimal(),
		discount,
		product.StockQuantity,
		product.CategoryID,
		product.ImageUrl,
		images,
		product.IsActive,
		product.IsFeatured,
	).Scan(&product.ID, &product.Rating, &product.ReviewCount, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		span.RecordError(err)

		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			if pgError.ConstraintName == "products_slug_key" {
				return 0, ErrSlugAlreadyExists
			}
			return 0, ErrSKUAlreadyExists
		}

		logging.Error(
			ctx,
			r.logger,
			"Error creating product",
			zap.Error(err),
		)

		return 0, fmt.Errorf("error creating product: %w", err)
	}

	return product.ID, nil
}

const productColumns = `id, name, slug, sku, description, short_description, price, discount_price,
		stock_quantity, category_id, image_url, images, is_active, is_featured, rating, review_count,
		created_at, updated_at`

func scanProduct(row pgx.Row, p *domain.Product) error {
	var (
		price    decimal.Decimal
		discount *decimal.Decimal
	)

	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.SKU,
		&p.Description,
		&p.ShortDescription,
		&price,
		&discount,
		&p.StockQuantity,
		&p.CategoryID,
		&p.ImageUrl,
		&p.Images,
		&p.IsActive,
		&p.IsFeatured,
		&p.Rating,
		&p.ReviewCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return err
	}

	p.Price = money.FromDecimal(price)
	if discount != nil {
		d := money.FromDecimal(*discount)
		p.DiscountPrice = &d
	}

	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND deleted_at IS NULL;
	`

	var res domain.Product
	if err := scanProduct(r.pool.QueryRow(ctx, query, id), &res); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}

		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error get by id",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting product: %w", err)
	}

	return &res, nil
}

func (r *productRepo) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.GetBySlug")
	defer span.End()

	span.SetAttributes(
		attribute.String("slug", slug),
	)

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE slug = $1 AND deleted_at IS NULL;
	`

	var res domain.Product
	if err := scanProduct(r.pool.QueryRow(ctx, query, slug), &res); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}

		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error get by slug",
			zap.String("slug", slug),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting product: %w", err)
	}

	return &res, nil
}

func (r *productRepo) List(ctx context.Context, filter ProductFilter) ([]domain.Product, int64, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.List")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("limit", filter.Limit),
		attribute.Int64("offset", filter.Offset),
		attribute.String("search", filter.Search),
	)

	baseQuery := `SELECT ` + productColumns + `
		FROM products
		WHERE deleted_at IS NULL AND is_active = true`
	countQuery := `SELECT COUNT(*) FROM products WHERE deleted_at IS NULL AND is_active = true`

	var args []interface{}
	argId := 1

	if filter.Search != "" {
		cond := fmt.Sprintf(" AND name ILIKE $%d", argId)
		baseQuery += cond
		countQuery += cond

		args = append(args, "%"+filter.Search+"%")
		argId++
	}

	if filter.CategorySlug != "" {
		cond := fmt.Sprintf(" AND category_id IN (SELECT id FROM categories WHERE slug = $%d)", argId)
		baseQuery += cond
		countQuery += cond

		args = append(args, filter.CategorySlug)
		argId++
	}

	if filter.Featured != nil {
		cond := fmt.Sprintf(" AND is_featured = $%d", argId)
		baseQuery += cond
		countQuery += cond

		args = append(args, *filter.Featured)
		argId++
	}

	countArgs := make([]interface{}, len(args))
	copy(countArgs, args)

	baseQuery += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argId, argId+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, baseQuery, args...)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error getting products",
			zap.String("search", filter.Search),
			zap.Error(err),
		)

		return nil, 0, fmt.Errorf("error selecting products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			span.RecordError(err)

			return nil, 0, fmt.Errorf("error scanning rows: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)

		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	var totalCount int64
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&totalCount); err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to count products",
			zap.Error(err),
		)

		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	return products, totalCount, nil
}

func (r *productRepo) Update(ctx context.Context, id int64, input *domain.UpdateProductInput) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `UPDATE products SET `
	var args []interface{}
	argId := 1

	var updates []string

	if input.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argId))
		args = append(args, *input.Name)
		argId++
	}

	if input.Slug != nil {
		updates = append(updates, fmt.Sprintf("slug = $%d", argId))
		args = append(args, *input.Slug)
		argId++
	}

	if input.Description != nil {
		updates = append(updates, fmt.Sprintf("description = $%d", argId))
		args = append(args, *input.Description)
		argId++
	}

	if input.ShortDescription != nil {
		updates = append(updates, fmt.Sprintf("short_description = $%d", argId))
		args = append(args, *input.ShortDescription)
		argId++
	}

	if input.Price != nil {
		updates = append(updates, fmt.Sprintf("price = $%d", argId))
		args = append(args, input.Price.Decimal())
		argId++
	}

	if input.DiscountPrice != nil {
		updates = append(updates, fmt.Sprintf("discount_price = $%d", argId))
		args = append(args, input.DiscountPrice.Decimal())
		argId++
	}

	if input.StockQuantity != nil {
		updates = append(updates, fmt.Sprintf("stock_quantity = $%d", argId))
		args = append(args, *input.StockQuantity)
		argId++
	}

	if input.CategoryID != nil {
		updates = append(updates, fmt.Sprintf("category_id = $%d", argId))
		args = append(args, *input.CategoryID)
		argId++
	}

	if input.ImageUrl != nil {
		updates = append(updates, fmt.Sprintf("image_url = $%d", argId))
		args = append(args, *input.ImageUrl)
		argId++
	}

	if input.Images != nil {
		updates = append(updates, fmt.Sprintf("images = $%d", argId))
		args = append(args, input.Images)
		argId++
	}

	if input.IsActive != nil {
		updates = append(updates, fmt.Sprintf("is_active = $%d", argId))
		args = append(args, *input.IsActive)
		argId++
	}

	if input.IsFeatured != nil {
		updates = append(updates, fmt.Sprintf("is_featured = $%d", argId))
		args = append(args, *input.IsFeatured)
		argId++
	}

	if len(updates) == 0 {
		return nil
	}

	updates = append(updates, "updated_at = NOW()")

	query += strings.Join(updates, ", ")
	query += fmt.Sprintf(" WHERE id = $%d AND deleted_at IS NULL", argId)
	args = append(args, id)

	commandTag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		span.RecordError(err)

		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			return ErrSlugAlreadyExists
		}

		logging.Error(
			ctx,
			r.logger,
			"Failed to Update product",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error updating product: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepo) DeleteByID(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.DeleteByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		UPDATE products
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	commandTag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error deleting product by id",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error deleting product by id: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}

func (r *productRepo) DecreaseStock(ctx context.Context, tx pgx.Tx, id, quantity int64) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.DecreaseStock")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
		attribute.Int64("quantity", quantity),
	)

	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		WHERE id = $1
			AND stock_quantity >= $2
			AND deleted_at IS NULL;
	`

	commandTag, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error decreasing stock",
			zap.Int64("id", id),
			zap.Int64("quantity", quantity),
		)

		return fmt.Errorf("error decreasing stock for product %d: %w", id, err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrInsufficientStock
	}

	return nil
}

func (r *productRepo) IncreaseStock(ctx context.Context, tx pgx.Tx, id, quantity int64) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.IncreaseStock")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
		attribute.Int64("quantity", quantity),
	)

	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $1, updated_at = NOW()
		WHERE id = $2
	`
	commandTag, err := tx.Exec(ctx, query, quantity, id)
	if err != nil {
		span.RecordError(err)
		logging.Warn(ctx, r.logger, "Failed to update stock_quantity", zap.Error(err))

		return err
	}

	if commandTag.RowsAffected() == 0 {
		logging.Warn(ctx, r.logger, "Product not found", zap.Int64("product_id", id))
		return ErrProductNotFound
	}

	return nil
}
