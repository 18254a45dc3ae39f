package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/catalog/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var ErrCategoryAlreadyExists = errors.New("category already exists")

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, id int64, input *domain.UpdateCategoryInput) error
	Delete(ctx context.Context, id int64) error
}

type categoryRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewCategoryRepository(pool *pgxpool.Pool, logger *zap.Logger) CategoryRepository {
	return &categoryRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("catalog/category_repo"),
	}
}

func (r *categoryRepo) Create(ctx context.Context, category *domain.Category) error {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("slug", category.Slug),
	)

	query := `
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id, is_active, created_at;
	`

	err := r.pool.QueryRow(ctx, query, category.Name, category.Slug, category.Description).
		Scan(&category.ID, &category.IsActive, &category.CreatedAt)
	if err != nil {
		span.RecordError(err)

		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			return ErrCategoryAlreadyExists
		}

		logging.Error(
			ctx,
			r.logger,
			"Error creating category",
			zap.String("slug", category.Slug),
			zap.Error(err),
		)

		return fmt.Errorf("error creating category: %w", err)
	}

	return nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		SELECT id, name, slug, description, is_active, created_at
		FROM categories
		WHERE id = $1;
	`

	var category domain.Category
	if err := r.pool.QueryRow(ctx, query, id).
		Scan(&category.ID, &category.Name, &category.Slug, &category.Description, &category.IsActive, &category.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}

		span.RecordError(err)

		return nil, fmt.Errorf("error getting category: %w", err)
	}

	return &category, nil
}

func (r *categoryRepo) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.GetBySlug")
	defer span.End()

	span.SetAttributes(
		attribute.String("slug", slug),
	)

	query := `
		SELECT id, name, slug, description, is_active, created_at
		FROM categories
		WHERE slug = $1 AND is_active = TRUE;
	`

	var category domain.Category
	if err := r.pool.QueryRow(ctx, query, slug).
		Scan(&category.ID, &category.Name, &category.Slug, &category.Description, &category.IsActive, &category.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}

		span.RecordError(err)

		return nil, fmt.Errorf("error getting category: %w", err)
	}

	return &category, nil
}

func (r *categoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.List")
	defer span.End()

	query := `
		SELECT id, name, slug, description, is_active, created_at
		FROM categories
		WHERE is_active = TRUE
		ORDER BY name ASC;
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error listing categories",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.CreatedAt); err != nil {
			span.RecordError(err)

			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (r *categoryRepo) Update(ctx context.Context, id int64, input *domain.UpdateCategoryInput) error {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Update")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `UPDATE categories SET `
	var args []interface{}
	argId := 1

	var updates []string

	if input.Name != nil {
		updates = append(updates, fmt.Sprintf("name = $%d", argId))
		args = append(args, *input.Name)
		argId++
	}

	if input.Description != nil {
		updates = append(updates, fmt.Sprintf("description = $%d", argId))
		args = append(args, *input.Description)
		argId++
	}

	if input.IsActive != nil {
		updates = append(updates, fmt.Sprintf("is_active = $%d", argId))
		args = append(args, *input.IsActive)
		argId++
	}

	if len(updates) == 0 {
		return nil
	}

	query += strings.Join(updates, ", ")
	query += fmt.Sprintf(" WHERE id = $%d", argId)
	args = append(args, id)

	commandTag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error updating category",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error updating category: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// Delete removes the category row. Categories still referenced by products
// are protected by the foreign key.
func (r *categoryRepo) Delete(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Delete")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	commandTag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)

		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23503" {
			return ErrCategoryInUse
		}

		logging.Error(
			ctx,
			r.logger,
			"Error deleting category",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error deleting category: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
