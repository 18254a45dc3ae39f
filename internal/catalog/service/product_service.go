package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/catalog/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/catalog/repository"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/logging"
	outboxDomain "github.com/valentinaBarreto18/marketplaceRepo/pkg/outbox/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/outbox/worker"
	"go.uber.org/zap"
)

const productEventsTopic = "product_events"

type ProductService interface {
	Create(ctx context.Context, product *domain.Product) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int64, error)
	Update(ctx context.Context, id int64, input *domain.UpdateProductInput) error
	Delete(ctx context.Context, id int64) error
}

type productService struct {
	productRepo repository.ProductRepository
	outboxRepo  worker.OutboxRepository
	pool        *pgxpool.Pool
	logger      *zap.Logger
}

func NewProductService(
	productRepo repository.ProductRepository,
	outboxRepo worker.OutboxRepository,
	pool *pgxpool.Pool,
	logger *zap.Logger,
) ProductService {
	return &productService{
		productRepo: productRepo,
		outboxRepo:  outboxRepo,
		pool:        pool,
		logger:      logger,
	}
}

func (s *productService) Create(ctx context.Context, product *domain.Product) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logging.Error(ctx, s.logger, "Error starting transaction", zap.Error(err))
		return 0, err
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)
		err := tx.Rollback(cleanupCtx)

		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logging.Warn(
				ctx,
				s.logger,
				"Error rolling back transaction",
				zap.Error(err),
				zap.String("method_name", "Create"),
			)
		}
	}()

	id, err := s.productRepo.Create(ctx, tx, product)
	if err != nil {
		if errors.Is(err, repository.ErrSKUAlreadyExists) || errors.Is(err, repository.ErrSlugAlreadyExists) {
			return 0, err
		}

		logging.Error(ctx, s.logger, "create error", zap.Error(err))
		return 0, fmt.Errorf("error creating product: %w", err)
	}

	eventPayload := map[string]any{
		"event": "ProductCreated",
		"payload": map[string]any{
			"product_id": id,
			"sku":        product.SKU,
		},
	}

	payloadBytes, err := json.Marshal(eventPayload)
	if err != nil {
		return 0, fmt.Errorf("event payload marshal error: %w", err)
	}

	outboxEvent := &outboxDomain.OutboxEvent{
		AggregateType: "Product",
		AggregateID:   fmt.Sprintf("%d", id),
		EventType:     "ProductCreated",
		Payload:       payloadBytes,
		Topic:         productEventsTopic,
	}

	if err := s.outboxRepo.SaveOutboxEvent(ctx, tx, outboxEvent); err != nil {
		logging.Error(
			ctx,
			s.logger,
			"Error saving outbox event",
			zap.Error(err),
		)

		return 0, fmt.Errorf("failed to save outbox event: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		logging.Error(
			ctx,
			s.logger,
			"Error commiting transaction",
			zap.Error(err),
		)

		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return id, nil
}

func (s *productService) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	res, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			s.logger.Warn("product not found", zap.Int64("product_id", id))
			return nil, err
		}

		s.logger.Error("error getting product", zap.Error(err))
		return nil, fmt.Errorf("error getting product by id: %w", err)
	}

	return res, nil
}

func (s *productService) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	res, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			s.logger.Warn("product not found", zap.String("slug", slug))
			return nil, err
		}

		s.logger.Error("error getting product", zap.Error(err))
		return nil, fmt.Errorf("error getting product by slug: %w", err)
	}

	return res, nil
}

func (s *productService) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int64, error) {
	list, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("list error", zap.Error(err))
		return nil, 0, fmt.Errorf("error listing products: %w", err)
	}

	return list, total, nil
}

func (s *productService) Update(ctx context.Context, id int64, input *domain.UpdateProductInput) error {
	err := s.productRepo.Update(ctx, id, input)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			s.logger.Warn("product not found", zap.Int64("product_id", id))
			return err
		}

		s.logger.Error("error updating product", zap.Error(err))
		return err
	}

	return nil
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	err := s.productRepo.DeleteByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			s.logger.Warn("product not found", zap.Int64("product_id", id))
			return err
		}

		s.logger.Error("error deleting product", zap.Error(err))
		return err
	}

	return nil
}
