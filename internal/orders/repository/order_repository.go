package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/logging"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/money"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	InsertItems(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	GetItems(ctx context.Context, tx pgx.Tx, orderID int64) ([]domain.OrderItem, error)
	UpdateTotals(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	ChangeStatus(ctx context.Context, tx pgx.Tx, orderID int64, status domain.OrderStatus, notes *string) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.OrderSummary, error)
	ListAll(ctx context.Context) ([]domain.OrderSummary, error)
}

type orderRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewOrderRepository(pool *pgxpool.Pool, logger *zap.Logger) OrderRepository {
	return &orderRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("order_repository"),
	}
}

// CreateOrder inserts the order header only; items and totals follow in the
// same transaction. Returns ErrOrderNumberTaken on an order_number collision
// so the caller can retry with a fresh number.
func (r *orderRepo) CreateOrder(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.CreateOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", order.UserID),
		attribute.String("order_number", order.OrderNumber),
	)

	query := `
		INSERT INTO orders (
			order_number, user_id, status,
			subtotal, tax, shipping_cost, discount, total,
			shipping_address, shipping_city, shipping_state, shipping_postal_code, shipping_country,
			customer_email, customer_phone, notes,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(
		ctx,
		query,
		order.OrderNumber,
		order.UserID,
		string(order.Status),
		order.Subtotal.Decimal(),
		order.Tax.Decimal(),
		order.ShippingCost.Decimal(),
		order.Discount.Decimal(),
		order.Total.Decimal(),
		order.ShippingAddress,
		order.ShippingCity,
		order.ShippingState,
		order.ShippingPostalCode,
		order.ShippingCountry,
		order.CustomerEmail,
		order.CustomerPhone,
		order.Notes,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			return ErrOrderNumberTaken
		}

		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to insert order",
			zap.Error(err),
		)

		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

// InsertItems persists the line items preserving input order.
func (r *orderRepo) InsertItems(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.InsertItems")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", order.ID),
		attribute.Int("items_count", len(order.Items)),
	)

	query := `
		INSERT INTO order_items (order_id, product_id, product_name, product_image, price, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`

	for _, item := range order.Items {
		_, err := tx.Exec(
			ctx,
			query,
			order.ID,
			item.ProductID,
			item.ProductName,
			item.ProductImage,
			item.Price.Decimal(),
			item.Quantity,
		)
		if err != nil {
			span.RecordError(err)

			logging.Error(
				ctx,
				r.logger,
				"Failed to insert order item",
				zap.Int64("order_id", order.ID),
				zap.Int64("product_id", item.ProductID),
				zap.Error(err),
			)

			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return nil
}

// GetItems reads the persisted items in ascending id order, which matches
// insertion order.
func (r *orderRepo) GetItems(ctx context.Context, tx pgx.Tx, orderID int64) ([]domain.OrderItem, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetItems")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
	)

	query := `
		SELECT id, order_id, product_id, product_name, product_image, price, quantity, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`

	rows, err := tx.Query(ctx, query, orderID)
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// UpdateTotals persists the recomputed subtotal and total.
func (r *orderRepo) UpdateTotals(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.UpdateTotals")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", order.ID),
	)

	query := `
		UPDATE orders
		SET subtotal = $1, total = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`

	err := tx.QueryRow(
		ctx,
		query,
		order.Subtotal.Decimal(),
		order.Total.Decimal(),
		order.ID,
	).Scan(&order.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}

		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to update order totals",
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to update order totals: %w", err)
	}

	return nil
}

// ChangeStatus updates the status and, when notes is non-nil, the notes.
func (r *orderRepo) ChangeStatus(ctx context.Context, tx pgx.Tx, orderID int64, status domain.OrderStatus, notes *string) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ChangeStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
		attribute.String("status", string(status)),
	)

	query := `
		UPDATE orders
		SET status = $1, notes = COALESCE($2, notes), updated_at = NOW()
		WHERE id = $3
	`

	commandTag, err := tx.Exec(ctx, query, string(status), notes, orderID)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to update order status",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to update order status: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// GetByID loads the full aggregate: header plus items ordered by id.
func (r *orderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", id),
	)

	query := `
		SELECT id, order_number, user_id, status,
			subtotal, tax, shipping_cost, discount, total,
			shipping_address, shipping_city, shipping_state, shipping_postal_code, shipping_country,
			customer_email, customer_phone, notes,
			created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var (
		order                                  domain.Order
		subtotal, tax, shipping, discnt, total decimal.Decimal
		status                                 string
	)

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&status,
		&subtotal,
		&tax,
		&shipping,
		&discnt,
		&total,
		&order.ShippingAddress,
		&order.ShippingCity,
		&order.ShippingState,
		&order.ShippingPostalCode,
		&order.ShippingCountry,
		&order.CustomerEmail,
		&order.CustomerPhone,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to query order",
			zap.Int64("order_id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	order.Status = domain.OrderStatus(status)
	order.Subtotal = money.FromDecimal(subtotal)
	order.Tax = money.FromDecimal(tax)
	order.ShippingCost = money.FromDecimal(shipping)
	order.Discount = money.FromDecimal(discnt)
	order.Total = money.FromDecimal(total)

	itemsQuery := `
		SELECT id, order_id, product_id, product_name, product_image, price, quantity, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, itemsQuery, id)
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items, err := scanItems(rows)
	if err != nil {
		span.RecordError(err)

		return nil, err
	}

	order.Items = items
	return &order, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]domain.OrderSummary, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ListByUser")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
	)

	query := summaryQuery + `
		WHERE o.user_id = $1
		GROUP BY o.id
		ORDER BY o.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func (r *orderRepo) ListAll(ctx context.Context) ([]domain.OrderSummary, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ListAll")
	defer span.End()

	query := summaryQuery + `
		GROUP BY o.id
		ORDER BY o.created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

const summaryQuery = `
		SELECT o.id, o.order_number, o.user_id, o.status, o.total, COUNT(i.id) AS items_count,
			o.created_at, o.updated_at
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
`

func scanItems(rows pgx.Rows) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	for rows.Next() {
		var (
			item  domain.OrderItem
			price decimal.Decimal
		)
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.ProductImage,
			&price,
			&item.Quantity,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning order item: %w", err)
		}

		item.Price = money.FromDecimal(price)
		items = append(items, item)
	}

	return items, rows.Err()
}

func scanSummaries(rows pgx.Rows) ([]domain.OrderSummary, error) {
	var summaries []domain.OrderSummary
	for rows.Next() {
		var (
			s      domain.OrderSummary
			status string
			total  decimal.Decimal
		)
		if err := rows.Scan(
			&s.ID,
			&s.OrderNumber,
			&s.UserID,
			&status,
			&total,
			&s.ItemsCount,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning order summary: %w", err)
		}

		s.Status = domain.OrderStatus(status)
		s.Total = money.FromDecimal(total)
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
