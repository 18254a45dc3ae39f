package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/identity"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/repository"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/logging"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/money"
	outboxDomain "github.com/valentinaBarreto18/marketplaceRepo/pkg/outbox/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/outbox/worker"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// maxOrderNumberAttempts bounds the retry loop on order number collisions.
const maxOrderNumberAttempts = 5

const orderEventsTopic = "order_events"

// CheckoutRequest is a complete checkout: the cart plus shipping and contact
// details. Tax, shipping cost and discount come from the caller; the order
// totals are derived from them and the persisted items.
type CheckoutRequest struct {
	Items []CartItemInput `json:"items" validate:"required,min=1"`

	Tax          money.Money `json:"tax"`
	ShippingCost money.Money `json:"shipping_cost"`
	Discount     money.Money `json:"discount"`

	ShippingAddress    string `json:"shipping_address" validate:"required,max=255"`
	ShippingCity       string `json:"shipping_city" validate:"required,max=100"`
	ShippingState      string `json:"shipping_state" validate:"required,max=100"`
	ShippingPostalCode string `json:"shipping_postal_code" validate:"required,max=20"`
	ShippingCountry    string `json:"shipping_country" validate:"required,max=100"`

	CustomerEmail string  `json:"customer_email" validate:"required,email"`
	CustomerPhone string  `json:"customer_phone" validate:"required,max=30"`
	Notes         *string `json:"notes"`
}

// UpdateStatusRequest changes an order status, optionally replacing the notes.
type UpdateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
	Notes  *string            `json:"notes"`
}

type OrderService interface {
	Checkout(ctx context.Context, caller identity.Caller, req *CheckoutRequest) (*domain.Order, error)
	GetOrder(ctx context.Context, caller identity.Caller, orderID int64) (*domain.Order, error)
	GetOrderStatus(ctx context.Context, caller identity.Caller, orderID int64) (domain.OrderStatus, error)
	ListMyOrders(ctx context.Context, caller identity.Caller) ([]domain.OrderSummary, error)
	ListAllOrders(ctx context.Context, caller identity.Caller) ([]domain.OrderSummary, error)
	UpdateStatus(ctx context.Context, caller identity.Caller, orderID int64, req *UpdateStatusRequest) (*domain.Order, error)
	CancelOrder(ctx context.Context, caller identity.Caller, orderID int64) (*domain.Order, error)
}

type orderService struct {
	pool       *pgxpool.Pool
	logger     *zap.Logger
	orderRepo  repository.OrderRepository
	outboxRepo worker.OutboxRepository
	cart       CartService
	validate   *validator.Validate
	tracer     trace.Tracer
}

func NewOrderService(
	pool *pgxpool.Pool,
	logger *zap.Logger,
	orderRepo repository.OrderRepository,
	outboxRepo worker.OutboxRepository,
	cart CartService,
) OrderService {
	return &orderService{
		pool:       pool,
		logger:     logger,
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		cart:       cart,
		validate:   validator.New(),
		tracer:     otel.Tracer("order_service"),
	}
}

// Checkout validates the cart and the shipping details, then creates the
// order atomically: header, items, recomputed totals and the OrderCreated
// outbox row all commit together or not at all. Order number collisions are
// retried inside the same transaction using savepoints.
func (s *orderService) Checkout(ctx context.Context, caller identity.Caller, req *CheckoutRequest) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Checkout")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", caller.UserID),
		attribute.Int("items_count", len(req.Items)),
	)

	if err := s.validateCheckout(ctx, req); err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.OrderItem{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductImage: item.ProductImage,
			Price:        item.Price,
			Quantity:     item.Quantity,
		})
	}

	order := &domain.Order{
		UserID:             caller.UserID,
		Status:             domain.OrderStatusPending,
		Tax:                req.Tax,
		ShippingCost:       req.ShippingCost,
		Discount:           req.Discount,
		ShippingAddress:    req.ShippingAddress,
		ShippingCity:       req.ShippingCity,
		ShippingState:      req.ShippingState,
		ShippingPostalCode: req.ShippingPostalCode,
		ShippingCountry:    req.ShippingCountry,
		CustomerEmail:      req.CustomerEmail,
		CustomerPhone:      req.CustomerPhone,
		Notes:              req.Notes,
		Items:              items,
	}
	order.CalculateTotal()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)
		err := tx.Rollback(shutdownCtx)

		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logging.Warn(
				shutdownCtx,
				s.logger,
				"Error rolling back transaction",
				zap.Error(err),
			)
		}
	}()

	if err := s.insertWithFreshNumber(ctx, tx, order); err != nil {
		return nil, err
	}

	if err := s.orderRepo.InsertItems(ctx, tx, order); err != nil {
		return nil, err
	}

	// re-read so the aggregate carries item ids and timestamps as stored
	storedItems, err := s.orderRepo.GetItems(ctx, tx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = storedItems

	order.CalculateTotal()
	if err := s.orderRepo.UpdateTotals(ctx, tx, order); err != nil {
		return nil, err
	}

	if err := s.emitEvent(ctx, tx, "OrderCreated", "Order", order.ID, map[string]any{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
		"total":        order.Total.String(),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		logging.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	logging.Info(
		ctx,
		s.logger,
		"Order created",
		zap.Int64("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("user_id", order.UserID),
	)

	return order, nil
}

// insertWithFreshNumber tries up to maxOrderNumberAttempts order numbers.
// Each attempt runs in a savepoint so a unique violation does not poison the
// surrounding transaction.
func (s *orderService) insertWithFreshNumber(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		order.OrderNumber = domain.NewOrderNumber()

		sp, err := tx.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to create savepoint: %w", err)
		}

		err = s.orderRepo.CreateOrder(ctx, sp, order)
		if err == nil {
			if err := sp.Commit(ctx); err != nil {
				return fmt.Errorf("failed to release savepoint: %w", err)
			}
			return nil
		}

		if rbErr := sp.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logging.Warn(ctx, s.logger, "Error rolling back savepoint", zap.Error(rbErr))
		}

		if !errors.Is(err, repository.ErrOrderNumberTaken) {
			return err
		}

		logging.Warn(
			ctx,
			s.logger,
			"Order number collision, retrying",
			zap.String("order_number", order.OrderNumber),
			zap.Int("attempt", attempt),
		)
	}

	return ErrOrderNumberExhausted
}

func (s *orderService) GetOrder(ctx context.Context, caller identity.Caller, orderID int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
	)

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// non-owners learn nothing, not even that the order exists
	if !caller.IsAdmin && order.UserID != caller.UserID {
		return nil, repository.ErrOrderNotFound
	}

	return order, nil
}

func (s *orderService) GetOrderStatus(ctx context.Context, caller identity.Caller, orderID int64) (domain.OrderStatus, error) {
	order, err := s.GetOrder(ctx, caller, orderID)
	if err != nil {
		return "", err
	}

	return order.Status, nil
}

func (s *orderService) ListMyOrders(ctx context.Context, caller identity.Caller) ([]domain.OrderSummary, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListMyOrders")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", caller.UserID),
	)

	return s.orderRepo.ListByUser(ctx, caller.UserID)
}

func (s *orderService) ListAllOrders(ctx context.Context, caller identity.Caller) ([]domain.OrderSummary, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListAllOrders")
	defer span.End()

	if !caller.IsAdmin {
		return nil, ErrForbidden
	}

	return s.orderRepo.ListAll(ctx)
}

// UpdateStatus applies the domain transition rules and persists the result.
// Admin only.
func (s *orderService) UpdateStatus(ctx context.Context, caller identity.Caller, orderID int64, req *UpdateStatusRequest) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
		attribute.String("target_status", string(req.Status)),
	)

	if !caller.IsAdmin {
		return nil, ErrForbidden
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.ChangeStatus(req.Status); err != nil {
		return nil, err
	}

	if err := s.persistStatus(ctx, order, req.Notes, "OrderStatusChanged"); err != nil {
		return nil, err
	}

	if req.Notes != nil {
		order.Notes = req.Notes
	}

	return order, nil
}

// CancelOrder cancels the order unless it was already delivered. Admin only.
func (s *orderService) CancelOrder(ctx context.Context, caller identity.Caller, orderID int64) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CancelOrder")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
	)

	if !caller.IsAdmin {
		return nil, ErrForbidden
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.Cancel(); err != nil {
		return nil, err
	}

	if err := s.persistStatus(ctx, order, nil, "OrderCancelled"); err != nil {
		return nil, err
	}

	return order, nil
}

// persistStatus writes the already transitioned status together with its
// outbox event in one transaction.
func (s *orderService) persistStatus(ctx context.Context, order *domain.Order, notes *string, eventType string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)
		err := tx.Rollback(shutdownCtx)

		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logging.Warn(
				shutdownCtx,
				s.logger,
				"Error rolling back transaction",
				zap.Error(err),
			)
		}
	}()

	if err := s.orderRepo.ChangeStatus(ctx, tx, order.ID, order.Status, notes); err != nil {
		return err
	}

	if err := s.emitEvent(ctx, tx, eventType, "Order", order.ID, map[string]any{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
		"status":       string(order.Status),
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		logging.Error(ctx, s.logger, "Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *orderService) validateCheckout(ctx context.Context, req *CheckoutRequest) error {
	fields := make(map[string]string)

	if err := s.validate.Struct(req); err != nil {
		for field, message := range utils.FormatValidationError(err) {
			fields[checkoutField(field)] = message
		}
	}

	// validator tags don't reach the Money fields, check them by hand
	if req.Tax.IsNegative() {
		fields["tax"] = "tax must not be negative"
	}
	if req.ShippingCost.IsNegative() {
		fields["shipping_cost"] = "shipping_cost must not be negative"
	}
	if req.Discount.IsNegative() {
		fields["discount"] = "discount must not be negative"
	}

	if len(req.Items) > 0 {
		if _, err := s.cart.ValidateCart(ctx, req.Items); err != nil {
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				for field, message := range vErr.Fields {
					fields[field] = message
				}
			} else {
				return err
			}
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	return nil
}

func (s *orderService) emitEvent(ctx context.Context, tx pgx.Tx, eventType, aggregateType string, aggregateID int64, payload map[string]any) error {
	envelope := map[string]any{
		"event":   eventType,
		"payload": payload,
	}

	payloadBytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	event := &outboxDomain.OutboxEvent{
		AggregateType: aggregateType,
		AggregateID:   fmt.Sprintf("%d", aggregateID),
		EventType:     eventType,
		Payload:       payloadBytes,
		Topic:         orderEventsTopic,
	}

	if err := s.outboxRepo.SaveOutboxEvent(ctx, tx, event); err != nil {
		logging.Error(ctx, s.logger, "Failed to save outbox event", zap.Error(err))
		return fmt.Errorf("failed to save outbox event: %w", err)
	}

	return nil
}

// checkoutField maps validator struct field names onto json names.
func checkoutField(field string) string {
	switch field {
	case "shippingaddress":
		return "shipping_address"
	case "shippingcity":
		return "shipping_city"
	case "shippingstate":
		return "shipping_state"
	case "shippingpostalcode":
		return "shipping_postal_code"
	case "shippingcountry":
		return "shipping_country"
	case "customeremail":
		return "customer_email"
	case "customerphone":
		return "customer_phone"
	default:
		return field
	}
}
