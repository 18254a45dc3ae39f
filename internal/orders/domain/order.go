package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/money"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// statusRank orders the forward path pending -> confirmed -> shipped ->
// delivered. Cancelled sits outside the path.
var statusRank = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusConfirmed: 1,
	OrderStatusShipped:   2,
	OrderStatusDelivered: 3,
}

func (s OrderStatus) Valid() bool {
	if s == OrderStatusCancelled {
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// OrderItem is an immutable snapshot of a product at purchase time. Items are
// created only together with their order and never updated afterwards.
type OrderItem struct {
	ID           int64       `db:"id"`
	OrderID      int64       `db:"order_id"`
	ProductID    int64       `db:"product_id"`
	ProductName  string      `db:"product_name"`
	ProductImage string      `db:"product_image"`
	Price        money.Money `db:"price"`
	Quantity     int32       `db:"quantity"`
	CreatedAt    time.Time   `db:"created_at"`
}

// Total is the line total, price times quantity.
func (i OrderItem) Total() money.Money {
	return i.Price.MulInt(int64(i.Quantity))
}

// Order is the aggregate root owning its line items and derived totals.
type Order struct {
	ID          int64       `db:"id"`
	OrderNumber string      `db:"order_number"`
	UserID      int64       `db:"user_id"`
	Status      OrderStatus `db:"status"`

	Subtotal     money.Money `db:"subtotal"`
	Tax          money.Money `db:"tax"`
	ShippingCost money.Money `db:"shipping_cost"`
	Discount     money.Money `db:"discount"`
	Total        money.Money `db:"total"`

	ShippingAddress    string `db:"shipping_address"`
	ShippingCity       string `db:"shipping_city"`
	ShippingState      string `db:"shipping_state"`
	ShippingPostalCode string `db:"shipping_postal_code"`
	ShippingCountry    string `db:"shipping_country"`

	CustomerEmail string  `db:"customer_email"`
	CustomerPhone string  `db:"customer_phone"`
	Notes         *string `db:"notes"`

	Items []OrderItem `db:"-"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CalculateTotal recomputes the subtotal from the owned items and derives
// total = subtotal + tax + shipping_cost - discount. Repeated calls with
// unchanged items yield the same result. Total is allowed to go negative when
// the discount exceeds everything else; there is deliberately no clamp.
func (o *Order) CalculateTotal() money.Money {
	subtotal := money.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.Total())
	}

	o.Subtotal = subtotal
	o.Total = subtotal.Add(o.Tax).Add(o.ShippingCost).Sub(o.Discount)
	return o.Total
}

// Cancel moves the order to cancelled. Delivered orders cannot be cancelled.
// Cancelling an already cancelled order is a no-op.
func (o *Order) Cancel() error {
	if o.Status == OrderStatusDelivered {
		return ErrInvalidTransition
	}

	o.Status = OrderStatusCancelled
	return nil
}

// ChangeStatus applies the strict transition policy: the status only moves
// forward along pending -> confirmed -> shipped -> delivered (jumps ahead are
// allowed, moves backward are not), plus cancellation from any non-delivered
// state. Setting the current status again is a no-op.
func (o *Order) ChangeStatus(target OrderStatus) error {
	if !target.Valid() {
		return ErrInvalidTransition
	}

	if target == OrderStatusCancelled {
		return o.Cancel()
	}

	if o.Status == OrderStatusCancelled {
		return ErrInvalidTransition
	}

	if statusRank[target] < statusRank[o.Status] {
		return ErrInvalidTransition
	}

	o.Status = target
	return nil
}

// NewOrderNumber generates "ORD-" plus eight uppercase hex characters.
// Uniqueness is enforced by the orders.order_number constraint, not here;
// checkout retries with a fresh number on collision.
func NewOrderNumber() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "ORD-" + strings.ToUpper(hex[:8])
}
