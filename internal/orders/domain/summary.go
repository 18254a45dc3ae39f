package domain

import (
	"time"

	"github.com/valentinaBarreto18/marketplaceRepo/pkg/money"
)

// OrderSummary is the list-view shape: header fields plus an item count,
// without the items themselves.
type OrderSummary struct {
	ID          int64       `db:"id"`
	OrderNumber string      `db:"order_number"`
	UserID      int64       `db:"user_id"`
	Status      OrderStatus `db:"status"`
	Total       money.Money `db:"total"`
	ItemsCount  int64       `db:"items_count"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}
