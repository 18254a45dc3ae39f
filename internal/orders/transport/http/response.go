package http

import (
	"time"

	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/money"
)

type OrderItemResponse struct {
	ID           int64       `json:"id"`
	ProductID    int64       `json:"product_id"`
	ProductName  string      `json:"product_name"`
	ProductImage string      `json:"product_image,omitempty"`
	Price        money.Money `json:"price"`
	Quantity     int32       `json:"quantity"`
	LineTotal    money.Money `json:"line_total"`
}

type OrderResponse struct {
	ID          int64  `json:"id"`
	OrderNumber string `json:"order_number"`
	UserID      int64  `json:"user_id"`
	Status      string `json:"status"`

	Subtotal     money.Money `json:"subtotal"`
	Tax          money.Money `json:"tax"`
	ShippingCost money.Money `json:"shipping_cost"`
	Discount     money.Money `json:"discount"`
	Total        money.Money `json:"total"`

	ShippingAddress    string `json:"shipping_address"`
	ShippingCity       string `json:"shipping_city"`
	ShippingState      string `json:"shipping_state"`
	ShippingPostalCode string `json:"shipping_postal_code"`
	ShippingCountry    string `json:"shipping_country"`

	CustomerEmail string  `json:"customer_email"`
	CustomerPhone string  `json:"customer_phone"`
	Notes         *string `json:"notes,omitempty"`

	Items []OrderItemResponse `json:"items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderSummaryResponse struct {
	ID          int64       `json:"id"`
	OrderNumber string      `json:"order_number"`
	UserID      int64       `json:"user_id"`
	Status      string      `json:"status"`
	Total       money.Money `json:"total"`
	ItemsCount  int64       `json:"items_count"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func toOrderResponse(order *domain.Order) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ProductImage: item.ProductImage,
			Price:        item.Price,
			Quantity:     item.Quantity,
			LineTotal:    item.Total(),
		})
	}

	return &OrderResponse{
		ID:                 order.ID,
		OrderNumber:        order.OrderNumber,
		UserID:             order.UserID,
		Status:             string(order.Status),
		Subtotal:           order.Subtotal,
		Tax:                order.Tax,
		ShippingCost:       order.ShippingCost,
		Discount:           order.Discount,
		Total:              order.Total,
		ShippingAddress:    order.ShippingAddress,
		ShippingCity:       order.ShippingCity,
		ShippingState:      order.ShippingState,
		ShippingPostalCode: order.ShippingPostalCode,
		ShippingCountry:    order.ShippingCountry,
		CustomerEmail:      order.CustomerEmail,
		CustomerPhone:      order.CustomerPhone,
		Notes:              order.Notes,
		Items:              items,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
	}
}

func toSummaryResponses(summaries []domain.OrderSummary) []OrderSummaryResponse {
	out := make([]OrderSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, OrderSummaryResponse{
			ID:          s.ID,
			OrderNumber: s.OrderNumber,
			UserID:      s.UserID,
			Status:      string(s.Status),
			Total:       s.Total,
			ItemsCount:  s.ItemsCount,
			CreatedAt:   s.CreatedAt,
			UpdatedAt:   s.UpdatedAt,
		})
	}
	return out
}
