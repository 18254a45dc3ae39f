package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/money"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// minItemPrice is the cheapest price a cart line may carry.
var minItemPrice = money.MustParse("0.01")

// CartItemInput is one line of an incoming cart. Prices arrive as exact
// two decimal strings and are parsed before the struct is built.
type CartItemInput struct {
	ProductID    int64       `json:"product_id" validate:"required,gt=0"`
	ProductName  string      `json:"product_name" validate:"required,max=255"`
	ProductImage string      `json:"product_image" validate:"omitempty,url"`
	Price        money.Money `json:"price"`
	Quantity     int32       `json:"quantity" validate:"required,gte=1"`
}

// CartSummary is the result of validating a cart: either Valid with the
// computed subtotal, or invalid with the per-field errors on the error side.
type CartSummary struct {
	Valid      bool        `json:"valid"`
	Subtotal   money.Money `json:"subtotal"`
	ItemsCount int         `json:"items_count"`
}

type CartService interface {
	ValidateCart(ctx context.Context, items []CartItemInput) (*CartSummary, error)
}

type cartService struct {
	logger   *zap.Logger
	validate *validator.Validate
	tracer   trace.Tracer
}

func NewCartService(logger *zap.Logger) CartService {
	return &cartService{
		logger:   logger,
		validate: validator.New(),
		tracer:   otel.Tracer("cart_service"),
	}
}

// ValidateCart checks the whole batch and rejects it as a unit: one bad line
// fails the entire cart, with every problem reported at once under keys like
// "items[2].price". An empty cart is valid with a zero subtotal.
func (s *cartService) ValidateCart(ctx context.Context, items []CartItemInput) (*CartSummary, error) {
	ctx, span := s.tracer.Start(ctx, "CartService.ValidateCart")
	defer span.End()

	span.SetAttributes(
		attribute.Int("items_count", len(items)),
	)

	fields := make(map[string]string)
	subtotal := money.Zero

	for i, item := range items {
		if err := s.validate.Struct(item); err != nil {
			for field, message := range utils.FormatValidationError(err) {
				fields[fmt.Sprintf("items[%d].%s", i, jsonField(field))] = message
			}
		}

		if item.Price.Cmp(minItemPrice) < 0 {
			fields[fmt.Sprintf("items[%d].price", i)] = "price must be at least 0.01"
			continue
		}

		subtotal = subtotal.Add(item.Price.MulInt(int64(item.Quantity)))
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	return &CartSummary{
		Valid:      true,
		Subtotal:   subtotal,
		ItemsCount: len(items),
	}, nil
}

// jsonField maps the struct field names the validator reports onto the json
// names clients actually sent.
func jsonField(field string) string {
	switch field {
	case "productid":
		return "product_id"
	case "productname":
		return "product_name"
	case "productimage":
		return "product_image"
	default:
		return field
	}
}
