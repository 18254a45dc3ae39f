package domain_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/money"
)

func orderWithItems() *domain.Order {
	return &domain.Order{
		Status: domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ProductID: 1, ProductName: "iPhone 15", Price: money.MustParse("1000.00"), Quantity: 2},
			{ProductID: 2, ProductName: "Case", Price: money.MustParse("150.00"), Quantity: 1},
		},
	}
}

func TestCalculateTotal(t *testing.T) {
	order := orderWithItems()

	total := order.CalculateTotal()

	require.Equal(t, "2150.00", order.Subtotal.String())
	require.Equal(t, "2150.00", total.String())
}

func TestCalculateTotal_WithTaxShippingDiscount(t *testing.T) {
	order := orderWithItems()
	order.Tax = money.MustParse("19.00")
	order.ShippingCost = money.MustParse("12.50")
	order.Discount = money.MustParse("100.00")

	total := order.CalculateTotal()

	require.Equal(t, "2150.00", order.Subtotal.String())
	require.Equal(t, "2081.50", total.String())
}

func TestCalculateTotal_Idempotent(t *testing.T) {
	order := orderWithItems()

	first := order.CalculateTotal()
	second := order.CalculateTotal()

	require.True(t, first.Equal(second))
	require.Equal(t, "2150.00", order.Subtotal.String())
}

func TestCalculateTotal_DiscountMayExceedTotal(t *testing.T) {
	order := &domain.Order{
		Items:    []domain.OrderItem{{Price: money.MustParse("10.00"), Quantity: 1}},
		Discount: money.MustParse("50.00"),
	}

	total := order.CalculateTotal()

	require.True(t, total.IsNegative())
	require.Equal(t, "-40.00", total.String())
}

func TestCancel(t *testing.T) {
	for _, status := range []domain.OrderStatus{
		domain.OrderStatusPending,
		domain.OrderStatusConfirmed,
		domain.OrderStatusShipped,
	} {
		order := &domain.Order{Status: status}
		require.NoError(t, order.Cancel())
		require.Equal(t, domain.OrderStatusCancelled, order.Status)
	}
}

func TestCancel_DeliveredFails(t *testing.T) {
	order := &domain.Order{Status: domain.OrderStatusDelivered}

	err := order.Cancel()

	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	require.Equal(t, domain.OrderStatusDelivered, order.Status)
}

func TestCancel_Idempotent(t *testing.T) {
	order := &domain.Order{Status: domain.OrderStatusCancelled}

	require.NoError(t, order.Cancel())
	require.Equal(t, domain.OrderStatusCancelled, order.Status)
}

func TestChangeStatus_ForwardOnly(t *testing.T) {
	order := &domain.Order{Status: domain.OrderStatusPending}
	require.NoError(t, order.ChangeStatus(domain.OrderStatusConfirmed))
	require.NoError(t, order.ChangeStatus(domain.OrderStatusShipped))
	require.NoError(t, order.ChangeStatus(domain.OrderStatusDelivered))

	// forward jumps are allowed
	order = &domain.Order{Status: domain.OrderStatusPending}
	require.NoError(t, order.ChangeStatus(domain.OrderStatusShipped))

	// backward moves are not
	err := order.ChangeStatus(domain.OrderStatusPending)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)
	require.Equal(t, domain.OrderStatusShipped, order.Status)
}

func TestChangeStatus_CancelledEscapeHatch(t *testing.T) {
	order := &domain.Order{Status: domain.OrderStatusShipped}
	require.NoError(t, order.ChangeStatus(domain.OrderStatusCancelled))

	order = &domain.Order{Status: domain.OrderStatusDelivered}
	require.ErrorIs(t, order.ChangeStatus(domain.OrderStatusCancelled), domain.ErrInvalidTransition)

	// cancelled is terminal for the forward path
	order = &domain.Order{Status: domain.OrderStatusCancelled}
	require.ErrorIs(t, order.ChangeStatus(domain.OrderStatusConfirmed), domain.ErrInvalidTransition)
}

func TestChangeStatus_UnknownStatus(t *testing.T) {
	order := &domain.Order{Status: domain.OrderStatusPending}
	require.ErrorIs(t, order.ChangeStatus("refunded"), domain.ErrInvalidTransition)
}

func TestNewOrderNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-[0-9A-F]{8}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		number := domain.NewOrderNumber()
		require.Regexp(t, pattern, number)
		seen[number] = struct{}{}
	}

	require.Len(t, seen, 100)
}
