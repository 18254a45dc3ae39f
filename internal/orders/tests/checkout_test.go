package tests

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/service"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/money"
)

var orderNumberPattern = regexp.MustCompile(`^ORD-[0-9A-F]{8}$`)

func (s *IntegrationTestSuite) TestCheckout_Success() {
	order := s.checkout(customer)

	s.Require().Equal(domain.OrderStatusPending, order.Status)
	s.Require().Equal(customer.UserID, order.UserID)
	s.Require().Regexp(orderNumberPattern, order.OrderNumber)
	s.Require().Equal("2150.00", order.Subtotal.String())
	s.Require().Equal("2150.00", order.Total.String())
	s.Require().Len(order.Items, 2)

	// input order is preserved
	s.Require().Equal("iPhone 15", order.Items[0].ProductName)
	s.Require().Equal("Case", order.Items[1].ProductName)

	stored, err := s.OrderService.GetOrder(s.Ctx, customer, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(order.OrderNumber, stored.OrderNumber)
	s.Require().Equal("2150.00", stored.Total.String())
	s.Require().Len(stored.Items, 2)
}

func (s *IntegrationTestSuite) TestCheckout_WithTaxShippingDiscount() {
	req := checkoutRequest()
	req.Tax = money.MustParse("19.00")
	req.ShippingCost = money.MustParse("12.50")
	req.Discount = money.MustParse("100.00")

	order, err := s.OrderService.Checkout(s.Ctx, customer, req)
	s.Require().NoError(err)

	s.Require().Equal("2150.00", order.Subtotal.String())
	s.Require().Equal("2081.50", order.Total.String())
}

func (s *IntegrationTestSuite) TestCheckout_NegativeMoneyRejected() {
	req := checkoutRequest()
	req.Tax = money.MustParse("-50.00")
	req.ShippingCost = money.MustParse("-1.00")
	req.Discount = money.MustParse("-10.00")

	order, err := s.OrderService.Checkout(s.Ctx, customer, req)

	s.Require().Nil(order)

	var vErr *service.ValidationError
	s.Require().True(errors.As(err, &vErr))
	s.Require().Contains(vErr.Fields, "tax")
	s.Require().Contains(vErr.Fields, "shipping_cost")
	s.Require().Contains(vErr.Fields, "discount")

	s.Require().Zero(s.countRows("orders"))
	s.Require().Zero(s.countRows("outbox"))
}

func (s *IntegrationTestSuite) TestCheckout_EmptyCart() {
	req := checkoutRequest()
	req.Items = nil

	order, err := s.OrderService.Checkout(s.Ctx, customer, req)

	s.Require().Nil(order)

	var vErr *service.ValidationError
	s.Require().True(errors.As(err, &vErr))

	s.Require().Zero(s.countRows("orders"))
	s.Require().Zero(s.countRows("order_items"))
	s.Require().Zero(s.countRows("outbox"))
}

func (s *IntegrationTestSuite) TestCheckout_InvalidItemPersistsNothing() {
	req := checkoutRequest()
	req.Items[1].Quantity = 0

	order, err := s.OrderService.Checkout(s.Ctx, customer, req)

	s.Require().Nil(order)

	var vErr *service.ValidationError
	s.Require().True(errors.As(err, &vErr))
	s.Require().Contains(vErr.Fields, "items[1].quantity")

	s.Require().Zero(s.countRows("orders"))
	s.Require().Zero(s.countRows("order_items"))
}

func (s *IntegrationTestSuite) TestCheckout_ConcurrentOrderNumbersUnique() {
	const n = 10

	var wg sync.WaitGroup
	numbers := make(chan string, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			order, err := s.OrderService.Checkout(s.Ctx, customer, checkoutRequest())
			if err == nil {
				numbers <- order.OrderNumber
			}
		}()
	}

	wg.Wait()
	close(numbers)

	seen := make(map[string]struct{})
	for number := range numbers {
		_, dup := seen[number]
		s.Require().False(dup, "duplicate order number %s", number)
		seen[number] = struct{}{}
	}

	s.Require().Len(seen, n)
}

func (s *IntegrationTestSuite) TestCheckout_OutboxEventPublished() {
	order := s.checkout(customer)

	var outboxId int64
	err := s.DbPool.QueryRow(
		s.Ctx,
		`SELECT id FROM outbox WHERE aggregate_id = $1 AND event_type = 'OrderCreated'`,
		fmt.Sprintf("%d", order.ID),
	).Scan(&outboxId)
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		var publishedAt *time.Time

		err := s.DbPool.QueryRow(
			s.Ctx,
			`SELECT published_at FROM outbox WHERE id = $1`,
			outboxId,
		).Scan(&publishedAt)

		return err == nil && publishedAt != nil
	}, 5*time.Second, 100*time.Millisecond)
}
