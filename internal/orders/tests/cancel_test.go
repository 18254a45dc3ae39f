package tests

import (
	"fmt"

	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/repository"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/service"
)

func (s *IntegrationTestSuite) TestCancel_FromAnyNonTerminalStatus() {
	for _, from := range []domain.OrderStatus{
		domain.OrderStatusPending,
		domain.OrderStatusConfirmed,
		domain.OrderStatusShipped,
	} {
		order := s.checkout(customer)
		s.forceStatus(order.ID, from)

		cancelled, err := s.OrderService.CancelOrder(s.Ctx, admin, order.ID)
		s.Require().NoError(err, "cancel from %s", from)
		s.Require().Equal(domain.OrderStatusCancelled, cancelled.Status)

		status, err := s.OrderService.GetOrderStatus(s.Ctx, admin, order.ID)
		s.Require().NoError(err)
		s.Require().Equal(domain.OrderStatusCancelled, status)
	}
}

func (s *IntegrationTestSuite) TestCancel_DeliveredOrderRejected() {
	order := s.checkout(customer)
	s.forceStatus(order.ID, domain.OrderStatusDelivered)

	_, err := s.OrderService.CancelOrder(s.Ctx, admin, order.ID)
	s.Require().ErrorIs(err, domain.ErrInvalidTransition)

	status, err := s.OrderService.GetOrderStatus(s.Ctx, admin, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusDelivered, status)
}

func (s *IntegrationTestSuite) TestCancel_Idempotent() {
	order := s.checkout(customer)

	_, err := s.OrderService.CancelOrder(s.Ctx, admin, order.ID)
	s.Require().NoError(err)

	again, err := s.OrderService.CancelOrder(s.Ctx, admin, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusCancelled, again.Status)
}

func (s *IntegrationTestSuite) TestCancel_NonAdminForbidden() {
	order := s.checkout(customer)

	_, err := s.OrderService.CancelOrder(s.Ctx, customer, order.ID)
	s.Require().ErrorIs(err, service.ErrForbidden)

	status, err := s.OrderService.GetOrderStatus(s.Ctx, admin, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusPending, status)
}

func (s *IntegrationTestSuite) TestCancel_UnknownOrder() {
	_, err := s.OrderService.CancelOrder(s.Ctx, admin, 999999)
	s.Require().ErrorIs(err, repository.ErrOrderNotFound)
}

func (s *IntegrationTestSuite) TestCancel_WritesOutboxEvent() {
	order := s.checkout(customer)

	_, err := s.OrderService.CancelOrder(s.Ctx, admin, order.ID)
	s.Require().NoError(err)

	var count int64
	err = s.DbPool.QueryRow(
		s.Ctx,
		`SELECT COUNT(*) FROM outbox WHERE aggregate_id = $1 AND event_type = 'OrderCancelled'`,
		fmt.Sprintf("%d", order.ID),
	).Scan(&count)
	s.Require().NoError(err)
	s.Require().EqualValues(1, count)
}
