package tests

import (
	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/repository"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/orders/service"
)

func (s *IntegrationTestSuite) TestUpdateStatus_ForwardPath() {
	order := s.checkout(customer)

	for _, next := range []domain.OrderStatus{
		domain.OrderStatusConfirmed,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
	} {
		updated, err := s.OrderService.UpdateStatus(s.Ctx, admin, order.ID, &service.UpdateStatusRequest{Status: next})
		s.Require().NoError(err, "transition to %s", next)
		s.Require().Equal(next, updated.Status)
	}

	status, err := s.OrderService.GetOrderStatus(s.Ctx, admin, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusDelivered, status)
}

func (s *IntegrationTestSuite) TestUpdateStatus_ForwardJumpAllowed() {
	order := s.checkout(customer)

	updated, err := s.OrderService.UpdateStatus(s.Ctx, admin, order.ID, &service.UpdateStatusRequest{
		Status: domain.OrderStatusShipped,
	})
	s.Require().NoError(err)
	s.Require().Equal(domain.OrderStatusShipped, updated.Status)
}

func (s *IntegrationTestSuite) TestUpdateStatus_BackwardRejected() {
	order := s.checkout(customer)
	s.forceStatus(order.ID, domain.OrderStatusShipped)

	_, err := s.OrderService.UpdateStatus(s.Ctx, admin, order.ID, &service.UpdateStatusRequest{
		Status: domain.OrderStatusConfirmed,
	})
	s.Require().ErrorIs(err, domain.ErrInvalidTransition)
}

func (s *IntegrationTestSuite) TestUpdateStatus_NonAdminForbidden() {
	order := s.checkout(customer)

	_, err := s.OrderService.UpdateStatus(s.Ctx, customer, order.ID, &service.UpdateStatusRequest{
		Status: domain.OrderStatusConfirmed,
	})
	s.Require().ErrorIs(err, service.ErrForbidden)
}

func (s *IntegrationTestSuite) TestUpdateStatus_ReplacesNotes() {
	order := s.checkout(customer)

	notes := "left at the front desk"
	_, err := s.OrderService.UpdateStatus(s.Ctx, admin, order.ID, &service.UpdateStatusRequest{
		Status: domain.OrderStatusConfirmed,
		Notes:  &notes,
	})
	s.Require().NoError(err)

	stored, err := s.OrderService.GetOrder(s.Ctx, admin, order.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored.Notes)
	s.Require().Equal(notes, *stored.Notes)

	// omitting notes keeps the previous value
	_, err = s.OrderService.UpdateStatus(s.Ctx, admin, order.ID, &service.UpdateStatusRequest{
		Status: domain.OrderStatusShipped,
	})
	s.Require().NoError(err)

	stored, err = s.OrderService.GetOrder(s.Ctx, admin, order.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored.Notes)
	s.Require().Equal(notes, *stored.Notes)
}

func (s *IntegrationTestSuite) TestGetOrder_Visibility() {
	order := s.checkout(customer)

	own, err := s.OrderService.GetOrder(s.Ctx, customer, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(order.ID, own.ID)

	_, err = s.OrderService.GetOrder(s.Ctx, stranger, order.ID)
	s.Require().ErrorIs(err, repository.ErrOrderNotFound)

	asAdmin, err := s.OrderService.GetOrder(s.Ctx, admin, order.ID)
	s.Require().NoError(err)
	s.Require().Equal(order.ID, asAdmin.ID)
}

func (s *IntegrationTestSuite) TestListMyOrders() {
	first := s.checkout(customer)
	second := s.checkout(customer)
	s.checkout(stranger)

	summaries, err := s.OrderService.ListMyOrders(s.Ctx, customer)
	s.Require().NoError(err)
	s.Require().Len(summaries, 2)

	// newest first
	s.Require().Equal(second.ID, summaries[0].ID)
	s.Require().Equal(first.ID, summaries[1].ID)
	s.Require().EqualValues(2, summaries[0].ItemsCount)
	s.Require().Equal("2150.00", summaries[0].Total.String())
}

func (s *IntegrationTestSuite) TestListAllOrders() {
	s.checkout(customer)
	s.checkout(stranger)

	summaries, err := s.OrderService.ListAllOrders(s.Ctx, admin)
	s.Require().NoError(err)
	s.Require().Len(summaries, 2)

	_, err = s.OrderService.ListAllOrders(s.Ctx, customer)
	s.Require().ErrorIs(err, service.ErrForbidden)
}
