package tests

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/auth/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/auth/repository"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/auth/service"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/auth/validator"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/kafka"
	outboxRepository "github.com/valentinaBarreto18/marketplaceRepo/pkg/outbox/repository"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/outbox/worker"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/testsuite"
	"go.uber.org/zap"
)

type IntegrationTestSuite struct {
	testsuite.BaseSuite

	AuthService     service.AuthService
	UserRepo        repository.UserRepository
	TestProducer    kafka.Producer
	OutboxProcessor *worker.OutboxProcessor
	workerCancel    context.CancelFunc
}

var nextEmail int

func (s *IntegrationTestSuite) SetupSuite() {
	os.Setenv("ACCESS_SECRET", "integration-access-secret")
	os.Setenv("REFRESH_SECRET", "integration-refresh-secret")

	s.BaseSuite.SetupInfrastructure("../../../migrations/auth")
}

func (s *IntegrationTestSuite) TearDownSuite() {
	s.BaseSuite.TearDownInfrastructure()
}

func (s *IntegrationTestSuite) SetupTest() {
	s.BaseSuite.TruncateTable("users")
	s.BaseSuite.TruncateTable("refresh_sessions")
	s.BaseSuite.TruncateTable("outbox")

	logger := zap.NewNop()
	s.UserRepo = repository.NewUserRepository(s.DbPool, logger)
	outboxRepo := outboxRepository.NewOutboxRepository(s.DbPool, logger)

	var err error
	s.TestProducer, err = kafka.NewProducer(s.KafkaBrokers)
	s.Require().NoError(err, "failed to create kafka producer")

	s.AuthService = service.NewAuthService(s.UserRepo, outboxRepo, logger, s.DbPool, validator.NewValidator())

	s.OutboxProcessor = worker.NewOutboxProcessor(s.DbPool, outboxRepo, s.TestProducer, logger)

	workerCtx, cancel := context.WithCancel(s.Ctx)
	s.workerCancel = cancel

	go s.OutboxProcessor.Start(workerCtx)
}

func (s *IntegrationTestSuite) TearDownTest() {
	if s.workerCancel != nil {
		s.workerCancel()
	}
}

func registerRequest() *service.RegisterRequest {
	nextEmail++
	return &service.RegisterRequest{
		Email:           fmt.Sprintf("user%d@example.com", nextEmail),
		Password:        "sup3rsecret",
		PasswordConfirm: "sup3rsecret",
		FirstName:       "Valentina",
		LastName:        "Barreto",
		Phone:           "+57 300 000 0000",
	}
}

func (s *IntegrationTestSuite) register() (*domain.User, *service.RegisterRequest) {
	req := registerRequest()

	user, err := s.AuthService.Register(s.Ctx, req)
	s.Require().NoError(err)
	s.Require().NotNil(user)

	return user, req
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
