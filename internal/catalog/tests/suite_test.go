package tests

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/catalog/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/catalog/repository"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/catalog/service"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/money"
	outboxRepository "github.com/valentinaBarreto18/marketplaceRepo/pkg/outbox/repository"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/testsuite"
	"go.uber.org/zap"
)

type IntegrationTestSuite struct {
	testsuite.BaseSuite

	ProductService  service.ProductService
	CategoryService service.CategoryService
	ProductRepo     repository.ProductRepository
}

var nextSKU int

func (s *IntegrationTestSuite) SetupSuite() {
	s.BaseSuite.SetupInfrastructure("../../../migrations/catalog")
}

func (s *IntegrationTestSuite) TearDownSuite() {
	s.BaseSuite.TearDownInfrastructure()
}

func (s *IntegrationTestSuite) SetupTest() {
	s.BaseSuite.TruncateTable("products")
	s.BaseSuite.TruncateTable("categories")
	s.BaseSuite.TruncateTable("outbox")

	logger := zap.NewNop()
	s.ProductRepo = repository.NewProductRepository(s.DbPool, logger)
	categoryRepo := repository.NewCategoryRepository(s.DbPool, logger)
	outboxRepo := outboxRepository.NewOutboxRepository(s.DbPool, logger)

	s.ProductService = service.NewProductService(s.ProductRepo, outboxRepo, s.DbPool, logger)
	s.CategoryService = service.NewCategoryService(categoryRepo, logger)
}

func (s *IntegrationTestSuite) createCategory(name, slug string) *domain.Category {
	category := &domain.Category{Name: name, Slug: slug}
	s.Require().NoError(s.CategoryService.Create(s.Ctx, category))

	return category
}

func (s *IntegrationTestSuite) newProduct(name string, categoryID int64) *domain.Product {
	nextSKU++
	return &domain.Product{
		Name:          name,
		Slug:          fmt.Sprintf("product-%04d", nextSKU),
		SKU:           fmt.Sprintf("SKU-%04d", nextSKU),
		Description:   "test product",
		Price:         money.MustParse("199.99"),
		StockQuantity: 10,
		CategoryID:    categoryID,
		IsActive:      true,
	}
}

func (s *IntegrationTestSuite) createProduct(name string, categoryID int64) int64 {
	id, err := s.ProductService.Create(s.Ctx, s.newProduct(name, categoryID))
	s.Require().NoError(err)
	s.Require().NotZero(id)

	return id
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
