package tests

import (
	"fmt"

	"github.com/valentinaBarreto18/marketplaceRepo/internal/catalog/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/catalog/repository"
	"github.com/valentinaBarreto18/marketplaceRepo/pkg/money"
)

func (s *IntegrationTestSuite) TestCreateProduct() {
	category := s.createCategory("Phones", "phones")

	product := s.newProduct("iPhone 15", category.ID)
	id, err := s.ProductService.Create(s.Ctx, product)
	s.Require().NoError(err)

	stored, err := s.ProductService.FindByID(s.Ctx, id)
	s.Require().NoError(err)
	s.Require().Equal("iPhone 15", stored.Name)
	s.Require().Equal(product.Slug, stored.Slug)
	s.Require().Equal("199.99", stored.Price.String())
	s.Require().Equal(category.ID, stored.CategoryID)
	s.Require().False(stored.IsFeatured)
	s.Require().Zero(stored.ReviewCount)

	bySlug, err := s.ProductService.FindBySlug(s.Ctx, product.Slug)
	s.Require().NoError(err)
	s.Require().Equal(id, bySlug.ID)

	var count int64
	err = s.DbPool.QueryRow(
		s.Ctx,
		`SELECT COUNT(*) FROM outbox WHERE aggregate_id = $1 AND event_type = 'ProductCreated'`,
		fmt.Sprintf("%d", id),
	).Scan(&count)
	s.Require().NoError(err)
	s.Require().EqualValues(1, count)
}

func (s *IntegrationTestSuite) TestCreateProduct_DuplicateSKU() {
	category := s.createCategory("Phones", "phones")

	product := s.newProduct("iPhone 15", category.ID)
	_, err := s.ProductService.Create(s.Ctx, product)
	s.Require().NoError(err)

	dup := s.newProduct("iPhone 15 Pro", category.ID)
	dup.SKU = product.SKU

	_, err = s.ProductService.Create(s.Ctx, dup)
	s.Require().ErrorIs(err, repository.ErrSKUAlreadyExists)
}

func (s *IntegrationTestSuite) TestCreateProduct_DuplicateSlug() {
	category := s.createCategory("Phones", "phones")

	product := s.newProduct("iPhone 15", category.ID)
	_, err := s.ProductService.Create(s.Ctx, product)
	s.Require().NoError(err)

	dup := s.newProduct("iPhone 15 Pro", category.ID)
	dup.Slug = product.Slug

	_, err = s.ProductService.Create(s.Ctx, dup)
	s.Require().ErrorIs(err, repository.ErrSlugAlreadyExists)
}

func (s *IntegrationTestSuite) TestListProducts_Filters() {
	phones := s.createCategory("Phones", "phones")
	laptops := s.createCategory("Laptops", "laptops")

	s.createProduct("iPhone 15", phones.ID)
	s.createProduct("Pixel 9", phones.ID)
	macID := s.createProduct("MacBook Air", laptops.ID)

	list, total, err := s.ProductService.List(s.Ctx, repository.ProductFilter{Limit: 20})
	s.Require().NoError(err)
	s.Require().EqualValues(3, total)
	s.Require().Len(list, 3)

	list, total, err = s.ProductService.List(s.Ctx, repository.ProductFilter{Search: "phone", Limit: 20})
	s.Require().NoError(err)
	s.Require().EqualValues(1, total)
	s.Require().Equal("iPhone 15", list[0].Name)

	list, total, err = s.ProductService.List(s.Ctx, repository.ProductFilter{CategorySlug: "laptops", Limit: 20})
	s.Require().NoError(err)
	s.Require().EqualValues(1, total)
	s.Require().Equal("MacBook Air", list[0].Name)

	featured := true
	s.Require().NoError(s.ProductService.Update(s.Ctx, macID, &domain.UpdateProductInput{IsFeatured: &featured}))

	list, total, err = s.ProductService.List(s.Ctx, repository.ProductFilter{Featured: &featured, Limit: 20})
	s.Require().NoError(err)
	s.Require().EqualValues(1, total)
	s.Require().Equal(macID, list[0].ID)
}

func (s *IntegrationTestSuite) TestListProducts_Pagination() {
	category := s.createCategory("Phones", "phones")
	for i := 0; i < 5; i++ {
		s.createProduct(fmt.Sprintf("Phone %d", i), category.ID)
	}

	page, total, err := s.ProductService.List(s.Ctx, repository.ProductFilter{Limit: 2})
	s.Require().NoError(err)
	s.Require().EqualValues(5, total)
	s.Require().Len(page, 2)

	lastPage, total, err := s.ProductService.List(s.Ctx, repository.ProductFilter{Limit: 2, Offset: 4})
	s.Require().NoError(err)
	s.Require().EqualValues(5, total)
	s.Require().Len(lastPage, 1)
}

func (s *IntegrationTestSuite) TestUpdateProduct() {
	category := s.createCategory("Phones", "phones")
	id := s.createProduct("iPhone 15", category.ID)

	newPrice := money.MustParse("149.99")
	newStock := int64(3)
	err := s.ProductService.Update(s.Ctx, id, &domain.UpdateProductInput{
		Price:         &newPrice,
		StockQuantity: &newStock,
	})
	s.Require().NoError(err)

	stored, err := s.ProductService.FindByID(s.Ctx, id)
	s.Require().NoError(err)
	s.Require().Equal("149.99", stored.Price.String())
	s.Require().EqualValues(3, stored.StockQuantity)
	s.Require().Equal("iPhone 15", stored.Name)
}

func (s *IntegrationTestSuite) TestUpdateProduct_Unknown() {
	newStock := int64(3)
	err := s.ProductService.Update(s.Ctx, 999999, &domain.UpdateProductInput{StockQuantity: &newStock})
	s.Require().ErrorIs(err, repository.ErrProductNotFound)
}

func (s *IntegrationTestSuite) TestDeleteProduct_SoftDelete() {
	category := s.createCategory("Phones", "phones")
	id := s.createProduct("iPhone 15", category.ID)

	s.Require().NoError(s.ProductService.Delete(s.Ctx, id))

	_, err := s.ProductService.FindByID(s.Ctx, id)
	s.Require().ErrorIs(err, repository.ErrProductNotFound)

	// the row survives with deleted_at set
	var count int64
	err = s.DbPool.QueryRow(s.Ctx, `SELECT COUNT(*) FROM products WHERE id = $1 AND deleted_at IS NOT NULL`, id).Scan(&count)
	s.Require().NoError(err)
	s.Require().EqualValues(1, count)
}

func (s *IntegrationTestSuite) TestStockGuard() {
	category := s.createCategory("Phones", "phones")
	id := s.createProduct("iPhone 15", category.ID)

	tx, err := s.DbPool.Begin(s.Ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.ProductRepo.DecreaseStock(s.Ctx, tx, id, 10))
	s.Require().NoError(tx.Commit(s.Ctx))

	tx, err = s.DbPool.Begin(s.Ctx)
	s.Require().NoError(err)

	err = s.ProductRepo.DecreaseStock(s.Ctx, tx, id, 1)
	s.Require().ErrorIs(err, repository.ErrInsufficientStock)
	s.Require().NoError(tx.Rollback(s.Ctx))

	tx, err = s.DbPool.Begin(s.Ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.ProductRepo.IncreaseStock(s.Ctx, tx, id, 5))
	s.Require().NoError(tx.Commit(s.Ctx))

	stored, err := s.ProductService.FindByID(s.Ctx, id)
	s.Require().NoError(err)
	s.Require().EqualValues(5, stored.StockQuantity)
}

func (s *IntegrationTestSuite) TestCategories() {
	phones := s.createCategory("Phones", "phones")
	s.createCategory("Laptops", "laptops")

	list, err := s.CategoryService.List(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)

	// name ascending
	s.Require().Equal("Laptops", list[0].Name)
	s.Require().Equal("Phones", list[1].Name)

	bySlug, err := s.CategoryService.GetBySlug(s.Ctx, "phones")
	s.Require().NoError(err)
	s.Require().Equal(phones.ID, bySlug.ID)

	dup := &domain.Category{Name: "Other phones", Slug: "phones"}
	err = s.CategoryService.Create(s.Ctx, dup)
	s.Require().ErrorIs(err, repository.ErrCategoryAlreadyExists)
}

func (s *IntegrationTestSuite) TestCategoryLifecycle() {
	category := s.createCategory("Phones", "phones")

	inactive := false
	err := s.CategoryService.Update(s.Ctx, category.ID, &domain.UpdateCategoryInput{IsActive: &inactive})
	s.Require().NoError(err)

	// deactivated categories disappear from the public list and slug lookup
	list, err := s.CategoryService.List(s.Ctx)
	s.Require().NoError(err)
	s.Require().Empty(list)

	_, err = s.CategoryService.GetBySlug(s.Ctx, "phones")
	s.Require().ErrorIs(err, repository.ErrCategoryNotFound)

	s.createProduct("iPhone 15", category.ID)
	err = s.CategoryService.Delete(s.Ctx, category.ID)
	s.Require().ErrorIs(err, repository.ErrCategoryInUse)

	empty := s.createCategory("Empty", "empty")
	s.Require().NoError(s.CategoryService.Delete(s.Ctx, empty.ID))

	_, err = s.CategoryService.GetByID(s.Ctx, empty.ID)
	s.Require().ErrorIs(err, repository.ErrCategoryNotFound)
}
