package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/catalog/domain"
	"github.com/valentinaBarreto18/marketplaceRepo/internal/catalog/repository"
)

// cachedProductService is a read through cache in front of the product
// service. Only FindByID is cached; writes invalidate the key.
type cachedProductService struct {
	next        ProductService
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewCachedProductService(next ProductService, redisClient *redis.Client) ProductService {
	return &cachedProductService{
		next:        next,
		redisClient: redisClient,
		cacheTTL:    time.Minute * 10,
	}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *cachedProductService) Create(ctx context.Context, product *domain.Product) (int64, error) {
	return s.next.Create(ctx, product)
}

func (s *cachedProductService) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	key := productKey(id)

	val, err := s.redisClient.Get(ctx, key).Result()
	if err == nil {
		var product domain.Product
		if err := json.Unmarshal([]byte(val), &product); err == nil {
			return &product, nil
		}
	}

	product, err := s.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(product); err == nil {
		s.redisClient.Set(ctx, key, data, s.cacheTTL)
	}

	return product, nil
}

func (s *cachedProductService) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.next.FindBySlug(ctx, slug)
}

func (s *cachedProductService) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int64, error) {
	return s.next.List(ctx, filter)
}

func (s *cachedProductService) Update(ctx context.Context, id int64, input *domain.UpdateProductInput) error {
	if err := s.next.Update(ctx, id, input); err != nil {
		return err
	}

	s.redisClient.Del(ctx, productKey(id))
	return nil
}

func (s *cachedProductService) Delete(ctx context.Context, id int64) error {
	if err := s.next.Delete(ctx, id); err != nil {
		return err
	}

	s.redisClient.Del(ctx, productKey(id))
	return nil
}
