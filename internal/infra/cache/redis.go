package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NasaVasa/partprice/internal/domain"
	"github.com/redis/go-redis/v9"
)

const priceKeyPrefix = "price:"

func priceKey(partID uint) string {
	return fmt.Sprintf("%s%d", priceKeyPrefix, partID)
}

type RedisPriceCache struct {
	client redis.UniversalClient
}

func NewRedisPriceCache(client redis.UniversalClient) *RedisPriceCache {
	return &RedisPriceCache{client: client}
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
}

func (c *RedisPriceCache) GetComparison(ctx context.Context, partID uint) (*domain.PriceComparison, bool, error) {
	raw, err := c.client.Get(ctx, priceKey(partID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var comparison domain.PriceComparison
	if err := json.Unmarshal(raw, &comparison); err != nil {
		return nil, false, fmt.Errorf("decode cached comparison: %w", err)
	}
	return &comparison, true, nil
}

func (c *RedisPriceCache) SetComparison(ctx context.Context, comparison *domain.PriceComparison, ttl time.Duration) error {
	raw, err := json.Marshal(comparison)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, priceKey(comparison.PartID), raw, ttl).Err()
}

func (c *RedisPriceCache) Evict(ctx context.Context, partID uint) error {
	return c.client.Del(ctx, priceKey(partID)).Err()
}

// Noop is used when no cache is configured; every read is a miss.
type Noop struct{}

func (Noop) GetComparison(context.Context, uint) (*domain.PriceComparison, bool, error) {
	return nil, false, nil
}

func (Noop) SetComparison(context.Context, *domain.PriceComparison, time.Duration) error { return nil }

func (Noop) Evict(context.Context, uint) error { return nil }
