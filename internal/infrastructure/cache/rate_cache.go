package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kbridge/backend/internal/domain/pricing"
)

const rateKey = "fx:krw_per_cny"

// RedisRateCache caches the live KRW/CNY rate in Redis with a TTL. It wraps
// another pricing.RateSource and only falls through to it on a miss, so
// every instance sharing the Redis sees the same rate for a TTL window.
type RedisRateCache struct {
	client *redis.Client
	source pricing.RateSource
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisRateCache creates a rate cache over source with the given TTL
func NewRedisRateCache(client *redis.Client, source pricing.RateSource, ttl time.Duration, logger *zap.Logger) *RedisRateCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRateCache{
		client: client,
		source: source,
		ttl:    ttl,
		logger: logger,
	}
}

// KRWPerCNY returns the cached rate, fetching and caching it on a miss.
// Redis errors other than a miss degrade to a direct source call; a cache
// outage must not stop listing writes.
func (c *RedisRateCache) KRWPerCNY(ctx context.Context) (decimal.Decimal, error) {
	cached, err := c.client.Get(ctx, rateKey).Result()
	if err == nil {
		rate, parseErr := decimal.NewFromString(cached)
		if parseErr == nil {
			return rate, nil
		}
		c.logger.Warn("Discarding unparsable cached FX rate", zap.String("value", cached))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("FX rate cache read failed, falling through to source", zap.Error(err))
	}

	rate, err := c.source.KRWPerCNY(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch exchange rate: %w", err)
	}

	if setErr := c.client.Set(ctx, rateKey, rate.String(), c.ttl).Err(); setErr != nil {
		c.logger.Warn("FX rate cache write failed", zap.Error(setErr))
	}

	return rate, nil
}
