package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/kbridge/backend/internal/infrastructure/config"
)

// HTTPRateSource fetches the live KRW/CNY rate from an external FX service
type HTTPRateSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRateSource creates a rate source against the configured FX endpoint
func NewHTTPRateSource(cfg config.FXCacheConfig) *HTTPRateSource {
	return &HTTPRateSource{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type rateResponse struct {
	Pair string          `json:"pair"`
	Rate decimal.Decimal `json:"rate"`
}

// KRWPerCNY fetches the current KRW per CNY rate
func (s *HTTPRateSource) KRWPerCNY(ctx context.Context) (decimal.Decimal, error) {
	url := s.baseURL + "/rates/KRW-CNY"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rate service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rate service returned status %d", resp.StatusCode)
	}

	var body rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode rate response: %w", err)
	}
	if !body.Rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("rate service returned non-positive rate %s", body.Rate)
	}

	return body.Rate, nil
}

// NewRedisClient creates a Redis client from configuration and verifies the
// connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
