package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pricewise/catalog-admin/internal/bestbuy"
	"github.com/pricewise/catalog-admin/internal/form"
	"github.com/pricewise/catalog-admin/internal/ingest"
	apperrors "github.com/pricewise/catalog-admin/pkg/errors"
)

// Fetcher retrieves a normalized Best Buy record by SKU. Satisfied by
// bestbuy.Client.
type Fetcher interface {
	Fetch(ctx context.Context, sku string) (*bestbuy.Record, map[string]any, error)
}

// Cache stores prefill results keyed by SKU. Implementations must return
// ErrCacheMiss (or any error) on absent keys; callers treat all cache errors
// as misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache adapts a redis client to the Cache interface.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps a redis client for prefill caching.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.client.Get(ctx, key).Bytes()
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// PrefillResult is the projected form data for one fetched SKU: a ready-to-
// edit form snapshot, the raw projection, and the cleaned upstream payload
// for operator inspection.
type PrefillResult struct {
	SKU        string            `json:"sku"`
	Form       form.State        `json:"form"`
	Projection ingest.Projection `json:"projection"`
	Raw        map[string]any    `json:"raw"`
}

// PrefillService fetches product data from the upstream API and projects it
// into form fields, caching results per SKU.
type PrefillService struct {
	fetcher Fetcher
	cache   Cache
	ttl     time.Duration
	logger  *slog.Logger
}

// NewPrefillService creates a prefill service. A nil cache disables caching.
func NewPrefillService(fetcher Fetcher, cache Cache, ttl time.Duration, logger *slog.Logger) *PrefillService {
	return &PrefillService{
		fetcher: fetcher,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
	}
}

// Prefill returns the projected form data for the given SKU, consulting the
// cache first. Cache failures are logged and treated as misses.
func (s *PrefillService) Prefill(ctx context.Context, sku string) (*PrefillResult, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, apperrors.InvalidInput("sku is required")
	}

	key := cacheKey(sku)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var result PrefillResult
			if err := json.Unmarshal(data, &result); err == nil {
				s.logger.DebugContext(ctx, "prefill cache hit", slog.String("sku", sku))
				return &result, nil
			}
			s.logger.WarnContext(ctx, "discarding corrupt prefill cache entry",
				slog.String("sku", sku),
			)
		}
	}

	record, raw, err := s.fetcher.Fetch(ctx, sku)
	if err != nil {
		return nil, fmt.Errorf("fetch sku %s: %w", sku, err)
	}

	projection := ingest.Project(record)
	result := &PrefillResult{
		SKU:        sku,
		Form:       form.NewState().WithSKU(sku).ApplyProjection(projection),
		Projection: projection,
		Raw:        raw,
	}

	if s.cache != nil {
		data, err := json.Marshal(result)
		if err == nil {
			if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
				s.logger.WarnContext(ctx, "failed to cache prefill result",
					slog.String("sku", sku),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	s.logger.InfoContext(ctx, "prefill fetched",
		slog.String("sku", sku),
		slog.String("name", result.Projection.Name),
	)
	return result, nil
}

func cacheKey(sku string) string {
	return "prefill:sku:" + sku
}
