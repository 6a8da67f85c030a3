package quoting

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"booking_portal_backend/platform/config"

	"github.com/redis/go-redis/v9"
)

// Cache stores successful recalculations.
type Cache interface {
	Get(ctx context.Context, key string) (Result, bool, error)
	Set(ctx context.Context, key string, result Result) error
}

// RedisCache keeps results in Redis with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{client: client, ttl: ttl}
}

// NewRedisClient builds a client from the configured URL.
func NewRedisClient(cfg config.PricingConfig) (*redis.Client, error) {
	if cfg.GetRedisURL() == "" {
		return nil, fmt.Errorf("redis url not configured")
	}
	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}
	if cfg.GetRedisTLSInsecure() {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return redis.NewClient(opt), nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (Result, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, err
	}
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return Result{}, false, err
	}
	return result, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, result Result) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// cacheKey hashes the normalised request. Addresses are compared case
// and whitespace insensitively; service type order does not matter.
func cacheKey(req Request) string {
	types := make([]string, len(req.Trip.ServiceTypes))
	for i, t := range req.Trip.ServiceTypes {
		types[i] = strings.ToLower(strings.TrimSpace(t))
	}
	sort.Strings(types)

	normalized := strings.Join([]string{
		req.BookingID,
		normalizeAddress(req.StartAddress),
		normalizeAddress(req.EndAddress),
		fmt.Sprintf("%.2f", req.Trip.VolumeCubicMeters),
		fmt.Sprintf("%.2f", req.Trip.LivingArea),
		strings.Join(types, ","),
	}, "|")

	sum := sha256.Sum256([]byte(normalized))
	return "quoting:recalc:" + hex.EncodeToString(sum[:])
}

func normalizeAddress(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
