package shipping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/domain"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("quote not in cache")

// QuoteCache memoizes carrier quotes for a destination/package pair so repeat
// visits to the cart page do not burn carrier API calls.
type QuoteCache interface {
	Get(ctx context.Context, dest string, dims domain.PackageDimensions) (*domain.RateQuote, error)
	Set(ctx context.Context, dest string, dims domain.PackageDimensions, quote *domain.RateQuote) error
}

func NewRedisQuoteCache(client *redis.Client) *RedisQuoteCache {
	return &RedisQuoteCache{
		client:  client,
		baseTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

type RedisQuoteCache struct {
	client  *redis.Client
	baseTTL time.Duration
	now     func() time.Time
}

func (r *RedisQuoteCache) Get(ctx context.Context, dest string, dims domain.PackageDimensions) (*domain.RateQuote, error) {
	data, err := r.client.Get(ctx, quoteKey(dest, dims)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var quote domain.RateQuote
	if err2 := json.Unmarshal(data, &quote); err2 != nil {
		return nil, fmt.Errorf("unmarshal quote failed: %w", err2)
	}
	return &quote, nil
}

func (r *RedisQuoteCache) Set(ctx context.Context, dest string, dims domain.PackageDimensions, quote *domain.RateQuote) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("marshal quote failed: %w", err)
	}

	ttl := r.ttl(quote.ValidTo)
	if ttl <= 0 {
		// already past its validity, not worth caching
		return nil
	}
	if err := r.client.Set(ctx, quoteKey(dest, dims), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// ttl never exceeds the quote's remaining validity, so an expired quote
// cannot be served from cache.
func (r *RedisQuoteCache) ttl(validTo string) time.Duration {
	ttl := r.baseTTL + time.Duration(rand.Intn(120))*time.Second
	if t, ok := parseValidTo(validTo); ok {
		if remaining := t.Sub(r.now()); remaining < ttl {
			ttl = remaining
		}
	}
	return ttl
}

func parseValidTo(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func quoteKey(dest string, dims domain.PackageDimensions) string {
	return fmt.Sprintf("quote:%s:%dx%dx%dx%d", dest, dims.WeightG, dims.HeightCM, dims.WidthCM, dims.LengthCM)
}
