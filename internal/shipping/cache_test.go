package shipping

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ttlTestCache(now time.Time) *RedisQuoteCache {
	return &RedisQuoteCache{
		baseTTL: 10 * time.Minute,
		now:     func() time.Time { return now },
	}
}

func TestQuoteCacheTTLUsesBaseWindowForDistantValidity(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	c := ttlTestCache(now)

	ttl := c.ttl(now.Add(48 * time.Hour).Format(time.RFC3339))
	assert.GreaterOrEqual(t, ttl, 10*time.Minute)
	assert.Less(t, ttl, 12*time.Minute)
}

func TestQuoteCacheTTLCappedAtRemainingValidity(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	c := ttlTestCache(now)

	ttl := c.ttl(now.Add(3 * time.Minute).Format(time.RFC3339))
	assert.Equal(t, 3*time.Minute, ttl)
}

func TestQuoteCacheTTLExpiredQuoteIsNotCacheable(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	c := ttlTestCache(now)

	ttl := c.ttl(now.Add(-time.Minute).Format(time.RFC3339))
	assert.LessOrEqual(t, ttl, time.Duration(0))
}

func TestQuoteCacheTTLAcceptsDateOnlyValidity(t *testing.T) {
	now := time.Date(2026, 8, 31, 23, 55, 0, 0, time.UTC)
	c := ttlTestCache(now)

	// midnight of the stated day is five minutes away
	ttl := c.ttl("2026-09-01")
	assert.Equal(t, 5*time.Minute, ttl)
}

func TestQuoteCacheTTLUnparsableValidityFallsBackToBaseWindow(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	c := ttlTestCache(now)

	ttl := c.ttl("whenever")
	assert.GreaterOrEqual(t, ttl, 10*time.Minute)
	assert.Less(t, ttl, 12*time.Minute)
}
