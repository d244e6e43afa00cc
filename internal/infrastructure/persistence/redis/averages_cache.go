package redis

import (
	"context"
	"errors"
	"time"

	"github.com/edurisk/student-risk-hub/internal/application/query"
	"github.com/edurisk/student-risk-hub/internal/domain/prediction"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADE AVERAGES CACHE
// ══════════════════════════════════════════════════════════════════════════════

// AveragesCache caches the grade-averages aggregate between recomputations.
// Implements query.GradeAveragesCache.
type AveragesCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewAveragesCache creates a new aggregate cache.
func NewAveragesCache(cache *Cache, ttl time.Duration) *AveragesCache {
	if ttl <= 0 {
		ttl = TTLGradeAverages
	}
	return &AveragesCache{cache: cache, ttl: ttl}
}

// Get returns the cached aggregate, or (nil, nil) on a miss.
func (c *AveragesCache) Get(ctx context.Context) (*prediction.GradeAverages, error) {
	var averages prediction.GradeAverages
	err := c.cache.Get(ctx, GradeAveragesKey(), &averages)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &averages, nil
}

// Set stores the aggregate with the configured TTL.
func (c *AveragesCache) Set(ctx context.Context, averages *prediction.GradeAverages) error {
	if averages == nil {
		return nil
	}
	return c.cache.Set(ctx, GradeAveragesKey(), averages, c.ttl)
}

// Invalidate drops the cached aggregate, forcing a recomputation.
func (c *AveragesCache) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, GradeAveragesKey())
}

// compile-time interface check
var _ query.GradeAveragesCache = (*AveragesCache)(nil)
