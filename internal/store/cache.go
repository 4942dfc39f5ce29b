package store

import (
	"context"
	"sync"
	"time"

	"github.com/stationlab/weather-agent/internal/analysis"
)

// entry is one cached observation list with its expiry.
type entry struct {
	observations []analysis.Observation
	expiresAt    time.Time
}

// CachedSource wraps an ObservationSource with a TTL cache keyed by day count,
// so repeated dashboard calls do not re-run the backing query. Daily data
// changes at most once a day; a short TTL keeps results fresh enough.
// A TTL <= 0 disables caching entirely.
type CachedSource struct {
	source analysis.ObservationSource
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[int]entry
}

// NewCachedSource creates a caching decorator around source.
func NewCachedSource(source analysis.ObservationSource, ttl time.Duration) *CachedSource {
	return &CachedSource{
		source:  source,
		ttl:     ttl,
		entries: make(map[int]entry),
	}
}

// FetchRecent serves from cache when a live entry exists for the day count,
// otherwise delegates to the backing source. Errors and empty results are
// never cached.
func (c *CachedSource) FetchRecent(ctx context.Context, days int) ([]analysis.Observation, error) {
	if c.ttl <= 0 {
		return c.source.FetchRecent(ctx, days)
	}

	c.mu.RLock()
	e, ok := c.entries[days]
	c.mu.RUnlock()
	if ok && time.Now().Before(e.expiresAt) {
		return e.observations, nil
	}

	observations, err := c.source.FetchRecent(ctx, days)
	if err != nil {
		return nil, err
	}
	if len(observations) == 0 {
		return observations, nil
	}

	c.mu.Lock()
	c.entries[days] = entry{
		observations: observations,
		expiresAt:    time.Now().Add(c.ttl),
	}
	c.mu.Unlock()

	return observations, nil
}
