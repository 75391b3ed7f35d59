package handlers

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/PratikDhanave/delivery-time-analytics/internal/models"
)

// ResultCache memoizes moving-average responses computed from stored events.
// Entries expire after the configured TTL and the whole cache is purged when
// new events are ingested. A nil *ResultCache caches nothing.
type ResultCache struct {
	lru *expirable.LRU[string, models.MovingAverageResponse]
}

func NewResultCache(size int, ttl time.Duration) *ResultCache {
	return &ResultCache{lru: expirable.NewLRU[string, models.MovingAverageResponse](size, nil, ttl)}
}

func cacheKey(tenantID string, from, to time.Time, windowMinutes int, filter string) string {
	return fmt.Sprintf("%s|%d|%d|%d|%s", tenantID, from.UnixNano(), to.UnixNano(), windowMinutes, filter)
}

func (c *ResultCache) get(key string) (models.MovingAverageResponse, bool) {
	if c == nil {
		return models.MovingAverageResponse{}, false
	}
	return c.lru.Get(key)
}

func (c *ResultCache) add(key string, resp models.MovingAverageResponse) {
	if c == nil {
		return
	}
	c.lru.Add(key, resp)
}

// Purge drops every cached response.
func (c *ResultCache) Purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}

// Len reports the number of cached responses.
func (c *ResultCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
