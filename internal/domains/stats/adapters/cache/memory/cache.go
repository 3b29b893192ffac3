package memory

import (
	"context"
	"sync"
	"time"

	"github.com/plantnet/plantnet-api/internal/domains/stats/domain"
	"github.com/plantnet/plantnet-api/internal/domains/stats/ports"
)

// Cache keeps the last summary in process.
type Cache struct {
	mu      sync.RWMutex
	stats   *domain.AdminStats
	expires time.Time
	now     func() time.Time
}

func NewCache() *Cache {
	return &Cache{now: time.Now}
}

func (c *Cache) Get(_ context.Context) (*domain.AdminStats, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.stats == nil || !c.now().Before(c.expires) {
		return nil, false, nil
	}
	clone := *c.stats
	clone.Daily = append([]domain.DailyTotal(nil), c.stats.Daily...)
	return &clone, true, nil
}

func (c *Cache) Set(_ context.Context, stats *domain.AdminStats, ttl time.Duration) error {
	if stats == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	clone := *stats
	clone.Daily = append([]domain.DailyTotal(nil), stats.Daily...)
	c.stats = &clone
	c.expires = c.now().Add(ttl)
	return nil
}

var _ ports.Cache = (*Cache)(nil)
