package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/plantnet/plantnet-api/internal/domains/stats/domain"
	"github.com/plantnet/plantnet-api/internal/domains/stats/ports"
)

// Key holds the serialized admin summary.
const Key = "plantnet:stats:admin"

// Cache shares the summary between API replicas.
type Cache struct {
	client goredis.Cmdable
	key    string
}

func NewCache(client goredis.Cmdable) *Cache {
	return &Cache{client: client, key: Key}
}

type cachedDay struct {
	Date    string          `json:"date"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type cachedStats struct {
	TotalUsers   int64           `json:"totalUsers"`
	TotalPlants  int64           `json:"totalPlants"`
	TotalOrders  int64           `json:"totalOrders"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	Daily        []cachedDay     `json:"daily"`
	ComputedAt   time.Time       `json:"computedAt"`
}

func (c *Cache) Get(ctx context.Context) (*domain.AdminStats, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var doc cachedStats
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, err
	}
	return doc.toDomain(), true, nil
}

func (c *Cache) Set(ctx context.Context, stats *domain.AdminStats, ttl time.Duration) error {
	if c == nil || c.client == nil || stats == nil {
		return nil
	}
	raw, err := json.Marshal(fromDomain(stats))
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, raw, ttl).Err()
}

func fromDomain(s *domain.AdminStats) cachedStats {
	doc := cachedStats{
		TotalUsers:   s.TotalUsers,
		TotalPlants:  s.TotalPlants,
		TotalOrders:  s.TotalOrders,
		TotalRevenue: s.TotalRevenue,
		Daily:        make([]cachedDay, 0, len(s.Daily)),
		ComputedAt:   s.ComputedAt,
	}
	for _, d := range s.Daily {
		doc.Daily = append(doc.Daily, cachedDay{Date: d.Date, Orders: d.Orders, Revenue: d.Revenue})
	}
	return doc
}

func (doc cachedStats) toDomain() *domain.AdminStats {
	out := &domain.AdminStats{
		TotalUsers:   doc.TotalUsers,
		TotalPlants:  doc.TotalPlants,
		TotalOrders:  doc.TotalOrders,
		TotalRevenue: doc.TotalRevenue,
		Daily:        make([]domain.DailyTotal, 0, len(doc.Daily)),
		ComputedAt:   doc.ComputedAt,
	}
	for _, d := range doc.Daily {
		out.Daily = append(out.Daily, domain.DailyTotal{Date: d.Date, Orders: d.Orders, Revenue: d.Revenue})
	}
	return out
}

var _ ports.Cache = (*Cache)(nil)
