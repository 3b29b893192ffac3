package ports

import (
	"context"
	"time"

	"github.com/plantnet/plantnet-api/internal/domains/stats/domain"
)

// Counter reports a collection size. Estimates are acceptable.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// OrderLedger produces the per-day order series, oldest first.
type OrderLedger interface {
	DailyTotals(ctx context.Context) ([]domain.DailyTotal, error)
}

// Cache holds the last computed summary. A miss returns (nil, false, nil).
type Cache interface {
	Get(ctx context.Context) (*domain.AdminStats, bool, error)
	Set(ctx context.Context, stats *domain.AdminStats, ttl time.Duration) error
}

// Service is the statistics use case.
type Service interface {
	ComputeAdminStats(ctx context.Context) (*domain.AdminStats, error)
}
