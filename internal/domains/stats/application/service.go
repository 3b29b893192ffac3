package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/plantnet/plantnet-api/internal/domains/stats/domain"
	"github.com/plantnet/plantnet-api/internal/domains/stats/ports"
)

// DefaultCacheTTL bounds how stale a cached summary may be.
const DefaultCacheTTL = 30 * time.Second

// Service computes the admin dashboard summary.
type Service struct {
	users  ports.Counter
	plants ports.Counter
	ledger ports.OrderLedger
	cache  ports.Cache
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Service)

// WithCache serves summaries from cache for ttl after each computation.
func WithCache(cache ports.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(users, plants ports.Counter, ledger ports.OrderLedger, opts ...Option) *Service {
	s := &Service{
		users:  users,
		plants: plants,
		ledger: ledger,
		ttl:    DefaultCacheTTL,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// ComputeAdminStats returns the cached summary when fresh, otherwise
// recomputes it. Cache errors degrade to a recomputation.
func (s *Service) ComputeAdminStats(ctx context.Context) (*domain.AdminStats, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "stats cache read failed", slog.String("error", err.Error()))
		} else if ok {
			return cached, nil
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats, s.ttl); err != nil {
			s.logger.WarnContext(ctx, "stats cache write failed", slog.String("error", err.Error()))
		}
	}
	return stats, nil
}

func (s *Service) compute(ctx context.Context) (*domain.AdminStats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	plants, err := s.plants.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count plants: %w", err)
	}
	daily, err := s.ledger.DailyTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate orders: %w", err)
	}
	if daily == nil {
		daily = []domain.DailyTotal{}
	}
	orders, revenue := domain.Totals(daily)
	return &domain.AdminStats{
		TotalUsers:   users,
		TotalPlants:  plants,
		TotalOrders:  orders,
		TotalRevenue: revenue,
		Daily:        daily,
		ComputedAt:   s.now().UTC(),
	}, nil
}

var _ ports.Service = (*Service)(nil)
