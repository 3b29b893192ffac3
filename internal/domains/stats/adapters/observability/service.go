package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/plantnet/plantnet-api/internal/domains/stats/domain"
	"github.com/plantnet/plantnet-api/internal/domains/stats/ports"
)

const tracerName = "github.com/plantnet/plantnet-api/internal/domains/stats/adapters/observability/service"

// Service decorates the statistics service with tracing, logging, and metrics.
type Service struct {
	inner    ports.Service
	tracer   trace.Tracer
	logger   *slog.Logger
	computed metric.Int64Counter
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		if m == nil {
			return
		}
		s.computed, _ = m.Int64Counter("stats.service.computations", metric.WithDescription("Number of admin summaries served"))
	}
}

func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Service) ComputeAdminStats(ctx context.Context) (*domain.AdminStats, error) {
	ctx, span := s.tracer.Start(ctx, "StatsService.ComputeAdminStats")
	defer span.End()

	stats, err := s.inner.ComputeAdminStats(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to compute admin stats", slog.String("error", err.Error()))
		return nil, err
	}
	span.SetAttributes(
		attribute.Int64("stats.orders", stats.TotalOrders),
		attribute.Int("stats.days", len(stats.Daily)),
	)
	if s.computed != nil {
		s.computed.Add(ctx, 1)
	}
	return stats, nil
}

var _ ports.Service = (*Service)(nil)
