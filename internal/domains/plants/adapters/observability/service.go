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

	plantdomain "github.com/plantnet/plantnet-api/internal/domains/plants/domain"
	plantports "github.com/plantnet/plantnet-api/internal/domains/plants/ports"
)

const tracerName = "github.com/plantnet/plantnet-api/internal/domains/plants/adapters/observability/service"

// Service decorates the catalogue service with tracing, logging, and metrics.
type Service struct {
	inner   plantports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core catalogue service.
func New(inner plantports.Service, opts ...Option) plantports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) AddPlant(ctx context.Context, plant *plantdomain.Plant) (*plantdomain.Plant, error) {
	ctx, span := s.tracer.Start(ctx, "PlantService.AddPlant")
	defer span.End()

	if plant != nil {
		span.SetAttributes(attribute.String("plant.category", plant.Category))
		s.logInfo(ctx, "adding plant", slog.String("plant.name", plant.Name), slog.String("seller.email", plant.Seller.Email))
	}
	result, err := s.inner.AddPlant(ctx, plant)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add plant")
	}
	span.SetAttributes(attribute.String("plant.id", result.ID))
	s.metrics.recordCreated(ctx, result.Category)
	s.logInfo(ctx, "plant added", slog.String("plant.id", result.ID), slog.Int("plant.quantity", result.Quantity))
	return result, nil
}

func (s *Service) GetPlant(ctx context.Context, id string) (*plantdomain.Plant, error) {
	ctx, span := s.tracer.Start(ctx, "PlantService.GetPlant", trace.WithAttributes(attribute.String("plant.id", id)))
	defer span.End()

	result, err := s.inner.GetPlant(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load plant", slog.String("plant.id", id))
	}
	return result, nil
}

func (s *Service) ListPlants(ctx context.Context) ([]*plantdomain.Plant, error) {
	ctx, span := s.tracer.Start(ctx, "PlantService.ListPlants")
	defer span.End()

	result, err := s.inner.ListPlants(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list plants")
	}
	span.SetAttributes(attribute.Int("plants.count", len(result)))
	return result, nil
}

func (s *Service) SearchPlants(ctx context.Context, query string, limit int) ([]*plantdomain.Plant, error) {
	ctx, span := s.tracer.Start(ctx, "PlantService.SearchPlants",
		trace.WithAttributes(attribute.String("search.query", query), attribute.Int("search.limit", limit)))
	defer span.End()

	s.logInfo(ctx, "searching plants", slog.String("search.query", query))
	result, err := s.inner.SearchPlants(ctx, query, limit)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to search plants", slog.String("search.query", query))
	}
	span.SetAttributes(attribute.Int("plants.count", len(result)))
	return result, nil
}

func (s *Service) CountPlants(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "PlantService.CountPlants")
	defer span.End()

	n, err := s.inner.CountPlants(ctx)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to count plants")
	}
	return n, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	plantsCreated metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("plants.service.plants_created", metric.WithDescription("Number of plants listed"))
	return serviceMetrics{plantsCreated: created}
}

func (m serviceMetrics) recordCreated(ctx context.Context, category string) {
	if m.plantsCreated != nil {
		m.plantsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("plant.category", category)))
	}
}

var _ plantports.Service = (*Service)(nil)
