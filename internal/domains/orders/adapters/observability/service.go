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

	orderdomain "github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	orderports "github.com/plantnet/plantnet-api/internal/domains/orders/ports"
)

const tracerName = "github.com/plantnet/plantnet-api/internal/domains/orders/adapters/observability/service"

// Service decorates the orders service with tracing, logging, and metrics.
type Service struct {
	inner   orderports.Service
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

func New(inner orderports.Service, opts ...Option) orderports.Service {
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

func (s *Service) CreatePaymentIntent(ctx context.Context, plantID string, quantity int) (*orderdomain.PaymentIntent, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreatePaymentIntent",
		trace.WithAttributes(attribute.String("plant.id", plantID), attribute.Int("order.quantity", quantity)))
	defer span.End()

	s.logInfo(ctx, "creating payment intent", slog.String("plant.id", plantID), slog.Int("order.quantity", quantity))
	intent, err := s.inner.CreatePaymentIntent(ctx, plantID, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create payment intent", slog.String("plant.id", plantID))
	}
	span.SetAttributes(attribute.String("payment.intent_id", intent.ID), attribute.Int64("payment.amount", intent.Amount))
	s.metrics.recordIntent(ctx, intent.Currency)
	s.logInfo(ctx, "payment intent created", slog.String("payment.intent_id", intent.ID), slog.Int64("payment.amount", intent.Amount))
	return intent, nil
}

func (s *Service) PlaceOrder(ctx context.Context, placement orderdomain.Placement) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder",
		trace.WithAttributes(attribute.String("plant.id", placement.PlantID), attribute.String("payment.intent_id", placement.TransactionID)))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.String("plant.id", placement.PlantID), slog.String("payment.intent_id", placement.TransactionID))
	order, err := s.inner.PlaceOrder(ctx, placement)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("payment.intent_id", placement.TransactionID))
	}
	span.SetAttributes(attribute.String("order.id", order.ID))
	s.metrics.recordPlaced(ctx, order.PlantCategory, order.Quantity)
	s.logInfo(ctx, "order placed", slog.String("order.id", order.ID), slog.String("order.price", order.Price.StringFixed(2)))
	return order, nil
}

func (s *Service) RefundPayment(ctx context.Context, transactionID string) error {
	ctx, span := s.tracer.Start(ctx, "OrderService.RefundPayment", trace.WithAttributes(attribute.String("payment.intent_id", transactionID)))
	defer span.End()

	if err := s.inner.RefundPayment(ctx, transactionID); err != nil {
		return s.handleError(ctx, span, err, "failed to refund payment", slog.String("payment.intent_id", transactionID))
	}
	s.metrics.recordRefund(ctx)
	s.logInfo(ctx, "payment refunded", slog.String("payment.intent_id", transactionID))
	return nil
}

func (s *Service) UpdateQuantity(ctx context.Context, plantID string, amount int, direction string) (*orderports.QuantityUpdate, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateQuantity", trace.WithAttributes(
		attribute.String("plant.id", plantID), attribute.Int("quantity.amount", amount), attribute.String("quantity.direction", direction)))
	defer span.End()

	res, err := s.inner.UpdateQuantity(ctx, plantID, amount, direction)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update quantity", slog.String("plant.id", plantID))
	}
	s.logInfo(ctx, "quantity updated", slog.String("plant.id", plantID), slog.Int("plant.quantity", res.Quantity))
	return res, nil
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
	intentsCreated metric.Int64Counter
	ordersPlaced   metric.Int64Counter
	unitsSold      metric.Int64Counter
	refunds        metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	intents, _ := m.Int64Counter("orders.service.payment_intents_created", metric.WithDescription("Number of payment intents opened"))
	placed, _ := m.Int64Counter("orders.service.orders_placed", metric.WithDescription("Number of orders committed"))
	units, _ := m.Int64Counter("orders.service.units_sold", metric.WithDescription("Plant units sold"))
	refunds, _ := m.Int64Counter("orders.service.payments_refunded", metric.WithDescription("Payments refunded after failed placement"))
	return serviceMetrics{intentsCreated: intents, ordersPlaced: placed, unitsSold: units, refunds: refunds}
}

func (m serviceMetrics) recordIntent(ctx context.Context, currency string) {
	if m.intentsCreated != nil {
		m.intentsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("payment.currency", currency)))
	}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, category string, quantity int) {
	attrs := metric.WithAttributes(attribute.String("plant.category", category))
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1, attrs)
	}
	if m.unitsSold != nil {
		m.unitsSold.Add(ctx, int64(quantity), attrs)
	}
}

func (m serviceMetrics) recordRefund(ctx context.Context) {
	if m.refunds != nil {
		m.refunds.Add(ctx, 1)
	}
}

var _ orderports.Service = (*Service)(nil)
