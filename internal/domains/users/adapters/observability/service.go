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

	userdomain "github.com/plantnet/plantnet-api/internal/domains/users/domain"
	userports "github.com/plantnet/plantnet-api/internal/domains/users/ports"
)

const tracerName = "github.com/plantnet/plantnet-api/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
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
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) UpsertOnLogin(ctx context.Context, email, name, image string) (*userports.UpsertResult, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.UpsertOnLogin", trace.WithAttributes(attribute.String("user.email", email)))
	defer span.End()
	result, err := s.inner.UpsertOnLogin(ctx, email, name, image)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to upsert user", slog.String("user.email", email))
	}
	span.SetAttributes(attribute.Bool("user.inserted", result.Inserted))
	s.metrics.recordLogin(ctx, result.Inserted)
	if result.Inserted {
		s.logInfo(ctx, "user registered", slog.String("user.email", result.User.Email))
	}
	return result, nil
}

func (s *Service) GetRole(ctx context.Context, email string) (userdomain.Role, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetRole", trace.WithAttributes(attribute.String("user.email", email)))
	defer span.End()
	role, err := s.inner.GetRole(ctx, email)
	if err != nil {
		return "", s.handleError(ctx, span, err, "failed to load role", slog.String("user.email", email))
	}
	return role, nil
}

func (s *Service) GetUser(ctx context.Context, email string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetUser", trace.WithAttributes(attribute.String("user.email", email)))
	defer span.End()
	return s.inner.GetUser(ctx, email)
}

func (s *Service) RequestSellerUpgrade(ctx context.Context, callerEmail, email string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.RequestSellerUpgrade", trace.WithAttributes(attribute.String("user.email", email)))
	defer span.End()
	s.logInfo(ctx, "seller upgrade requested", slog.String("user.email", email))
	result, err := s.inner.RequestSellerUpgrade(ctx, callerEmail, email)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "seller upgrade request failed", slog.String("user.email", email))
	}
	s.metrics.recordSellerRequest(ctx)
	return result, nil
}

func (s *Service) UpdateRole(ctx context.Context, callerEmail, email, role string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.UpdateRole", trace.WithAttributes(
		attribute.String("user.email", email), attribute.String("user.role", role), attribute.String("caller.email", callerEmail)))
	defer span.End()
	result, err := s.inner.UpdateRole(ctx, callerEmail, email, role)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update role",
			slog.String("user.email", email), slog.String("user.role", role), slog.String("caller.email", callerEmail))
	}
	s.metrics.recordRoleUpdate(ctx, string(result.Role))
	s.logInfo(ctx, "role updated", slog.String("user.email", result.Email), slog.String("user.role", string(result.Role)),
		slog.String("caller.email", callerEmail))
	return result, nil
}

func (s *Service) ListUsers(ctx context.Context, excludingEmail string) ([]*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.ListUsers")
	defer span.End()
	users, err := s.inner.ListUsers(ctx, excludingEmail)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list users")
	}
	span.SetAttributes(attribute.Int("users.count", len(users)))
	return users, nil
}

func (s *Service) CountUsers(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.CountUsers")
	defer span.End()
	n, err := s.inner.CountUsers(ctx)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to count users")
	}
	return n, nil
}

func (s *Service) IssueToken(ctx context.Context, email string) (*userports.Session, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.IssueToken", trace.WithAttributes(attribute.String("user.email", email)))
	defer span.End()
	session, err := s.inner.IssueToken(ctx, email)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to issue token", slog.String("user.email", email))
	}
	s.metrics.recordToken(ctx)
	return session, nil
}

// Authenticate runs on every protected request; failures are expected
// traffic and logged at debug level only.
func (s *Service) Authenticate(ctx context.Context, token string) (*userports.Session, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()
	session, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		s.logger.LogAttrs(ctx, slog.LevelDebug, "authentication failed", slog.String("error", err.Error()))
		return nil, err
	}
	span.SetAttributes(attribute.String("user.email", session.Email))
	return session, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Logout")
	defer span.End()
	if err := s.inner.Logout(ctx, token); err != nil {
		return s.handleError(ctx, span, err, "failed to revoke token")
	}
	return nil
}

func (s *Service) PurgeRevocations(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.PurgeRevocations")
	defer span.End()
	n, err := s.inner.PurgeRevocations(ctx)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to purge revocations")
	}
	span.SetAttributes(attribute.Int64("revocations.purged", n))
	s.logInfo(ctx, "revocations purged", slog.Int64("revocations.purged", n))
	return n, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

type serviceMetrics struct {
	registrations  metric.Int64Counter
	logins         metric.Int64Counter
	sellerRequests metric.Int64Counter
	roleUpdates    metric.Int64Counter
	tokens         metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registrations, _ := m.Int64Counter("users.service.registrations", metric.WithDescription("Number of first-time logins"))
	logins, _ := m.Int64Counter("users.service.logins", metric.WithDescription("Number of login upserts"))
	requests, _ := m.Int64Counter("users.service.seller_requests", metric.WithDescription("Number of seller upgrade requests"))
	roles, _ := m.Int64Counter("users.service.role_updates", metric.WithDescription("Number of role changes"))
	tokens, _ := m.Int64Counter("users.service.tokens_issued", metric.WithDescription("Number of session tokens issued"))
	return serviceMetrics{registrations: registrations, logins: logins, sellerRequests: requests, roleUpdates: roles, tokens: tokens}
}

func (m serviceMetrics) recordLogin(ctx context.Context, inserted bool) {
	if m.logins != nil {
		m.logins.Add(ctx, 1)
	}
	if inserted && m.registrations != nil {
		m.registrations.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordSellerRequest(ctx context.Context) {
	if m.sellerRequests != nil {
		m.sellerRequests.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordRoleUpdate(ctx context.Context, role string) {
	if m.roleUpdates != nil {
		m.roleUpdates.Add(ctx, 1, metric.WithAttributes(attribute.String("user.role", role)))
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (m serviceMetrics) recordToken(ctx context.Context) {
	if m.tokens != nil {
		m.tokens.Add(ctx, 1)
	}
}

var _ userports.Service = (*Service)(nil)
