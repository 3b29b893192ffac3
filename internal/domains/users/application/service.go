package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/plantnet/plantnet-api/internal/domains/users/domain"
	"github.com/plantnet/plantnet-api/internal/domains/users/ports"
	"github.com/plantnet/plantnet-api/internal/shared/events"
)

const (
	EventSellerRequested = "users.user.seller_requested"
	EventRoleUpdated     = "users.user.role_updated"
)

// Service exposes user bounded context use cases.
type Service struct {
	repo        ports.Repository
	revocations ports.RevocationStore
	tokens      ports.TokenIssuer
	publisher   events.Publisher
	logger      *slog.Logger
	now         func() time.Time
}

type Option func(*Service)

func WithTokenIssuer(tokens ports.TokenIssuer) Option {
	return func(s *Service) {
		s.tokens = tokens
	}
}

// WithRevocationStore makes logout invalidate the token server-side.
func WithRevocationStore(store ports.RevocationStore) Option {
	return func(s *Service) {
		s.revocations = store
	}
}

func WithPublisher(publisher events.Publisher) Option {
	return func(s *Service) {
		if publisher != nil {
			s.publisher = publisher
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

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		publisher: events.NoopPublisher,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// UpsertOnLogin registers a first-time user as a customer or refreshes the
// last login time of a known one. Role and status are never touched here.
func (s *Service) UpsertOnLogin(ctx context.Context, email, name, image string) (*ports.UpsertResult, error) {
	now := s.now().UTC()
	candidate, err := domain.NewUser(email, name, image, now)
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.UpsertOnLogin(ctx, candidate, now)
}

func (s *Service) GetRole(ctx context.Context, email string) (domain.Role, error) {
	user, err := s.GetUser(ctx, email)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

func (s *Service) GetUser(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
}

// RequestSellerUpgrade lets a customer ask for the seller role. Callers may
// only file the request for themselves.
func (s *Service) RequestSellerUpgrade(ctx context.Context, callerEmail, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if domain.NormalizeEmail(callerEmail) != email {
		return nil, ErrForbidden
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := user.RequestSeller(); err != nil {
		return nil, err
	}
	updated, err := s.repo.SetStatus(ctx, email, domain.RoleCustomer, domain.StatusRequested)
	if errors.Is(err, ports.ErrNotFound) {
		// role changed between the read and the guarded write
		return nil, domain.ErrInvalidTransition
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(EventSellerRequested, updated.Email, map[string]string{"email": updated.Email}))
	return updated, nil
}

// UpdateRole assigns a role and marks the account verified. Admins only.
func (s *Service) UpdateRole(ctx context.Context, callerEmail, email, role string) (*domain.User, error) {
	caller, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(callerEmail))
	if errors.Is(err, ports.ErrNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, mapError(err)
	}
	target, err := s.repo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	target.AssignRole(parsed)
	updated, err := s.repo.SetRole(ctx, target.Email, target.Role, target.Status)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(EventRoleUpdated, updated.Email, map[string]string{
		"email":     updated.Email,
		"role":      string(updated.Role),
		"updatedBy": caller.Email,
	}))
	return updated, nil
}

func (s *Service) ListUsers(ctx context.Context, excludingEmail string) ([]*domain.User, error) {
	return s.repo.ListExcluding(ctx, domain.NormalizeEmail(excludingEmail))
}

func (s *Service) CountUsers(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// IssueToken signs a session token for email. The user need not exist yet;
// the dashboard calls this before the login upsert.
func (s *Service) IssueToken(_ context.Context, email string) (*ports.Session, error) {
	if s.tokens == nil {
		return nil, errors.New("token issuer not configured")
	}
	raw, claims, err := s.tokens.Issue(domain.NormalizeEmail(email))
	if err != nil {
		return nil, mapError(err)
	}
	return &ports.Session{Token: raw, TokenID: claims.ID, Email: claims.Email, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Authenticate verifies the token and rejects revoked ones.
func (s *Service) Authenticate(ctx context.Context, token string) (*ports.Session, error) {
	if s.tokens == nil {
		return nil, errors.New("token issuer not configured")
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if s.revocations != nil && claims.ID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, fmt.Errorf("%w: token revoked", ErrUnauthorized)
		}
	}
	session := &ports.Session{Token: token, TokenID: claims.ID, Email: claims.Email}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// Logout revokes the token until its natural expiry. Tokens that no longer
// verify are already unusable and are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" || s.tokens == nil || s.revocations == nil {
		return nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.revocations.Revoke(ctx, domain.Revocation{
		TokenID:   claims.ID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	})
}

func (s *Service) PurgeRevocations(ctx context.Context) (int64, error) {
	if s.revocations == nil {
		return 0, nil
	}
	return s.revocations.PurgeExpired(ctx, s.now().UTC())
}

func (s *Service) publish(ctx context.Context, evt events.Event) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", slog.String("event", evt.Name), slog.String("error", err.Error()))
	}
}

var _ ports.Service = (*Service)(nil)
