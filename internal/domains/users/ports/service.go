package ports

import (
	"context"
	"time"

	"github.com/plantnet/plantnet-api/internal/domains/users/domain"
	"github.com/plantnet/plantnet-api/internal/platform/auth"
)

// Session is an authenticated token.
type Session struct {
	Token     string
	TokenID   string
	Email     string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(email string) (string, *auth.Claims, error)
	Parse(raw string) (*auth.Claims, error)
}

// Service exposes user bounded context use cases to adapters.
type Service interface {
	UpsertOnLogin(ctx context.Context, email, name, image string) (*UpsertResult, error)
	GetRole(ctx context.Context, email string) (domain.Role, error)
	GetUser(ctx context.Context, email string) (*domain.User, error)
	RequestSellerUpgrade(ctx context.Context, callerEmail, email string) (*domain.User, error)
	UpdateRole(ctx context.Context, callerEmail, email, role string) (*domain.User, error)
	ListUsers(ctx context.Context, excludingEmail string) ([]*domain.User, error)
	CountUsers(ctx context.Context) (int64, error)

	IssueToken(ctx context.Context, email string) (*Session, error)
	Authenticate(ctx context.Context, token string) (*Session, error)
	Logout(ctx context.Context, token string) error
	PurgeRevocations(ctx context.Context) (int64, error)
}
