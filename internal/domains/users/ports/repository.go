package ports

import (
	"context"
	"errors"
	"time"

	"github.com/plantnet/plantnet-api/internal/domains/users/domain"
)

var ErrNotFound = errors.New("user not found")

// UpsertResult mirrors the storage outcome of a login upsert.
type UpsertResult struct {
	User     *domain.User
	Inserted bool
	Matched  int64
	Modified int64
}

// Repository persists users keyed by email.
type Repository interface {
	// UpsertOnLogin inserts candidate when its email is unknown; otherwise
	// only the last login time is set to now. One atomic storage operation.
	UpsertOnLogin(ctx context.Context, candidate *domain.User, now time.Time) (*UpsertResult, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// SetStatus changes the status only while the user still holds role.
	SetStatus(ctx context.Context, email string, role domain.Role, status domain.Status) (*domain.User, error)
	SetRole(ctx context.Context, email string, role domain.Role, status domain.Status) (*domain.User, error)
	ListExcluding(ctx context.Context, email string) ([]*domain.User, error)
	Count(ctx context.Context) (int64, error)
}
