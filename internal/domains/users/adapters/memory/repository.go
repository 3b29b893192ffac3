package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/plantnet/plantnet-api/internal/domains/users/domain"
	"github.com/plantnet/plantnet-api/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory user store keyed by normalized email.
type Repository struct {
	mu    sync.RWMutex
	users map[string]*domain.User
	order []string
}

func NewRepository() *Repository {
	return &Repository{users: map[string]*domain.User{}}
}

func (r *Repository) UpsertOnLogin(_ context.Context, candidate *domain.User, now time.Time) (*ports.UpsertResult, error) {
	if candidate == nil {
		return nil, errors.New("user is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.users[candidate.Email]; ok {
		existing.LastLoginAt = now
		clone := *existing
		return &ports.UpsertResult{User: &clone, Matched: 1, Modified: 1}, nil
	}
	clone := *candidate
	clone.ID = uuid.NewString()
	r.users[clone.Email] = &clone
	r.order = append(r.order, clone.Email)
	out := clone
	return &ports.UpsertResult{User: &out, Inserted: true}, nil
}

func (r *Repository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[email]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *Repository) SetStatus(_ context.Context, email string, role domain.Role, status domain.Status) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok || user.Role != role {
		return nil, ports.ErrNotFound
	}
	user.Status = status
	clone := *user
	return &clone, nil
}

func (r *Repository) SetRole(_ context.Context, email string, role domain.Role, status domain.Status) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return nil, ports.ErrNotFound
	}
	user.Role = role
	user.Status = status
	clone := *user
	return &clone, nil
}

func (r *Repository) ListExcluding(_ context.Context, email string) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.User, 0, len(r.order))
	for _, key := range r.order {
		if key == email {
			continue
		}
		clone := *r.users[key]
		list = append(list, &clone)
	}
	return list, nil
}

func (r *Repository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}
