package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/plantnet/plantnet-api/internal/domains/plants/domain"
	"github.com/plantnet/plantnet-api/internal/domains/plants/ports"
	"github.com/plantnet/plantnet-api/internal/platform/memtx"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory catalogue adapter. Listing order is insertion order.
type Repository struct {
	mu     sync.RWMutex
	plants map[string]*domain.Plant
	order  []string
}

func NewRepository() *Repository {
	return &Repository{plants: map[string]*domain.Plant{}}
}

func (r *Repository) Create(ctx context.Context, plant *domain.Plant) (*domain.Plant, error) {
	if plant == nil {
		return nil, errors.New("plant is nil")
	}
	clone := *plant
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	clone.ID = uuid.NewString()
	clone.CreatedAt = now
	clone.UpdatedAt = now

	r.mu.Lock()
	r.plants[clone.ID] = &clone
	r.order = append(r.order, clone.ID)
	r.mu.Unlock()

	memtx.OnRollback(ctx, func() { r.remove(clone.ID) })
	out := clone
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Plant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plant, ok := r.plants[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *plant
	return &clone, nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Plant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Plant, 0, len(r.order))
	for _, id := range r.order {
		clone := *r.plants[id]
		list = append(list, &clone)
	}
	return list, nil
}

func (r *Repository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.plants)), nil
}

func (r *Repository) AdjustQuantity(ctx context.Context, id string, delta int) (*domain.Plant, error) {
	r.mu.Lock()
	plant, ok := r.plants[id]
	if !ok {
		r.mu.Unlock()
		return nil, ports.ErrNotFound
	}
	if err := plant.Adjust(delta); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	plant.UpdatedAt = time.Now().UTC()
	clone := *plant
	r.mu.Unlock()

	memtx.OnRollback(ctx, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if p, ok := r.plants[id]; ok {
			p.Quantity -= delta
		}
	})
	return &clone, nil
}

func (r *Repository) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.plants, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
