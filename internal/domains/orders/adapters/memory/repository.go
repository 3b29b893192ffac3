package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	"github.com/plantnet/plantnet-api/internal/domains/orders/ports"
	"github.com/plantnet/plantnet-api/internal/platform/memtx"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order store keyed by id with a unique
// transaction id index.
type Repository struct {
	mu       sync.RWMutex
	orders   []*domain.Order
	byTxnID  map[string]*domain.Order
	refunded map[string]time.Time
}

func NewRepository() *Repository {
	return &Repository{byTxnID: map[string]*domain.Order{}, refunded: map[string]time.Time{}}
}

func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := *order
	clone.ID = uuid.NewString()

	r.mu.Lock()
	if _, exists := r.byTxnID[clone.TransactionID]; exists {
		r.mu.Unlock()
		return nil, ports.ErrDuplicateOrder
	}
	r.orders = append(r.orders, &clone)
	r.byTxnID[clone.TransactionID] = &clone
	r.mu.Unlock()

	memtx.OnRollback(ctx, func() { r.remove(clone.ID) })
	out := clone
	return &out, nil
}

func (r *Repository) GetByTransactionID(_ context.Context, transactionID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.byTxnID[transactionID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *order
	return &clone, nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0, len(r.orders))
	for _, o := range r.orders {
		clone := *o
		list = append(list, &clone)
	}
	return list, nil
}

func (r *Repository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.orders)), nil
}

func (r *Repository) MarkRefunded(_ context.Context, transactionID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.refunded[transactionID]; !ok {
		r.refunded[transactionID] = at
	}
	return nil
}

func (r *Repository) IsRefunded(_ context.Context, transactionID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.refunded[transactionID]
	return ok, nil
}

func (r *Repository) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, o := range r.orders {
		if o.ID == id {
			delete(r.byTxnID, o.TransactionID)
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			return
		}
	}
}
