// Package memtx gives the in-memory adapters all-or-nothing units of work.
//
// Units of work are serialised by a single mutex. Repositories register an
// undo function for every mutation they apply under a unit of work, and the
// journal replays them in reverse order when the unit fails.
package memtx

import (
	"context"
	"sync"
)

type journalKey struct{}

type journal struct {
	mu    sync.Mutex
	undos []func()
}

func (j *journal) record(undo func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.undos = append(j.undos, undo)
}

func (j *journal) rollback() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for i := len(j.undos) - 1; i >= 0; i-- {
		j.undos[i]()
	}
	j.undos = nil
}

// Transactor implements the WithinTransaction contract for memory adapters.
type Transactor struct {
	mu sync.Mutex
}

func NewTransactor() *Transactor {
	return &Transactor{}
}

// WithinTransaction runs fn with a journal bound to ctx and undoes every
// recorded mutation when fn fails. Nested calls join the outer journal.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(journalKey{}).(*journal); ok {
		return fn(ctx)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	j := &journal{}
	if err := fn(context.WithValue(ctx, journalKey{}, j)); err != nil {
		j.rollback()
		return err
	}
	return nil
}

// OnRollback registers undo with the unit of work bound to ctx. Outside a
// unit of work the mutation is final and undo is dropped.
func OnRollback(ctx context.Context, undo func()) {
	if j, ok := ctx.Value(journalKey{}).(*journal); ok && undo != nil {
		j.record(undo)
	}
}
