package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"
)

type txKey struct{}

// Conn returns the transaction bound to ctx, or db scoped to ctx when no
// transaction is active. Repositories call it for every statement so they
// join a surrounding unit of work transparently.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// TxOptions tunes the retry loop of a Transactor.
type TxOptions struct {
	IsolationLevel sql.IsolationLevel
	MaxRetries     int
	BaseBackoff    time.Duration
}

// DefaultTxOptions runs read committed with three replays.
func DefaultTxOptions() TxOptions {
	return TxOptions{
		IsolationLevel: sql.LevelReadCommitted,
		MaxRetries:     3,
		BaseBackoff:    50 * time.Millisecond,
	}
}

// Transactor runs units of work inside a database transaction, replaying the
// whole function on serialization failures and deadlocks.
type Transactor struct {
	db   *gorm.DB
	opts TxOptions
}

func NewTransactor(db *gorm.DB, opts TxOptions) *Transactor {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = 50 * time.Millisecond
	}
	return &Transactor{db: db, opts: opts}
}

// WithinTransaction commits when fn returns nil and rolls back otherwise.
// Nested calls reuse the outer transaction.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if t == nil || t.db == nil {
		return errors.New("postgres transactor not configured")
	}
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	backoff := t.opts.BaseBackoff
	var lastErr error
	for attempt := 0; attempt <= t.opts.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(context.WithValue(ctx, txKey{}, tx))
		}, &sql.TxOptions{Isolation: t.opts.IsolationLevel})
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		lastErr = err

		jitter := time.Duration(rand.Int63n(int64(backoff/4) + 1))
		select {
		case <-time.After(backoff + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	return fmt.Errorf("max retries (%d) exceeded: %w", t.opts.MaxRetries, lastErr)
}
