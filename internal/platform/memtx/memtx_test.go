package memtx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTransaction_RollsBackInReverseOrder(t *testing.T) {
	tx := NewTransactor()
	var trail []string
	boom := errors.New("boom")

	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		OnRollback(ctx, func() { trail = append(trail, "first") })
		OnRollback(ctx, func() { trail = append(trail, "second") })
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"second", "first"}, trail)
}

func TestWithinTransaction_CommitDropsUndo(t *testing.T) {
	tx := NewTransactor()
	undone := false

	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		OnRollback(ctx, func() { undone = true })
		return nil
	})

	require.NoError(t, err)
	assert.False(t, undone)
}

func TestWithinTransaction_NestedJoinsOuter(t *testing.T) {
	tx := NewTransactor()
	undone := 0
	boom := errors.New("outer failure")

	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		inner := tx.WithinTransaction(ctx, func(ctx context.Context) error {
			OnRollback(ctx, func() { undone++ })
			return nil
		})
		require.NoError(t, inner)
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, undone)
}

func TestOnRollback_OutsideTransactionIsIgnored(t *testing.T) {
	called := false
	OnRollback(context.Background(), func() { called = true })
	assert.False(t, called)
}
