package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantnet/plantnet-api/internal/domains/plants/domain"
	"github.com/plantnet/plantnet-api/internal/domains/plants/ports"
	"github.com/plantnet/plantnet-api/internal/platform/memtx"
)

func seed(t *testing.T, repo *Repository, name string, qty int) *domain.Plant {
	t.Helper()
	p, err := repo.Create(context.Background(), &domain.Plant{Name: name, Price: decimal.NewFromInt(10), Quantity: qty})
	require.NoError(t, err)
	return p
}

func TestRepository_CreateListCount(t *testing.T) {
	repo := NewRepository()
	first := seed(t, repo, "Fern", 1)
	second := seed(t, repo, "Cactus", 2)

	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	_, err = repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_AdjustQuantityNeverNegative(t *testing.T) {
	repo := NewRepository()
	p := seed(t, repo, "Fern", 5)
	ctx := context.Background()

	var wg sync.WaitGroup
	var succeeded atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AdjustQuantity(ctx, p.ID, -1); err == nil {
				succeeded.Add(1)
			} else {
				assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 5, succeeded.Load())
	stored, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Quantity)
}

func TestRepository_RollbackRestoresStockAndRemovesCreates(t *testing.T) {
	repo := NewRepository()
	p := seed(t, repo, "Fern", 3)
	tx := memtx.NewTransactor()
	boom := errors.New("boom")

	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		if _, err := repo.AdjustQuantity(ctx, p.ID, -2); err != nil {
			return err
		}
		if _, err := repo.Create(ctx, &domain.Plant{Name: "Orchid"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Quantity)
	count, _ := repo.Count(context.Background())
	assert.EqualValues(t, 1, count)
}
