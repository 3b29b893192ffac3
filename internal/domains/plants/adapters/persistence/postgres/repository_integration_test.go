//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/plantnet/plantnet-api/internal/domains/plants/domain"
	"github.com/plantnet/plantnet-api/internal/domains/plants/ports"
	"github.com/plantnet/plantnet-api/internal/platform/migrations"
	platformpostgres "github.com/plantnet/plantnet-api/internal/platform/postgres"
)

func setupPlantsPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("plantnet_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, closeDB, err := platformpostgres.Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		closeDB()
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func seedPlant(t *testing.T, repo *Repository, quantity int) *domain.Plant {
	t.Helper()
	p, err := repo.Create(context.Background(), &domain.Plant{
		Name: "Monstera", Category: "Indoor", Price: decimal.RequireFromString("12.50"), Quantity: quantity,
		Seller: domain.Seller{Name: "Sam", Email: "sam@example.com"},
	})
	require.NoError(t, err)
	return p
}

func TestRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPlantsPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	created := seedPlant(t, repo, 4)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.50").Equal(got.Price))
	assert.Equal(t, 4, got.Quantity)
	assert.Equal(t, "sam@example.com", got.Seller.Email)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRepository_AdjustQuantityIsGuarded(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPlantsPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	plant := seedPlant(t, repo, 3)

	updated, err := repo.AdjustQuantity(ctx, plant.ID, -2)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Quantity)
	assert.Equal(t, "Monstera", updated.Name)

	_, err = repo.AdjustQuantity(ctx, plant.ID, -2)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	updated, err = repo.AdjustQuantity(ctx, plant.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Quantity)

	_, err = repo.AdjustQuantity(ctx, uuid.NewString(), 1)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_ConcurrentAdjustments(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPlantsPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("increments", func(t *testing.T) {
		plant := seedPlant(t, repo, 3)
		const n = 20
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.AdjustQuantity(ctx, plant.ID, 1)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := repo.GetByID(ctx, plant.ID)
		require.NoError(t, err)
		assert.Equal(t, 3+n, got.Quantity)
	})

	t.Run("decrements never go below zero", func(t *testing.T) {
		plant := seedPlant(t, repo, 5)
		var wg sync.WaitGroup
		var ok, refused atomic.Int32
		for i := 0; i < 12; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.AdjustQuantity(ctx, plant.ID, -1)
				switch {
				case err == nil:
					ok.Add(1)
				case errors.Is(err, domain.ErrInsufficientStock):
					refused.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(5), ok.Load())
		assert.Equal(t, int32(7), refused.Load())
		got, err := repo.GetByID(ctx, plant.ID)
		require.NoError(t, err)
		assert.Zero(t, got.Quantity)
	})
}

func TestRepository_AdjustJoinsTransaction(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPlantsPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	plant := seedPlant(t, repo, 4)
	tx := platformpostgres.NewTransactor(db, platformpostgres.DefaultTxOptions())

	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := repo.AdjustQuantity(ctx, plant.ID, -3); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := repo.GetByID(ctx, plant.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Quantity)
}
