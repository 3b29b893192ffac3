//go:build integration

package mongo

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/plantnet/plantnet-api/internal/domains/plants/domain"
	"github.com/plantnet/plantnet-api/internal/domains/plants/ports"
	"github.com/plantnet/plantnet-api/internal/platform/migrations"
	platformmongo "github.com/plantnet/plantnet-api/internal/platform/mongo"
)

func setupPlantsMongoContainer(t *testing.T) (*mongo.Database, func()) {
	ctx := context.Background()

	container, err := tcmongo.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	db, closeDB, err := platformmongo.Connect(ctx, uri, "plantdb_test")
	require.NoError(t, err)
	require.NoError(t, migrations.EnsureMongoIndexes(ctx, db))

	cleanup := func() {
		closeDB()
		container.Terminate(ctx)
	}
	return db, cleanup
}

func newTestPlant(t *testing.T, quantity int) *domain.Plant {
	t.Helper()
	plant, err := domain.NewPlant("Fiddle Leaf Fig", "Indoor", "Tall and fussy", "https://img/fig.png",
		decimal.RequireFromString("39.90"), quantity, domain.Seller{Name: "Sam", Email: "sam@example.com"})
	require.NoError(t, err)
	return plant
}

func TestRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPlantsMongoContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestPlant(t, 4))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fiddle Leaf Fig", got.Name)
	assert.True(t, decimal.RequireFromString("39.90").Equal(got.Price))
	assert.Equal(t, "sam@example.com", got.Seller.Email)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = repo.GetByID(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_AdjustQuantityGuardsDecrement(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupPlantsMongoContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newTestPlant(t, 2))
	require.NoError(t, err)

	updated, err := repo.AdjustQuantity(ctx, created.ID, -2)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Quantity)

	_, err = repo.AdjustQuantity(ctx, created.ID, -1)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	updated, err = repo.AdjustQuantity(ctx, created.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)

	_, err = repo.AdjustQuantity(ctx, "000000000000000000000000", 1)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
