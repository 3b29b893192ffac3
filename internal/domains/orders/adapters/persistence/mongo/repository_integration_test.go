//go:build integration

package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcmongo "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	"github.com/plantnet/plantnet-api/internal/domains/orders/ports"
	"github.com/plantnet/plantnet-api/internal/platform/migrations"
	platformmongo "github.com/plantnet/plantnet-api/internal/platform/mongo"
)

func setupOrdersMongoContainer(t *testing.T) (*mongo.Database, func()) {
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

func TestRepository_TransactionIDIsUnique(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersMongoContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	order := &domain.Order{
		PlantID: "p1", Quantity: 2, Price: decimal.RequireFromString("25.00"), TransactionID: "pi_1",
		Customer: domain.Party{Email: "ann@example.com"}, Status: domain.StatusPending,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	created, err := repo.Create(ctx, order)
	require.NoError(t, err)
	_, err = repo.Create(ctx, order)
	require.ErrorIs(t, err, ports.ErrDuplicateOrder)

	got, err := repo.GetByTransactionID(ctx, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, decimal.RequireFromString("25").Equal(got.Price))
}

func TestRepository_RefundedTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersMongoContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	refunded, err := repo.IsRefunded(ctx, "pi_r")
	require.NoError(t, err)
	assert.False(t, refunded)

	require.NoError(t, repo.MarkRefunded(ctx, "pi_r", time.Now()))
	require.NoError(t, repo.MarkRefunded(ctx, "pi_r", time.Now()))

	refunded, err = repo.IsRefunded(ctx, "pi_r")
	require.NoError(t, err)
	assert.True(t, refunded)
	n, err := db.Collection(platformmongo.RefundedIntentsCollection).CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
