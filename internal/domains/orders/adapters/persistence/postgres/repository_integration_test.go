//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/plantnet/plantnet-api/internal/domains/orders/adapters/catalog"
	"github.com/plantnet/plantnet-api/internal/domains/orders/application"
	"github.com/plantnet/plantnet-api/internal/domains/orders/domain"
	"github.com/plantnet/plantnet-api/internal/domains/orders/ports"
	plantpostgres "github.com/plantnet/plantnet-api/internal/domains/plants/adapters/persistence/postgres"
	plantdomain "github.com/plantnet/plantnet-api/internal/domains/plants/domain"
	"github.com/plantnet/plantnet-api/internal/platform/migrations"
	platformpostgres "github.com/plantnet/plantnet-api/internal/platform/postgres"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
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

func newOrder(txID string, price string, at time.Time) *domain.Order {
	return &domain.Order{
		PlantID:       "c0ffee00-0000-4000-8000-000000000001",
		PlantName:     "Monstera",
		Seller:        domain.Party{Email: "sam@example.com"},
		Customer:      domain.Party{Name: "Ann", Email: "ann@example.com"},
		Quantity:      1,
		Price:         decimal.RequireFromString(price),
		TransactionID: txID,
		Status:        domain.StatusPending,
		CreatedAt:     at,
	}
}

func TestRepository_TransactionIDIsUnique(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	created, err := repo.Create(ctx, newOrder("pi_1", "25.00", now))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = repo.Create(ctx, newOrder("pi_1", "10.00", now))
	require.ErrorIs(t, err, ports.ErrDuplicateOrder)

	got, err := repo.GetByTransactionID(ctx, "pi_1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, decimal.RequireFromString("25").Equal(got.Price))

	_, err = repo.GetByTransactionID(ctx, "pi_missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRepository_DailyTotalsGroupByUTCDay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	saoPaulo := time.FixedZone("BRT", -3*60*60)

	// 22:30 on the 1st in UTC-3 is 01:30 on the 2nd in UTC.
	_, err := repo.Create(ctx, newOrder("pi_a", "10.50", time.Date(2025, 4, 1, 22, 30, 0, 0, saoPaulo)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newOrder("pi_b", "4.25", time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newOrder("pi_c", "7.00", time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	rows, err := repo.DailyTotals(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2025-04-01", rows[0].Day)
	assert.Equal(t, int64(1), rows[0].Orders)
	assert.True(t, decimal.RequireFromString("7").Equal(rows[0].Revenue), rows[0].Revenue.String())

	assert.Equal(t, "2025-04-02", rows[1].Day)
	assert.Equal(t, int64(2), rows[1].Orders)
	assert.True(t, decimal.RequireFromString("14.75").Equal(rows[1].Revenue), rows[1].Revenue.String())
}

func TestRepository_RefundedTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	refunded, err := repo.IsRefunded(ctx, "pi_r")
	require.NoError(t, err)
	assert.False(t, refunded)

	require.NoError(t, repo.MarkRefunded(ctx, "pi_r", now))
	require.NoError(t, repo.MarkRefunded(ctx, "pi_r", now.Add(time.Minute)))

	refunded, err = repo.IsRefunded(ctx, "pi_r")
	require.NoError(t, err)
	assert.True(t, refunded)
}

// skipDuplicateCheck hides existing orders from the service so the unique
// index is what rejects the second insert.
type skipDuplicateCheck struct {
	*Repository
}

func (skipDuplicateCheck) GetByTransactionID(context.Context, string) (*domain.Order, error) {
	return nil, ports.ErrNotFound
}

func TestPlaceOrder_UniqueViolationRollsBackStock(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	ctx := context.Background()
	plants := plantpostgres.NewRepository(db)
	plant, err := plants.Create(ctx, &plantdomain.Plant{
		Name: "Aloe", Price: decimal.RequireFromString("5"), Quantity: 4,
		Seller: plantdomain.Seller{Email: "sam@example.com"},
	})
	require.NoError(t, err)

	orders := NewRepository(db)
	svc := application.NewService(skipDuplicateCheck{orders}, catalog.NewPlants(plants),
		platformpostgres.NewTransactor(db, platformpostgres.DefaultTxOptions()))
	placement := domain.Placement{PlantID: plant.ID, Quantity: 2, TransactionID: "pi_twice",
		Customer: domain.Party{Email: "ann@example.com"}}

	order, err := svc.PlaceOrder(ctx, placement)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("10").Equal(order.Price))

	_, err = svc.PlaceOrder(ctx, placement)
	require.ErrorIs(t, err, ports.ErrDuplicateOrder)

	stored, err := plants.GetByID(ctx, plant.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Quantity)
	n, err := orders.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
