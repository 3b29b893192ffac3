//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/plantnet/plantnet-api/internal/domains/users/domain"
	"github.com/plantnet/plantnet-api/internal/domains/users/ports"
	"github.com/plantnet/plantnet-api/internal/platform/migrations"
)

func setupUsersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
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

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func TestRepository_UpsertOnLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	candidate, err := domain.NewUser("fern@example.com", "Fern", "", now)
	require.NoError(t, err)

	first, err := repo.UpsertOnLogin(ctx, candidate, now)
	require.NoError(t, err)
	assert.True(t, first.Inserted)
	assert.NotEmpty(t, first.User.ID)

	later := now.Add(time.Hour)
	again, err := domain.NewUser("fern@example.com", "Renamed", "", later)
	require.NoError(t, err)
	second, err := repo.UpsertOnLogin(ctx, again, later)
	require.NoError(t, err)
	assert.False(t, second.Inserted)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "Fern", second.User.Name)
	assert.WithinDuration(t, later, second.User.LastLoginAt, time.Second)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_GuardedStatusAndRole(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	for _, email := range []string{"ann@example.com", "bob@example.com"} {
		u, err := domain.NewUser(email, "", "", now)
		require.NoError(t, err)
		_, err = repo.UpsertOnLogin(ctx, u, now)
		require.NoError(t, err)
	}

	requested, err := repo.SetStatus(ctx, "ann@example.com", domain.RoleCustomer, domain.StatusRequested)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRequested, requested.Status)

	seller, err := repo.SetRole(ctx, "ann@example.com", domain.RoleSeller, domain.StatusVerified)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSeller, seller.Role)

	_, err = repo.SetStatus(ctx, "ann@example.com", domain.RoleCustomer, domain.StatusRequested)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	others, err := repo.ListExcluding(ctx, "ann@example.com")
	require.NoError(t, err)
	require.Len(t, others, 1)
	assert.Equal(t, "bob@example.com", others[0].Email)
}

func TestRevocationStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	store := NewRevocationStore(db)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.Revoke(ctx, domain.Revocation{TokenID: "live", Email: "a@b.c", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Revoke(ctx, domain.Revocation{TokenID: "live", Email: "a@b.c", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Revoke(ctx, domain.Revocation{TokenID: "old", Email: "a@b.c", ExpiresAt: now.Add(-time.Hour)}))

	revoked, err := store.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	purged, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}
