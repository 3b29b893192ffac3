package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantnet/plantnet-api/internal/domains/users/domain"
	"github.com/plantnet/plantnet-api/internal/domains/users/ports"
)

func TestUpsertOnLogin_InsertsThenTouches(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	u, err := domain.NewUser("ann@example.com", "Ann", "", first)
	require.NoError(t, err)
	res, err := repo.UpsertOnLogin(ctx, u, first)
	require.NoError(t, err)
	assert.True(t, res.Inserted)
	assert.NotEmpty(t, res.User.ID)

	_, err = repo.SetRole(ctx, "ann@example.com", domain.RoleSeller, domain.StatusVerified)
	require.NoError(t, err)

	again, err := domain.NewUser("ann@example.com", "Ann B", "", later)
	require.NoError(t, err)
	res, err = repo.UpsertOnLogin(ctx, again, later)
	require.NoError(t, err)
	assert.False(t, res.Inserted)
	assert.Equal(t, int64(1), res.Matched)
	assert.Equal(t, domain.RoleSeller, res.User.Role)
	assert.Equal(t, "Ann", res.User.Name)
	assert.Equal(t, first, res.User.CreatedAt)
	assert.Equal(t, later, res.User.LastLoginAt)
}

func TestSetStatus_GuardsOnRole(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	u, _ := domain.NewUser("bob@example.com", "Bob", "", time.Now())
	_, err := repo.UpsertOnLogin(ctx, u, time.Now())
	require.NoError(t, err)

	_, err = repo.SetStatus(ctx, "bob@example.com", domain.RoleSeller, domain.StatusRequested)
	assert.ErrorIs(t, err, ports.ErrNotFound)

	updated, err := repo.SetStatus(ctx, "bob@example.com", domain.RoleCustomer, domain.StatusRequested)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRequested, updated.Status)
}

func TestListExcluding(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	for _, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		u, _ := domain.NewUser(email, "", "", time.Now())
		_, err := repo.UpsertOnLogin(ctx, u, time.Now())
		require.NoError(t, err)
	}
	list, err := repo.ListExcluding(ctx, "b@x.io")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a@x.io", list[0].Email)
	assert.Equal(t, "c@x.io", list[1].Email)
}

func TestRevocationStore(t *testing.T) {
	store := NewRevocationStore()
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.Revoke(ctx, domain.Revocation{TokenID: "live", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Revoke(ctx, domain.Revocation{TokenID: "stale", ExpiresAt: now.Add(-time.Hour)}))

	revoked, err := store.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, _ = store.IsRevoked(ctx, "unknown")
	assert.False(t, revoked)

	n, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
