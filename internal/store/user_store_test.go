package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/AdamBeresnev/op-chess/internal/policy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededUsers(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	store := NewUserStore(db)

	admin, err := store.GetUser(context.Background(), uuid.MustParse(testSuperUserID))
	require.NoError(t, err)
	assert.Equal(t, policy.RoleAdmin, admin.Role)
	assert.False(t, admin.Deleted())

	deleted, err := store.GetUser(context.Background(), chess.DeletedPlayerID)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted())
}

func TestUpdateRoleAndSoftDelete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	store := NewUserStore(db)
	id := createTestUser(t, db, "dave")

	require.NoError(t, store.UpdateRole(ctx, id, policy.RoleAdmin))
	user, err := store.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, policy.RoleAdmin, user.Role)

	require.NoError(t, store.SoftDelete(ctx, id, time.Now().UTC()))
	user, err = store.GetUser(ctx, id)
	require.NoError(t, err)
	assert.True(t, user.Deleted())
	assert.Equal(t, policy.Actor{}, user.Actor())

	assert.ErrorIs(t, store.SoftDelete(ctx, id, time.Now().UTC()), sql.ErrNoRows)
	assert.ErrorIs(t, store.UpdateRole(ctx, id, policy.RolePlayer), sql.ErrNoRows)
}

func TestGetUsers(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	store := NewUserStore(db)
	a := createTestUser(t, db, "erin")
	b := createTestUser(t, db, "frank")

	list, err := store.GetUsers(ctx, []uuid.UUID{a, b, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	empty, err := store.GetUsers(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetUserByProvider(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	store := NewUserStore(db)
	_, err := store.GetUserByProvider(ctx, "discord", "123")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
