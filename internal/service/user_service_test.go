package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/AdamBeresnev/op-chess/internal/engine"
	"github.com/AdamBeresnev/op-chess/internal/policy"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrCreateUserByProvider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	gothUser := goth.User{Provider: "discord", UserID: "42", Email: "k@example.com", NickName: "kasparov", AvatarURL: "https://cdn/a.png"}

	created, err := f.accounts.FindOrCreateUserByProvider(ctx, gothUser)
	require.NoError(t, err)
	assert.Equal(t, "kasparov", created.Username)
	assert.Equal(t, policy.RolePlayer, created.Role)

	gothUser.AvatarURL = "https://cdn/b.png"
	again, err := f.accounts.FindOrCreateUserByProvider(ctx, gothUser)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	stored, err := f.accounts.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AvatarURL)
	assert.Equal(t, "https://cdn/b.png", *stored.AvatarURL)
}

func TestEnsureGuestUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	guest, err := f.accounts.EnsureGuestUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, GuestUserID, guest.ID)

	again, err := f.accounts.EnsureGuestUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, guest.ID, again.ID)
}

func TestSetRoleAndSoftDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.player(t, "target", 1500)
	player := f.player(t, "player", 1500)

	assert.ErrorIs(t, f.accounts.SetRole(ctx, player, target.ID, policy.RoleAdmin), engine.ErrForbidden)
	assert.ErrorIs(t, f.accounts.SetRole(ctx, f.admin(), target.ID, policy.Role("root")), ErrValidation)
	assert.ErrorIs(t, f.accounts.SetRole(ctx, f.admin(), uuid.New(), policy.RoleAdmin), ErrNotFound)
	require.NoError(t, f.accounts.SetRole(ctx, f.admin(), target.ID, policy.RoleAdmin))

	user, err := f.accounts.Get(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, policy.RoleAdmin, user.Role)

	assert.ErrorIs(t, f.accounts.SoftDelete(ctx, f.admin(), f.admin().ID), ErrValidation)
	require.NoError(t, f.accounts.SoftDelete(ctx, f.admin(), target.ID))
	assert.ErrorIs(t, f.accounts.SoftDelete(ctx, f.admin(), target.ID), ErrNotFound)
}

func TestSoftDeletedPlayerKeepsResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tournament, organizer, players := f.tournamentWithPlayers(t, chess.Swiss, 2)

	_, err := f.tournaments.Start(ctx, organizer, tournament.ID)
	require.NoError(t, err)
	matches, err := f.store.GetMatches(ctx, tournament.ID)
	require.NoError(t, err)
	_, err = f.matches.RecordResult(ctx, organizer, matches[0].ID, chess.ResultWhiteWins)
	require.NoError(t, err)

	require.NoError(t, f.accounts.SoftDelete(ctx, f.admin(), players[0].ID))

	standings, err := f.tournaments.Standings(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, standings, 2)
	assert.Equal(t, players[0].ID, standings[0].PlayerID)
	assert.Equal(t, 1.0, standings[0].Points)
	assert.Equal(t, "Player "+players[0].ID.String()+" (removed)", standings[0].DisplayName)
}
