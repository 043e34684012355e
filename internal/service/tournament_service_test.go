package service

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/AdamBeresnev/op-chess/internal/engine"
	"github.com/AdamBeresnev/op-chess/internal/policy"
	"github.com/AdamBeresnev/op-chess/internal/store"
	"github.com/AdamBeresnev/op-chess/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTournament_Defaults(t *testing.T) {
	f := newFixture(t)
	organizer := f.player(t, "org", 1500)

	in := validInput("")
	in.MaxParticipants = 0
	in.Name = "  Padded Name  "

	tournament, err := f.tournaments.Create(context.Background(), organizer, in)
	require.NoError(t, err)

	assert.Equal(t, "Padded Name", tournament.Name)
	assert.Equal(t, chess.Swiss, tournament.Format)
	assert.Equal(t, DefaultMaxParticipants, tournament.MaxParticipants)
	assert.Equal(t, chess.StatusUpcoming, tournament.Status)
	assert.Equal(t, organizer.ID, tournament.OrganizerID)

	detail, err := f.tournaments.Get(context.Background(), tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, chess.StatusUpcoming, detail.EffectiveStatus)
	assert.Equal(t, 0, detail.ParticipantCount)
	assert.Equal(t, 0, detail.Progress.MaxRounds)
}

func TestCreateTournament_Validation(t *testing.T) {
	f := newFixture(t)
	organizer := f.player(t, "org", 1500)

	testCases := []struct {
		name   string
		mutate func(*TournamentInput)
		field  string
	}{
		{"short name", func(in *TournamentInput) { in.Name = "ab" }, "name"},
		{"short location", func(in *TournamentInput) { in.Location = "x" }, "location"},
		{"end before start", func(in *TournamentInput) { in.EndDate = in.StartDate.Add(-time.Hour) }, "end_date"},
		{"deadline after start", func(in *TournamentInput) { in.RegistrationDeadline = utils.Ptr(in.StartDate.Add(time.Hour)) }, "registration_deadline"},
		{"too few seats", func(in *TournamentInput) { in.MaxParticipants = 3 }, "max_participants"},
		{"too many seats", func(in *TournamentInput) { in.MaxParticipants = 129 }, "max_participants"},
		{"bad format", func(in *TournamentInput) { in.Format = "arena" }, "format"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput(chess.Swiss)
			tc.mutate(&in)

			_, err := f.tournaments.Create(context.Background(), organizer, in)
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestCreateTournament_RequiresLogin(t *testing.T) {
	f := newFixture(t)
	_, err := f.tournaments.Create(context.Background(), policy.Actor{}, validInput(chess.Swiss))
	assert.ErrorIs(t, err, engine.ErrForbidden)
}

func TestGetTournament_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.tournaments.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateAndDeleteTournament(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tournament, organizer, _ := f.tournamentWithPlayers(t, chess.Swiss, 3)
	stranger := f.player(t, "stranger", 1400)

	in := validInput(chess.RoundRobin)
	in.Name = "Renamed"
	_, err := f.tournaments.Update(ctx, stranger, tournament.ID, in)
	assert.ErrorIs(t, err, engine.ErrForbidden)

	in.MaxParticipants = 4
	updated, err := f.tournaments.Update(ctx, organizer, tournament.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, chess.RoundRobin, updated.Format)

	assert.ErrorIs(t, f.tournaments.Delete(ctx, stranger, tournament.ID), engine.ErrForbidden)
	require.NoError(t, f.tournaments.Delete(ctx, f.admin(), tournament.ID))

	_, err = f.tournaments.Get(ctx, tournament.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, f.notifier.types(), EventTournamentDeleted)
}

func TestUpdateTournament_CannotShrinkBelowParticipants(t *testing.T) {
	f := newFixture(t)
	tournament, organizer, _ := f.tournamentWithPlayers(t, chess.Swiss, 5)

	in := validInput(chess.Swiss)
	in.MaxParticipants = 4
	_, err := f.tournaments.Update(context.Background(), organizer, tournament.ID, in)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStartTournament(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tournament, organizer, players := f.tournamentWithPlayers(t, chess.Swiss, 4)

	_, err := f.tournaments.Start(ctx, players[0], tournament.ID)
	assert.ErrorIs(t, err, engine.ErrForbidden)

	detail, err := f.tournaments.Start(ctx, organizer, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, chess.StatusOngoing, detail.Tournament.Status)
	assert.Equal(t, 1, detail.Progress.CurrentRound)
	assert.Equal(t, 2, detail.Progress.MaxRounds)
	assert.False(t, detail.Progress.CanGenerateNextRound)

	matches, err := f.store.GetMatches(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, players[0].ID, matches[0].WhiteID, "highest rated player takes board 1")
	assert.Equal(t, players[2].ID, matches[0].BlackID)

	_, err = f.tournaments.Start(ctx, organizer, tournament.ID)
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)

	assert.Equal(t, 1, f.recorder.transitions["upcoming>ongoing"])
	assert.Equal(t, 1, f.recorder.rounds)
}

func TestStartTournament_NeedsTwoPlayers(t *testing.T) {
	f := newFixture(t)
	tournament, organizer, _ := f.tournamentWithPlayers(t, chess.RoundRobin, 1)

	_, err := f.tournaments.Start(context.Background(), organizer, tournament.ID)
	assert.ErrorIs(t, err, engine.ErrNotEnoughParticipants)
}

func TestFinishAndCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tournament, organizer, _ := f.tournamentWithPlayers(t, chess.Swiss, 2)

	_, err := f.tournaments.Finish(ctx, organizer, tournament.ID)
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)

	_, err = f.tournaments.Start(ctx, organizer, tournament.ID)
	require.NoError(t, err)

	detail, err := f.tournaments.Finish(ctx, f.admin(), tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, chess.StatusFinished, detail.Tournament.Status)

	_, err = f.tournaments.Cancel(ctx, organizer, tournament.ID)
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)

	other, _, _ := f.tournamentWithPlayers(t, chess.Swiss, 0)
	_, err = f.tournaments.Cancel(ctx, organizer, other.ID)
	assert.ErrorIs(t, err, engine.ErrForbidden)
	_, err = f.tournaments.Cancel(ctx, f.admin(), other.ID)
	require.NoError(t, err)

	stored, err := f.store.GetTournament(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, chess.StatusCancelled, stored.Status)
}

func TestSyncStatuses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tournament, _, _ := f.tournamentWithPlayers(t, chess.Swiss, 2)
	cancelled, organizer, _ := f.tournamentWithPlayers(t, chess.Swiss, 0)
	_, err := f.tournaments.Cancel(ctx, organizer, cancelled.ID)
	require.NoError(t, err)

	changed, err := f.tournaments.SyncStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, changed)

	f.clock = tournament.StartDate.Add(2 * time.Hour)
	changed, err = f.tournaments.SyncStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	stored, err := f.store.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, chess.StatusOngoing, stored.Status)

	f.clock = tournament.EndDate.Add(48 * time.Hour)
	list, err := f.tournaments.List(ctx, store.TournamentFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, tour := range list {
		if tour.ID == tournament.ID {
			assert.Equal(t, chess.StatusFinished, tour.Status)
		} else {
			assert.Equal(t, chess.StatusCancelled, tour.Status, "cancelled tournaments never move")
		}
	}
}

func TestStartEarly_SurvivesStatusSync(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tournament, organizer, _ := f.tournamentWithPlayers(t, chess.Swiss, 4)

	_, err := f.tournaments.Start(ctx, organizer, tournament.ID)
	require.NoError(t, err)
	require.True(t, f.clock.Before(tournament.StartDate))

	changed, err := f.tournaments.SyncStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, changed, "a paired tournament stays ongoing before its start date")

	stored, err := f.store.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, chess.StatusOngoing, stored.Status)

	_, err = f.tournaments.Start(ctx, organizer, tournament.ID)
	assert.ErrorIs(t, err, engine.ErrInvalidTransition)

	tx, err := f.db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, f.store.UpdateTournamentStatus(ctx, tx, tournament.ID, chess.StatusUpcoming))
	require.NoError(t, tx.Commit())

	_, err = f.tournaments.Start(ctx, organizer, tournament.ID)
	assert.ErrorIs(t, err, engine.ErrInvalidTransition, "round 1 already exists")

	gates, err := f.tournaments.Actions(ctx, organizer, tournament.ID)
	require.NoError(t, err)
	assert.False(t, gates.CanStart)

	matches, err := f.store.GetMatches(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	assert.Equal(t, 1, f.recorder.rounds)
}

func TestActions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tournament, organizer, players := f.tournamentWithPlayers(t, chess.Swiss, 4)

	gates, err := f.tournaments.Actions(ctx, organizer, tournament.ID)
	require.NoError(t, err)
	assert.True(t, gates.CanStart)
	assert.True(t, gates.CanEdit)
	assert.False(t, gates.CanGenerateRound)

	gates, err = f.tournaments.Actions(ctx, players[0], tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.Gates{}, gates)

	_, err = f.tournaments.Actions(ctx, organizer, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
