package engine

import (
	"testing"
	"time"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/AdamBeresnev/op-chess/internal/policy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func newTournament(status chess.TournamentStatus) (*chess.Tournament, policy.Actor) {
	owner := policy.Actor{ID: uuid.New(), Role: policy.RolePlayer}
	return &chess.Tournament{
		ID:          uuid.New(),
		OrganizerID: owner.ID,
		Name:        "Spring Open",
		StartDate:   day(2026, time.March, 10, 9),
		EndDate:     day(2026, time.March, 12, 18),
		Format:      chess.Swiss,
		Status:      status,
	}, owner
}

func TestStatusForDate(t *testing.T) {
	start := day(2026, time.March, 10, 9)
	end := day(2026, time.March, 12, 18)

	testCases := []struct {
		name     string
		now      time.Time
		expected chess.TournamentStatus
	}{
		{"day before start", day(2026, time.March, 9, 23), chess.StatusUpcoming},
		{"start day before start time", day(2026, time.March, 10, 1), chess.StatusOngoing},
		{"middle day", day(2026, time.March, 11, 12), chess.StatusOngoing},
		{"end day after end time", day(2026, time.March, 12, 23), chess.StatusOngoing},
		{"day after end", day(2026, time.March, 13, 0), chess.StatusFinished},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StatusForDate(tc.now, start, end))
		})
	}
}

func TestRecomputeStatus(t *testing.T) {
	after := day(2026, time.April, 1, 12)
	during := day(2026, time.March, 11, 12)

	tour, _ := newTournament(chess.StatusUpcoming)
	status, changed := RecomputeStatus(tour, during)
	assert.True(t, changed)
	assert.Equal(t, chess.StatusOngoing, status)

	tour.Status = chess.StatusOngoing
	status, changed = RecomputeStatus(tour, during)
	assert.False(t, changed)
	assert.Equal(t, chess.StatusOngoing, status)

	for _, terminal := range []chess.TournamentStatus{chess.StatusFinished, chess.StatusCancelled} {
		tour.Status = terminal
		for _, now := range []time.Time{during, after, day(2026, time.January, 1, 0)} {
			status, changed = RecomputeStatus(tour, now)
			assert.False(t, changed)
			assert.Equal(t, terminal, status)
		}
	}
}

func TestEffectiveStatus(t *testing.T) {
	done := RoundProgress{IsCompleted: true}
	open := RoundProgress{}

	assert.Equal(t, chess.StatusFinished, EffectiveStatus(chess.StatusOngoing, done))
	assert.Equal(t, chess.StatusOngoing, EffectiveStatus(chess.StatusOngoing, open))
	assert.Equal(t, chess.StatusUpcoming, EffectiveStatus(chess.StatusUpcoming, done))
	assert.Equal(t, chess.StatusCancelled, EffectiveStatus(chess.StatusCancelled, done))
}

func TestStart(t *testing.T) {
	tour, owner := newTournament(chess.StatusUpcoming)
	stranger := policy.Actor{ID: uuid.New(), Role: policy.RolePlayer}
	admin := policy.Actor{ID: uuid.New(), Role: policy.RoleAdmin}

	_, err := Start(stranger, tour, 4, RoundProgress{})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = Start(policy.Actor{}, tour, 4, RoundProgress{})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = Start(owner, tour, 1, RoundProgress{})
	assert.ErrorIs(t, err, ErrNotEnoughParticipants)

	status, err := Start(owner, tour, 2, RoundProgress{})
	require.NoError(t, err)
	assert.Equal(t, chess.StatusOngoing, status)

	status, err = Start(admin, tour, 8, RoundProgress{})
	require.NoError(t, err)
	assert.Equal(t, chess.StatusOngoing, status)

	for _, s := range []chess.TournamentStatus{chess.StatusOngoing, chess.StatusFinished, chess.StatusCancelled} {
		tour.Status = s
		_, err = Start(owner, tour, 8, RoundProgress{})
		assert.ErrorIs(t, err, ErrInvalidTransition, "from %s", s)
	}
}

func TestStart_RefusesAlreadyPairedTournament(t *testing.T) {
	tour, owner := newTournament(chess.StatusUpcoming)
	players := newPlayers(4)
	paired := []chess.Match{
		match(1, players[0], players[1], chess.ResultNotStarted),
		match(1, players[2], players[3], chess.ResultNotStarted),
	}
	progress := EvaluateRounds(tour.Status, tour.Format, len(players), paired)

	_, err := Start(owner, tour, len(players), progress)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	err = CheckStart(owner, Snapshot{Tournament: tour, ParticipantCount: len(players), Matches: paired})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestFinish(t *testing.T) {
	tour, owner := newTournament(chess.StatusOngoing)

	_, err := Finish(policy.Actor{ID: uuid.New(), Role: policy.RolePlayer}, tour)
	assert.ErrorIs(t, err, ErrForbidden)

	status, err := Finish(owner, tour)
	require.NoError(t, err)
	assert.Equal(t, chess.StatusFinished, status)

	tour.Status = chess.StatusUpcoming
	_, err = Finish(owner, tour)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancel(t *testing.T) {
	tour, owner := newTournament(chess.StatusUpcoming)

	status, err := Cancel(owner, tour, RoundProgress{})
	require.NoError(t, err)
	assert.Equal(t, chess.StatusCancelled, status)

	tour.Status = chess.StatusOngoing
	status, err = Cancel(owner, tour, RoundProgress{})
	require.NoError(t, err)
	assert.Equal(t, chess.StatusCancelled, status)

	_, err = Cancel(owner, tour, RoundProgress{IsCompleted: true})
	assert.ErrorIs(t, err, ErrInvalidTransition, "a completed ongoing tournament counts as finished")

	for _, s := range []chess.TournamentStatus{chess.StatusFinished, chess.StatusCancelled} {
		tour.Status = s
		_, err = Cancel(owner, tour, RoundProgress{})
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}

	_, err = Cancel(policy.Actor{ID: uuid.New(), Role: policy.RolePlayer}, tour, RoundProgress{})
	assert.ErrorIs(t, err, ErrForbidden)
}
