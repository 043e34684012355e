package views

import (
	"testing"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/AdamBeresnev/op-chess/internal/engine"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultNotation(t *testing.T) {
	testCases := []struct {
		result   chess.MatchResult
		notation string
		phase    Phase
	}{
		{chess.ResultWhiteWins, "1-0", PhaseCompleted},
		{chess.ResultBlackWins, "0-1", PhaseCompleted},
		{chess.ResultDraw, "½-½", PhaseCompleted},
		{chess.ResultOngoing, "-", PhaseInProgress},
		{chess.ResultNotStarted, "-", PhasePending},
	}

	for _, tc := range testCases {
		t.Run(string(tc.result), func(t *testing.T) {
			assert.Equal(t, tc.notation, ResultNotation(tc.result))
			assert.Equal(t, tc.phase, MatchPhase(tc.result))
		})
	}
}

func TestGroupRounds(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	players := map[uuid.UUID]engine.PlayerInfo{
		a: {Name: "Anand", Rating: 2750},
		b: {Name: "Botvinnik", Rating: 2600},
		c: {Name: "Carlsen", Rating: 2850, Removed: true},
	}

	matches := []chess.Match{
		{ID: uuid.New(), Round: 2, Board: 2, WhiteID: d, BlackID: a, Result: chess.ResultNotStarted},
		{ID: uuid.New(), Round: 1, Board: 2, WhiteID: c, BlackID: d, Result: chess.ResultDraw},
		{ID: uuid.New(), Round: 2, Board: 1, WhiteID: b, BlackID: c, Result: chess.ResultOngoing},
		{ID: uuid.New(), Round: 1, Board: 1, WhiteID: a, BlackID: b, Result: chess.ResultWhiteWins},
	}

	rounds := GroupRounds(matches, players)
	require.Len(t, rounds, 2)

	first := rounds[0]
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, PhaseCompleted, first.Phase)
	require.Len(t, first.Matches, 2)
	assert.Equal(t, 1, first.Matches[0].Board)
	assert.Equal(t, "Anand", first.Matches[0].White.DisplayName)
	assert.Equal(t, 2750, first.Matches[0].White.Rating)
	assert.Equal(t, "1-0", first.Matches[0].Notation)
	assert.Equal(t, "½-½", first.Matches[1].Notation)
	assert.Contains(t, first.Matches[1].White.DisplayName, "(removed)")
	assert.Equal(t, "Player "+d.String(), first.Matches[1].Black.DisplayName)

	second := rounds[1]
	assert.Equal(t, 2, second.Number)
	assert.Equal(t, PhaseInProgress, second.Phase)
	assert.Equal(t, []int{1, 2}, []int{second.Matches[0].Board, second.Matches[1].Board})
}

func TestGroupRounds_PendingRoundAndEmpty(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	rounds := GroupRounds([]chess.Match{
		{ID: uuid.New(), Round: 1, Board: 1, WhiteID: a, BlackID: chess.DeletedPlayerID, Result: chess.ResultNotStarted},
		{ID: uuid.New(), Round: 1, Board: 2, WhiteID: b, BlackID: a, Result: chess.ResultNotStarted},
	}, nil)

	require.Len(t, rounds, 1)
	assert.Equal(t, PhasePending, rounds[0].Phase)
	assert.Equal(t, "Deleted player", rounds[0].Matches[0].Black.DisplayName)

	assert.Empty(t, GroupRounds(nil, nil))
}
