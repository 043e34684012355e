package chess

import (
	"time"

	"github.com/google/uuid"
)

type MatchResult string

const (
	ResultNotStarted MatchResult = "not_started"
	ResultOngoing    MatchResult = "ongoing"
	ResultWhiteWins  MatchResult = "white_wins"
	ResultBlackWins  MatchResult = "black_wins"
	ResultDraw       MatchResult = "draw"
)

func (r MatchResult) Valid() bool {
	switch r {
	case ResultNotStarted, ResultOngoing, ResultWhiteWins, ResultBlackWins, ResultDraw:
		return true
	}
	return false
}

// Pending results are the ones that do not count towards standings yet.
func (r MatchResult) Pending() bool {
	return r == ResultNotStarted || r == ResultOngoing
}

// DeletedPlayerID stands in for a player whose account no longer exists.
// Matches keep pointing at it so historical results still add up.
var DeletedPlayerID = uuid.MustParse("00000000-0000-0000-0000-00000000dead")

type Match struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	TournamentID uuid.UUID   `db:"tournament_id" json:"tournament_id"`
	Round        int         `db:"round" json:"round"`
	Board        int         `db:"board" json:"board"`
	WhiteID      uuid.UUID   `db:"white_id" json:"white_id"`
	BlackID      uuid.UUID   `db:"black_id" json:"black_id"`
	Result       MatchResult `db:"result" json:"result"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
}

func (m *Match) Involves(playerID uuid.UUID) bool {
	return m.WhiteID == playerID || m.BlackID == playerID
}

// WinnerID returns the winner of a decided, non-drawn match.
func (m *Match) WinnerID() (uuid.UUID, bool) {
	switch m.Result {
	case ResultWhiteWins:
		return m.WhiteID, true
	case ResultBlackWins:
		return m.BlackID, true
	}
	return uuid.Nil, false
}
