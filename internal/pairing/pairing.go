// Package pairing decides who plays whom in the next round of a tournament.
package pairing

import (
	"errors"
	"fmt"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/google/uuid"
)

var (
	ErrNotEnoughPlayers = errors.New("pairing needs at least 2 players")
	ErrRoundOutOfRange  = errors.New("no pairings exist for this round")
	ErrUnknownFormat    = errors.New("unknown tournament format")
)

// Generator produces the matches of one round. players is in seed order,
// history holds every match already stored for the tournament.
type Generator interface {
	NextRound(format chess.Format, players []uuid.UUID, history []chess.Match, round int) ([]chess.Match, error)
}

// FormatGenerator dispatches to the pairing rules of each format.
type FormatGenerator struct{}

func NewGenerator() *FormatGenerator {
	return &FormatGenerator{}
}

func (g *FormatGenerator) NextRound(format chess.Format, players []uuid.UUID, history []chess.Match, round int) ([]chess.Match, error) {
	if len(players) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	if round < 1 {
		return nil, fmt.Errorf("round %d: %w", round, ErrRoundOutOfRange)
	}

	var pairs []pair
	var err error
	switch format {
	case chess.Swiss:
		pairs = swissPairs(players, history, round)
	case chess.RoundRobin:
		pairs, err = roundRobinPairs(players, round)
	case chess.Elimination:
		pairs, err = eliminationPairs(players, history, round)
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
	if err != nil {
		return nil, err
	}

	return toMatches(pairs, round), nil
}

type pair struct {
	white uuid.UUID
	black uuid.UUID
}

func toMatches(pairs []pair, round int) []chess.Match {
	matches := make([]chess.Match, 0, len(pairs))
	for i, p := range pairs {
		matches = append(matches, chess.Match{
			ID:      uuid.New(),
			Round:   round,
			Board:   i + 1,
			WhiteID: p.white,
			BlackID: p.black,
			Result:  chess.ResultNotStarted,
		})
	}
	return matches
}

type matchup [2]uuid.UUID

func key(a, b uuid.UUID) matchup {
	if a.String() > b.String() {
		a, b = b, a
	}
	return matchup{a, b}
}

// playedPairs indexes every pairing already in history, regardless of result.
func playedPairs(history []chess.Match) map[matchup]bool {
	played := make(map[matchup]bool, len(history))
	for _, m := range history {
		played[key(m.WhiteID, m.BlackID)] = true
	}
	return played
}
