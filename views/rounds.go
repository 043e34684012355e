package views

import (
	"sort"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/AdamBeresnev/op-chess/internal/engine"
	"github.com/google/uuid"
)

type Side struct {
	PlayerID    uuid.UUID `json:"player_id"`
	DisplayName string    `json:"display_name"`
	Rating      int       `json:"rating"`
}

type MatchRow struct {
	ID       uuid.UUID         `json:"id"`
	Board    int               `json:"board"`
	White    Side              `json:"white"`
	Black    Side              `json:"black"`
	Result   chess.MatchResult `json:"result"`
	Notation string            `json:"notation"`
	Phase    Phase             `json:"phase"`
}

type Round struct {
	Number  int        `json:"number"`
	Phase   Phase      `json:"phase"`
	Matches []MatchRow `json:"matches"`
}

// GroupRounds lays matches out round by round, each round ordered by board.
func GroupRounds(matches []chess.Match, players map[uuid.UUID]engine.PlayerInfo) []Round {
	byRound := make(map[int][]chess.Match)
	var roundNums []int
	for _, m := range matches {
		if _, exists := byRound[m.Round]; !exists {
			roundNums = append(roundNums, m.Round)
		}
		byRound[m.Round] = append(byRound[m.Round], m)
	}
	sort.Ints(roundNums)

	rounds := make([]Round, 0, len(roundNums))
	for _, n := range roundNums {
		ms := byRound[n]
		sort.Slice(ms, func(i, j int) bool { return ms[i].Board < ms[j].Board })

		round := Round{Number: n, Matches: make([]MatchRow, 0, len(ms))}
		for _, m := range ms {
			round.Matches = append(round.Matches, MatchRow{
				ID:       m.ID,
				Board:    m.Board,
				White:    side(m.WhiteID, players),
				Black:    side(m.BlackID, players),
				Result:   m.Result,
				Notation: ResultNotation(m.Result),
				Phase:    MatchPhase(m.Result),
			})
		}
		round.Phase = roundPhase(round.Matches)
		rounds = append(rounds, round)
	}
	return rounds
}

func side(id uuid.UUID, players map[uuid.UUID]engine.PlayerInfo) Side {
	name, rating := engine.DisplayPlayer(id, players)
	return Side{PlayerID: id, DisplayName: name, Rating: rating}
}

// roundPhase is pending until a game starts and completed once all are decided.
func roundPhase(rows []MatchRow) Phase {
	pending, completed := 0, 0
	for _, r := range rows {
		switch r.Phase {
		case PhasePending:
			pending++
		case PhaseCompleted:
			completed++
		}
	}
	switch {
	case completed == len(rows):
		return PhaseCompleted
	case pending == len(rows):
		return PhasePending
	default:
		return PhaseInProgress
	}
}
