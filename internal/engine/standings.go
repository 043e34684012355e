package engine

import (
	"fmt"
	"sort"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/google/uuid"
)

const deletedPlayerName = "Deleted player"

// PlayerInfo is the part of a player record the standings table shows.
type PlayerInfo struct {
	Name    string
	Rating  int
	Removed bool
}

type PlayerStanding struct {
	Rank        int       `json:"rank"`
	PlayerID    uuid.UUID `json:"player_id"`
	DisplayName string    `json:"display_name"`
	Rating      int       `json:"rating"`
	Points      float64   `json:"points"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	Draws       int       `json:"draws"`
	GamesPlayed int       `json:"games_played"`
}

// ComputeStandings aggregates every decided match into a table ordered by
// points, then wins. Players level on both share a rank and are listed by id.
// players may be nil or incomplete.
func ComputeStandings(matches []chess.Match, players map[uuid.UUID]PlayerInfo) []PlayerStanding {
	index := make(map[uuid.UUID]*PlayerStanding)
	entry := func(id uuid.UUID) *PlayerStanding {
		s, ok := index[id]
		if !ok {
			s = &PlayerStanding{PlayerID: id}
			index[id] = s
		}
		return s
	}

	for _, m := range matches {
		white := entry(m.WhiteID)
		black := entry(m.BlackID)
		if m.Result.Pending() {
			continue
		}

		white.GamesPlayed++
		black.GamesPlayed++

		switch m.Result {
		case chess.ResultWhiteWins:
			white.Points++
			white.Wins++
			black.Losses++
		case chess.ResultBlackWins:
			black.Points++
			black.Wins++
			white.Losses++
		case chess.ResultDraw:
			white.Points += 0.5
			white.Draws++
			black.Points += 0.5
			black.Draws++
		}
	}

	standings := make([]PlayerStanding, 0, len(index))
	for id, s := range index {
		s.DisplayName, s.Rating = DisplayPlayer(id, players)
		standings = append(standings, *s)
	}

	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return a.PlayerID.String() < b.PlayerID.String()
	})

	for i := range standings {
		if i > 0 && standings[i].Points == standings[i-1].Points && standings[i].Wins == standings[i-1].Wins {
			standings[i].Rank = standings[i-1].Rank
			continue
		}
		standings[i].Rank = i + 1
	}

	return standings
}

// DisplayPlayer resolves the name and rating shown for id.
func DisplayPlayer(id uuid.UUID, players map[uuid.UUID]PlayerInfo) (string, int) {
	if id == chess.DeletedPlayerID {
		return deletedPlayerName, 0
	}
	info, ok := players[id]
	switch {
	case !ok:
		return fmt.Sprintf("Player %s", id), 0
	case info.Removed:
		return fmt.Sprintf("Player %s (removed)", id), info.Rating
	default:
		return info.Name, info.Rating
	}
}
