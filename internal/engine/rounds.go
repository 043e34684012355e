package engine

import "github.com/AdamBeresnev/op-chess/internal/chess"

// RoundProgress is everything derived from a tournament's match list that
// decides whether play can move on.
type RoundProgress struct {
	CurrentRound         int  `json:"current_round"`
	MaxRounds            int  `json:"max_rounds"`
	CurrentRoundComplete bool `json:"current_round_complete"`
	HasReachedMaxRounds  bool `json:"has_reached_max_rounds"`
	CanGenerateNextRound bool `json:"can_generate_next_round"`
	IsCompleted          bool `json:"is_completed"`

	status           chess.TournamentStatus
	participantCount int
}

func EvaluateRounds(status chess.TournamentStatus, format chess.Format, participantCount int, matches []chess.Match) RoundProgress {
	p := RoundProgress{
		CurrentRound:     CurrentRound(matches),
		MaxRounds:        MaxRounds(format, participantCount),
		status:           status,
		participantCount: participantCount,
	}

	p.CurrentRoundComplete = true
	allDecided := true
	for _, m := range matches {
		if !m.Result.Pending() {
			continue
		}
		allDecided = false
		if m.Round == p.CurrentRound {
			p.CurrentRoundComplete = false
		}
	}

	if participantCount < 2 {
		return p
	}

	p.HasReachedMaxRounds = p.CurrentRound >= p.MaxRounds
	p.CanGenerateNextRound = status == chess.StatusOngoing && p.CurrentRoundComplete && !p.HasReachedMaxRounds
	p.IsCompleted = p.HasReachedMaxRounds && allDecided

	return p
}

// NextRoundError explains why CanGenerateNextRound is false.
func (p RoundProgress) NextRoundError() error {
	switch {
	case p.CanGenerateNextRound:
		return nil
	case p.participantCount < 2:
		return ErrNotEnoughParticipants
	case p.status != chess.StatusOngoing:
		return ErrTournamentNotOngoing
	case !p.CurrentRoundComplete:
		return ErrPendingResults
	default:
		return ErrMaxRoundsReached
	}
}

func CurrentRound(matches []chess.Match) int {
	current := 0
	for _, m := range matches {
		if m.Round > current {
			current = m.Round
		}
	}
	return current
}

// MatchesInRound keeps the input order.
func MatchesInRound(matches []chess.Match, round int) []chess.Match {
	var out []chess.Match
	for _, m := range matches {
		if m.Round == round {
			out = append(out, m)
		}
	}
	return out
}
