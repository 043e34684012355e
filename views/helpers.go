package views

import "github.com/AdamBeresnev/op-chess/internal/chess"

type Phase string

const (
	PhasePending    Phase = "pending"
	PhaseInProgress Phase = "in-progress"
	PhaseCompleted  Phase = "completed"
)

// ResultNotation renders a result the way a scoresheet does.
func ResultNotation(r chess.MatchResult) string {
	switch r {
	case chess.ResultWhiteWins:
		return "1-0"
	case chess.ResultBlackWins:
		return "0-1"
	case chess.ResultDraw:
		return "½-½"
	default:
		return "-"
	}
}

func MatchPhase(r chess.MatchResult) Phase {
	switch r {
	case chess.ResultNotStarted:
		return PhasePending
	case chess.ResultOngoing:
		return PhaseInProgress
	default:
		return PhaseCompleted
	}
}
