package engine

import (
	"time"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/AdamBeresnev/op-chess/internal/policy"
)

// StatusForDate suggests a status from the calendar dates alone, ignoring time of day.
func StatusForDate(now, start, end time.Time) chess.TournamentStatus {
	today := truncateDay(now, now.Location())
	startDay := truncateDay(start, now.Location())
	endDay := truncateDay(end, now.Location())

	switch {
	case today.Before(startDay):
		return chess.StatusUpcoming
	case today.After(endDay):
		return chess.StatusFinished
	default:
		return chess.StatusOngoing
	}
}

func truncateDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// RecomputeStatus applies the date suggestion to a stored status. Finished and
// cancelled tournaments are left alone so an early finish is never reverted.
func RecomputeStatus(t *chess.Tournament, now time.Time) (chess.TournamentStatus, bool) {
	if t.Status.Terminal() {
		return t.Status, false
	}
	suggested := StatusForDate(now, t.StartDate, t.EndDate)
	return suggested, suggested != t.Status
}

// EffectiveStatus is the status every gate works from: an ongoing tournament
// whose rounds are all played counts as finished before anyone persists it.
func EffectiveStatus(stored chess.TournamentStatus, progress RoundProgress) chess.TournamentStatus {
	if stored == chess.StatusOngoing && progress.IsCompleted {
		return chess.StatusFinished
	}
	return stored
}

// Start moves an upcoming tournament to ongoing. Pairing round 1 is up to the caller.
// A tournament that already has round 1 paired cannot be started again, even if
// its stored status went back to upcoming.
func Start(actor policy.Actor, t *chess.Tournament, participantCount int, progress RoundProgress) (chess.TournamentStatus, error) {
	if !policy.CanPerform(actor, t.OrganizerID, policy.ActionStart) {
		return t.Status, ErrForbidden
	}
	if t.Status != chess.StatusUpcoming || progress.CurrentRound > 0 {
		return t.Status, ErrInvalidTransition
	}
	if participantCount < 2 {
		return t.Status, ErrNotEnoughParticipants
	}
	return chess.StatusOngoing, nil
}

func Finish(actor policy.Actor, t *chess.Tournament) (chess.TournamentStatus, error) {
	if !policy.CanPerform(actor, t.OrganizerID, policy.ActionFinish) {
		return t.Status, ErrForbidden
	}
	if t.Status != chess.StatusOngoing {
		return t.Status, ErrInvalidTransition
	}
	return chess.StatusFinished, nil
}

func Cancel(actor policy.Actor, t *chess.Tournament, progress RoundProgress) (chess.TournamentStatus, error) {
	if !policy.CanPerform(actor, t.OrganizerID, policy.ActionCancel) {
		return t.Status, ErrForbidden
	}
	switch EffectiveStatus(t.Status, progress) {
	case chess.StatusUpcoming, chess.StatusOngoing:
		return chess.StatusCancelled, nil
	}
	return t.Status, ErrInvalidTransition
}
