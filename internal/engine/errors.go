package engine

import "errors"

var (
	ErrForbidden = errors.New("operation not allowed for the current user")

	ErrNotEnoughParticipants = errors.New("at least 2 participants are required")
	ErrPendingResults        = errors.New("current round still has pending results")
	ErrMaxRoundsReached      = errors.New("tournament has reached its maximum number of rounds")
	ErrTournamentNotOngoing  = errors.New("tournament is not ongoing")
	ErrTournamentCompleted   = errors.New("tournament has already completed all rounds")
	ErrInvalidTransition     = errors.New("invalid tournament status transition")
	ErrTournamentLocked      = errors.New("tournament cannot be changed in its current status")
)
