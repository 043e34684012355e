package chess

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	StatusUpcoming  TournamentStatus = "upcoming"
	StatusOngoing   TournamentStatus = "ongoing"
	StatusFinished  TournamentStatus = "finished"
	StatusCancelled TournamentStatus = "cancelled"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusFinished, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses are never changed by date-based recomputation.
func (s TournamentStatus) Terminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

type Format string

const (
	Swiss       Format = "swiss"
	RoundRobin  Format = "round_robin"
	Elimination Format = "elimination"
)

func (f Format) Valid() bool {
	switch f {
	case Swiss, RoundRobin, Elimination:
		return true
	}
	return false
}

type Tournament struct {
	ID                   uuid.UUID        `db:"id" json:"id"`
	OrganizerID          uuid.UUID        `db:"organizer_id" json:"organizer_id"`
	Name                 string           `db:"name" json:"name"`
	Description          *string          `db:"description" json:"description,omitempty"`
	Location             string           `db:"location" json:"location"`
	StartDate            time.Time        `db:"start_date" json:"start_date"`
	EndDate              time.Time        `db:"end_date" json:"end_date"`
	RegistrationDeadline *time.Time       `db:"registration_deadline" json:"registration_deadline,omitempty"`
	MaxParticipants      int              `db:"max_participants" json:"max_participants"`
	Format               Format           `db:"format" json:"format"`
	Status               TournamentStatus `db:"status" json:"status"`
	CreatedAt            time.Time        `db:"created_at" json:"created_at"`
}

// RegistrationClosed reports whether the deadline, if any, has passed at now.
func (t *Tournament) RegistrationClosed(now time.Time) bool {
	return t.RegistrationDeadline != nil && !now.Before(*t.RegistrationDeadline)
}

// IsFull reports whether count inscriptions exhaust the capacity. Zero capacity means unlimited.
func (t *Tournament) IsFull(count int) bool {
	return t.MaxParticipants > 0 && count >= t.MaxParticipants
}
