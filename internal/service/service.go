package service

import (
	"time"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/AdamBeresnev/op-chess/internal/pairing"
	"github.com/AdamBeresnev/op-chess/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type EventType string

const (
	EventTournamentUpdated   EventType = "tournament_updated"
	EventTournamentDeleted   EventType = "tournament_deleted"
	EventStatusChanged       EventType = "status_changed"
	EventRoundGenerated      EventType = "round_generated"
	EventResultRecorded      EventType = "result_recorded"
	EventInscriptionsChanged EventType = "inscriptions_changed"
)

// Event tells clients watching a tournament that they should re-fetch it.
type Event struct {
	Type         EventType              `json:"type"`
	TournamentID uuid.UUID              `json:"tournament_id"`
	Status       chess.TournamentStatus `json:"status,omitempty"`
	Round        int                    `json:"round,omitempty"`
}

type Notifier interface {
	Publish(Event)
}

// Recorder counts domain activity.
type Recorder interface {
	StatusChanged(from, to chess.TournamentStatus)
	RoundGenerated(format chess.Format)
	ResultRecorded(result chess.MatchResult)
	InscriptionChanged(op string)
}

type nopNotifier struct{}

func (nopNotifier) Publish(Event) {}

type nopRecorder struct{}

func (nopRecorder) StatusChanged(chess.TournamentStatus, chess.TournamentStatus) {}
func (nopRecorder) RoundGenerated(chess.Format) {}
func (nopRecorder) ResultRecorded(chess.MatchResult) {}
func (nopRecorder) InscriptionChanged(string) {}

type Option func(*base)

func WithNotifier(n Notifier) Option {
	return func(b *base) { b.notifier = n }
}

func WithRecorder(r Recorder) Option {
	return func(b *base) { b.recorder = r }
}

func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

func WithGenerator(g pairing.Generator) Option {
	return func(b *base) { b.pairer = g }
}

// base holds what every tournament-facing service shares.
type base struct {
	db       *sqlx.DB
	store    *store.TournamentStore
	users    *store.UserStore
	pairer   pairing.Generator
	notifier Notifier
	recorder Recorder
	now      func() time.Time
}

func newBase(db *sqlx.DB, store *store.TournamentStore, users *store.UserStore, opts []Option) base {
	b := base{
		db:       db,
		store:    store,
		users:    users,
		pairer:   pairing.NewGenerator(),
		notifier: nopNotifier{},
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}
