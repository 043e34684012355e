package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/AdamBeresnev/op-chess/internal/engine"
	"github.com/AdamBeresnev/op-chess/internal/policy"
	"github.com/AdamBeresnev/op-chess/internal/store"
	"github.com/AdamBeresnev/op-chess/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	DefaultMaxParticipants = 16
	minParticipants        = 4
	maxParticipants        = 128
)

type TournamentService struct {
	base
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, users *store.UserStore, opts ...Option) *TournamentService {
	return &TournamentService{base: newBase(db, store, users, opts)}
}

type TournamentInput struct {
	Name                 string       `json:"name"`
	Description          string       `json:"description"`
	Location             string       `json:"location"`
	StartDate            time.Time    `json:"start_date"`
	EndDate              time.Time    `json:"end_date"`
	RegistrationDeadline *time.Time   `json:"registration_deadline,omitempty"`
	MaxParticipants      int          `json:"max_participants"`
	Format               chess.Format `json:"format"`
}

// normalize trims the input and fills in defaults before validation.
func (in *TournamentInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	if in.MaxParticipants == 0 {
		in.MaxParticipants = DefaultMaxParticipants
	}
	if in.Format == "" {
		in.Format = chess.Swiss
	}
}

func (in *TournamentInput) validate(participants int) error {
	v := validator{}
	n := utf8.RuneCountInString(in.Name)
	v.check(n >= 3 && n <= 100, "name", "must be between 3 and 100 characters")
	v.check(utf8.RuneCountInString(in.Description) <= 500, "description", "must be at most 500 characters")
	n = utf8.RuneCountInString(in.Location)
	v.check(n >= 3 && n <= 200, "location", "must be between 3 and 200 characters")
	v.check(!in.StartDate.IsZero(), "start_date", "is required")
	v.check(!in.EndDate.IsZero(), "end_date", "is required")
	v.check(in.StartDate.Before(in.EndDate), "end_date", "must be after the start date")
	if in.RegistrationDeadline != nil {
		v.check(in.RegistrationDeadline.Before(in.StartDate), "registration_deadline", "must be before the start date")
	}
	v.check(in.MaxParticipants >= minParticipants && in.MaxParticipants <= maxParticipants,
		"max_participants", fmt.Sprintf("must be between %d and %d", minParticipants, maxParticipants))
	v.check(in.MaxParticipants >= participants, "max_participants", "cannot be below the current number of participants")
	v.check(in.Format.Valid(), "format", "must be one of swiss, round_robin, elimination")
	return v.err()
}

func (in *TournamentInput) apply(t *chess.Tournament) {
	t.Name = in.Name
	t.Description = utils.StringOrNil(in.Description)
	t.Location = in.Location
	t.StartDate = in.StartDate.UTC()
	t.EndDate = in.EndDate.UTC()
	t.RegistrationDeadline = utils.UTC(in.RegistrationDeadline)
	t.MaxParticipants = in.MaxParticipants
	t.Format = in.Format
}

// TournamentDetail is a tournament with everything derived from its matches.
type TournamentDetail struct {
	Tournament       *chess.Tournament      `json:"tournament"`
	EffectiveStatus  chess.TournamentStatus `json:"effective_status"`
	ParticipantCount int                    `json:"participant_count"`
	Progress         engine.RoundProgress   `json:"progress"`
}

func detail(s *snapshot) *TournamentDetail {
	progress := s.Progress()
	return &TournamentDetail{
		Tournament:       s.Tournament,
		EffectiveStatus:  engine.EffectiveStatus(s.Tournament.Status, progress),
		ParticipantCount: s.ParticipantCount,
		Progress:         progress,
	}
}

func (s *TournamentService) Create(ctx context.Context, actor policy.Actor, in TournamentInput) (*chess.Tournament, error) {
	if !actor.Can(policy.CreateTournaments) {
		return nil, engine.ErrForbidden
	}

	in.normalize()
	if err := in.validate(0); err != nil {
		return nil, err
	}

	tournament := &chess.Tournament{
		ID:          uuid.New(),
		OrganizerID: actor.ID,
		Status:      chess.StatusUpcoming,
		CreatedAt:   s.now().UTC(),
	}
	in.apply(tournament)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("tournament created", "tournament_id", tournament.ID, "organizer_id", actor.ID)
	return tournament, nil
}

func (s *TournamentService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, in TournamentInput) (*chess.Tournament, error) {
	snap, err := s.loadSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := engine.CheckEdit(actor, snap.Snapshot); err != nil {
		return nil, err
	}

	in.normalize()
	if err := in.validate(snap.ParticipantCount); err != nil {
		return nil, err
	}

	tournament := *snap.Tournament
	in.apply(&tournament)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.UpdateTournament(ctx, tx, &tournament); err != nil {
		return nil, fmt.Errorf("failed to update tournament: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.notifier.Publish(Event{Type: EventTournamentUpdated, TournamentID: id})
	return &tournament, nil
}

func (s *TournamentService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	snap, err := s.loadSnapshot(ctx, id)
	if err != nil {
		return err
	}
	if err := engine.CheckDelete(actor, snap.Snapshot); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.store.DeleteTournament(ctx, tx, id); err != nil {
		return fmt.Errorf("failed to delete tournament: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("tournament deleted", "tournament_id", id, "actor_id", actor.ID)
	s.notifier.Publish(Event{Type: EventTournamentDeleted, TournamentID: id})
	return nil
}

func (s *TournamentService) Get(ctx context.Context, id uuid.UUID) (*TournamentDetail, error) {
	snap, err := s.loadSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return detail(snap), nil
}

// List brings date-driven statuses up to date before reading.
func (s *TournamentService) List(ctx context.Context, filter store.TournamentFilter) ([]chess.Tournament, error) {
	if _, err := s.SyncStatuses(ctx); err != nil {
		slog.Warn("status sync before list failed", "error", err)
	}
	tournaments, err := s.store.ListTournaments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

// SyncStatuses applies the calendar to every upcoming or ongoing tournament
// and returns how many changed. Tournaments with paired rounds never go back
// to upcoming.
func (s *TournamentService) SyncStatuses(ctx context.Context) (int, error) {
	active, err := s.store.ListActiveTournaments(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active tournaments: %w", err)
	}

	now := s.now()
	type change struct {
		id       uuid.UUID
		from, to chess.TournamentStatus
	}
	var changes []change
	for i := range active {
		status, changed := engine.RecomputeStatus(&active[i], now)
		if !changed {
			continue
		}
		if status == chess.StatusUpcoming {
			// An early start already paired round 1; the calendar cannot undo that.
			matches, err := s.store.GetMatches(ctx, active[i].ID)
			if err != nil {
				return 0, fmt.Errorf("failed to get matches of %s: %w", active[i].ID, err)
			}
			if len(matches) > 0 {
				continue
			}
		}
		changes = append(changes, change{id: active[i].ID, from: active[i].Status, to: status})
	}
	if len(changes) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, c := range changes {
		if err := s.store.UpdateTournamentStatus(ctx, tx, c.id, c.to); err != nil {
			return 0, fmt.Errorf("failed to update status of %s: %w", c.id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	for _, c := range changes {
		slog.Info("tournament status synced", "tournament_id", c.id, "from", c.from, "to", c.to)
		s.recorder.StatusChanged(c.from, c.to)
		s.notifier.Publish(Event{Type: EventStatusChanged, TournamentID: c.id, Status: c.to})
	}
	return len(changes), nil
}

// Start opens play and pairs round 1 in the same transaction.
func (s *TournamentService) Start(ctx context.Context, actor policy.Actor, id uuid.UUID) (*TournamentDetail, error) {
	snap, err := s.loadSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	status, err := engine.Start(actor, snap.Tournament, snap.ParticipantCount, snap.Progress())
	if err != nil {
		return nil, err
	}

	players, err := s.seedOrder(ctx, snap)
	if err != nil {
		return nil, err
	}
	round, err := s.pairer.NextRound(snap.Tournament.Format, players, nil, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to pair round 1: %w", err)
	}
	now := s.now().UTC()
	for i := range round {
		round[i].TournamentID = id
		round[i].CreatedAt = now
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.UpdateTournamentStatus(ctx, tx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update tournament status: %w", err)
	}
	if err := s.store.CreateMatches(ctx, tx, round); err != nil {
		return nil, fmt.Errorf("failed to create round 1: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	from := snap.Tournament.Status
	snap.Tournament.Status = status
	snap.Matches = append(snap.Matches, round...)

	slog.Info("tournament started", "tournament_id", id, "players", len(players), "boards", len(round))
	s.recorder.StatusChanged(from, status)
	s.recorder.RoundGenerated(snap.Tournament.Format)
	s.notifier.Publish(Event{Type: EventStatusChanged, TournamentID: id, Status: status, Round: 1})
	return detail(snap), nil
}

func (s *TournamentService) Finish(ctx context.Context, actor policy.Actor, id uuid.UUID) (*TournamentDetail, error) {
	return s.transition(ctx, id, func(snap *snapshot) (chess.TournamentStatus, error) {
		return engine.Finish(actor, snap.Tournament)
	})
}

func (s *TournamentService) Cancel(ctx context.Context, actor policy.Actor, id uuid.UUID) (*TournamentDetail, error) {
	return s.transition(ctx, id, func(snap *snapshot) (chess.TournamentStatus, error) {
		return engine.Cancel(actor, snap.Tournament, snap.Progress())
	})
}

func (s *TournamentService) transition(ctx context.Context, id uuid.UUID, decide func(*snapshot) (chess.TournamentStatus, error)) (*TournamentDetail, error) {
	snap, err := s.loadSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	status, err := decide(snap)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.UpdateTournamentStatus(ctx, tx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update tournament status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	from := snap.Tournament.Status
	snap.Tournament.Status = status

	slog.Info("tournament status changed", "tournament_id", id, "from", from, "to", status)
	s.recorder.StatusChanged(from, status)
	s.notifier.Publish(Event{Type: EventStatusChanged, TournamentID: id, Status: status})
	return detail(snap), nil
}

func (s *TournamentService) Standings(ctx context.Context, id uuid.UUID) ([]engine.PlayerStanding, error) {
	snap, err := s.loadSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	info, err := s.playerInfo(ctx, snap)
	if err != nil {
		return nil, err
	}
	return engine.ComputeStandings(snap.Matches, info), nil
}

// Actions reports which organizer actions actor may take right now.
func (s *TournamentService) Actions(ctx context.Context, actor policy.Actor, id uuid.UUID) (engine.Gates, error) {
	snap, err := s.loadSnapshot(ctx, id)
	if err != nil {
		return engine.Gates{}, err
	}
	return engine.EvaluateGates(actor, snap.Snapshot), nil
}
