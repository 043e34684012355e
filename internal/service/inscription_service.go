package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/AdamBeresnev/op-chess/internal/engine"
	"github.com/AdamBeresnev/op-chess/internal/policy"
	"github.com/AdamBeresnev/op-chess/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type InscriptionService struct {
	base
}

func NewInscriptionService(db *sqlx.DB, store *store.TournamentStore, users *store.UserStore, opts ...Option) *InscriptionService {
	return &InscriptionService{base: newBase(db, store, users, opts)}
}

type Participant struct {
	PlayerID     uuid.UUID `json:"player_id"`
	DisplayName  string    `json:"display_name"`
	Rating       int       `json:"rating"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Join inscribes the actor into an upcoming tournament.
func (s *InscriptionService) Join(ctx context.Context, actor policy.Actor, tournamentID uuid.UUID) (*chess.Inscription, error) {
	if !actor.Can(policy.JoinTournaments) {
		return nil, engine.ErrForbidden
	}
	user, err := s.users.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if user.Deleted() {
		return nil, ErrAccountDeleted
	}

	snap, err := s.loadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	switch {
	case snap.EffectiveStatus() != chess.StatusUpcoming, snap.Tournament.RegistrationClosed(now):
		return nil, ErrRegistrationClosed
	case snap.registered(actor.ID):
		return nil, ErrAlreadyRegistered
	case snap.Tournament.IsFull(snap.ParticipantCount):
		return nil, ErrTournamentFull
	}

	inscription := &chess.Inscription{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		PlayerID:     actor.ID,
		RegisteredAt: now.UTC(),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateInscription(ctx, tx, inscription); err != nil {
		return nil, fmt.Errorf("failed to create inscription: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.changed(tournamentID, "join")
	return inscription, nil
}

// Leave withdraws the actor's own inscription while the tournament is upcoming.
func (s *InscriptionService) Leave(ctx context.Context, actor policy.Actor, tournamentID uuid.UUID) error {
	if actor.Anonymous() {
		return engine.ErrForbidden
	}
	snap, err := s.loadSnapshot(ctx, tournamentID)
	if err != nil {
		return err
	}
	if !snap.registered(actor.ID) {
		return ErrNotRegistered
	}
	if snap.EffectiveStatus() != chess.StatusUpcoming {
		return engine.ErrTournamentLocked
	}
	if err := s.delete(ctx, tournamentID, actor.ID); err != nil {
		return err
	}
	s.changed(tournamentID, "leave")
	return nil
}

// Remove lets the organizer drop a player's inscription.
func (s *InscriptionService) Remove(ctx context.Context, actor policy.Actor, tournamentID, playerID uuid.UUID) error {
	snap, err := s.loadSnapshot(ctx, tournamentID)
	if err != nil {
		return err
	}
	if err := engine.CheckManageInscriptions(actor, snap.Snapshot); err != nil {
		return err
	}
	if !snap.registered(playerID) {
		return ErrNotRegistered
	}
	if err := s.delete(ctx, tournamentID, playerID); err != nil {
		return err
	}
	s.changed(tournamentID, "remove")
	return nil
}

func (s *InscriptionService) delete(ctx context.Context, tournamentID, playerID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.store.DeleteInscription(ctx, tx, tournamentID, playerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotRegistered
		}
		return fmt.Errorf("failed to delete inscription: %w", err)
	}
	return tx.Commit()
}

func (s *InscriptionService) changed(tournamentID uuid.UUID, op string) {
	s.recorder.InscriptionChanged(op)
	s.notifier.Publish(Event{Type: EventInscriptionsChanged, TournamentID: tournamentID})
}

// List returns the participants in registration order.
func (s *InscriptionService) List(ctx context.Context, tournamentID uuid.UUID) ([]Participant, error) {
	snap, err := s.loadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	info, err := s.playerInfo(ctx, snap)
	if err != nil {
		return nil, err
	}

	participants := make([]Participant, 0, len(snap.Inscriptions))
	for _, i := range snap.Inscriptions {
		name, rating := engine.DisplayPlayer(i.PlayerID, info)
		participants = append(participants, Participant{
			PlayerID:     i.PlayerID,
			DisplayName:  name,
			Rating:       rating,
			RegisteredAt: i.RegisteredAt,
		})
	}
	return participants, nil
}

func (s *InscriptionService) ListByPlayer(ctx context.Context, playerID uuid.UUID) ([]chess.Inscription, error) {
	inscriptions, err := s.store.GetInscriptionsByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inscriptions: %w", err)
	}
	return inscriptions, nil
}
