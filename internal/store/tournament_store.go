package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

// TournamentFilter narrows ListTournaments. Zero values match everything.
type TournamentFilter struct {
	Status      chess.TournamentStatus
	OrganizerID uuid.UUID
}

const (
	createTournamentQuery = `
		INSERT INTO tournaments (id, organizer_id, name, description, location, start_date, end_date,
			registration_deadline, max_participants, format, status, created_at)
		VALUES (:id, :organizer_id, :name, :description, :location, :start_date, :end_date,
			:registration_deadline, :max_participants, :format, :status, :created_at)
	`
	updateTournamentQuery = `
		UPDATE tournaments SET
		name = :name,
		description = :description,
		location = :location,
		start_date = :start_date,
		end_date = :end_date,
		registration_deadline = :registration_deadline,
		max_participants = :max_participants,
		format = :format
		WHERE id = :id
	`
	createMatchQuery = `
		INSERT INTO matches (id, tournament_id, round, board, white_id, black_id, result, created_at)
		VALUES (:id, :tournament_id, :round, :board, :white_id, :black_id, :result, :created_at)
	`
	createInscriptionQuery = `
		INSERT INTO inscriptions (id, tournament_id, player_id, registered_at)
		VALUES (:id, :tournament_id, :player_id, :registered_at)
	`
)

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *chess.Tournament) error {
	_, err := tx.NamedExecContext(ctx, createTournamentQuery, tournament)
	return err
}

func (s *TournamentStore) UpdateTournament(ctx context.Context, tx *sqlx.Tx, tournament *chess.Tournament) error {
	res, err := tx.NamedExecContext(ctx, updateTournamentQuery, tournament)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (s *TournamentStore) DeleteTournament(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM tournaments WHERE id = ?"), id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (s *TournamentStore) UpdateTournamentStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status chess.TournamentStatus) error {
	res, err := tx.ExecContext(ctx, tx.Rebind("UPDATE tournaments SET status = ? WHERE id = ?"), status, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*chess.Tournament, error) {
	var tournament chess.Tournament
	err := s.db.GetContext(ctx, &tournament, s.db.Rebind("SELECT * FROM tournaments WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) ListTournaments(ctx context.Context, filter TournamentFilter) ([]chess.Tournament, error) {
	query := "SELECT * FROM tournaments WHERE 1 = 1"
	var args []interface{}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}
	if filter.OrganizerID != uuid.Nil {
		query += " AND organizer_id = ?"
		args = append(args, filter.OrganizerID)
	}
	query += " ORDER BY start_date ASC, created_at DESC"

	tournaments := []chess.Tournament{}
	err := s.db.SelectContext(ctx, &tournaments, s.db.Rebind(query), args...)
	return tournaments, err
}

// ListActiveTournaments returns every tournament whose status may still change with the calendar.
func (s *TournamentStore) ListActiveTournaments(ctx context.Context) ([]chess.Tournament, error) {
	tournaments := []chess.Tournament{}
	query := s.db.Rebind("SELECT * FROM tournaments WHERE status IN (?, ?) ORDER BY start_date ASC")
	err := s.db.SelectContext(ctx, &tournaments, query, chess.StatusUpcoming, chess.StatusOngoing)
	return tournaments, err
}

func (s *TournamentStore) CreateMatches(ctx context.Context, tx *sqlx.Tx, matches []chess.Match) error {
	if len(matches) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, createMatchQuery, matches)
	return err
}

func (s *TournamentStore) GetMatches(ctx context.Context, tournamentID uuid.UUID) ([]chess.Match, error) {
	matches := []chess.Match{}
	err := s.db.SelectContext(ctx, &matches, s.db.Rebind("SELECT * FROM matches WHERE tournament_id = ? ORDER BY round ASC, board ASC"), tournamentID)
	return matches, err
}

func (s *TournamentStore) GetMatch(ctx context.Context, id uuid.UUID) (*chess.Match, error) {
	var match chess.Match
	err := s.db.GetContext(ctx, &match, s.db.Rebind("SELECT * FROM matches WHERE id = ?"), id)
	if err != nil {
		return nil, err
	}
	return &match, nil
}

func (s *TournamentStore) UpdateMatchResult(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, result chess.MatchResult) error {
	res, err := tx.ExecContext(ctx, tx.Rebind("UPDATE matches SET result = ? WHERE id = ?"), result, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (s *TournamentStore) CreateInscription(ctx context.Context, tx *sqlx.Tx, inscription *chess.Inscription) error {
	_, err := tx.NamedExecContext(ctx, createInscriptionQuery, inscription)
	return err
}

func (s *TournamentStore) DeleteInscription(ctx context.Context, tx *sqlx.Tx, tournamentID, playerID uuid.UUID) error {
	res, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM inscriptions WHERE tournament_id = ? AND player_id = ?"), tournamentID, playerID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// GetInscriptions lists a tournament's inscriptions in registration order.
func (s *TournamentStore) GetInscriptions(ctx context.Context, tournamentID uuid.UUID) ([]chess.Inscription, error) {
	inscriptions := []chess.Inscription{}
	err := s.db.SelectContext(ctx, &inscriptions, s.db.Rebind("SELECT * FROM inscriptions WHERE tournament_id = ? ORDER BY registered_at ASC, id ASC"), tournamentID)
	return inscriptions, err
}

func (s *TournamentStore) GetInscriptionsByPlayer(ctx context.Context, playerID uuid.UUID) ([]chess.Inscription, error) {
	inscriptions := []chess.Inscription{}
	err := s.db.SelectContext(ctx, &inscriptions, s.db.Rebind("SELECT * FROM inscriptions WHERE player_id = ? ORDER BY registered_at DESC"), playerID)
	return inscriptions, err
}

func (s *TournamentStore) CountInscriptions(ctx context.Context, tournamentID uuid.UUID) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, s.db.Rebind("SELECT COUNT(*) FROM inscriptions WHERE tournament_id = ?"), tournamentID)
	if err != nil {
		return 0, fmt.Errorf("failed to count inscriptions: %w", err)
	}
	return count, nil
}

// expectRow turns an update that touched nothing into sql.ErrNoRows.
func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
