package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/AdamBeresnev/op-chess/internal/engine"
	"github.com/AdamBeresnev/op-chess/internal/policy"
	"github.com/AdamBeresnev/op-chess/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchService struct {
	base
}

func NewMatchService(db *sqlx.DB, store *store.TournamentStore, users *store.UserStore, opts ...Option) *MatchService {
	return &MatchService{base: newBase(db, store, users, opts)}
}

// RoundsData is what the matches page needs: the matches plus names to show.
type RoundsData struct {
	Tournament *chess.Tournament
	Matches    []chess.Match
	Players    map[uuid.UUID]engine.PlayerInfo
	Progress   engine.RoundProgress
}

func (s *MatchService) GetRoundsData(ctx context.Context, tournamentID uuid.UUID) (*RoundsData, error) {
	snap, err := s.loadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	info, err := s.playerInfo(ctx, snap)
	if err != nil {
		return nil, err
	}
	return &RoundsData{
		Tournament: snap.Tournament,
		Matches:    snap.Matches,
		Players:    info,
		Progress:   snap.Progress(),
	}, nil
}

// RecordResult stores a match result. When it completes the last round the
// tournament is marked finished in the same transaction.
func (s *MatchService) RecordResult(ctx context.Context, actor policy.Actor, matchID uuid.UUID, result chess.MatchResult) (*chess.Match, error) {
	if !result.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"result": "must be one of not_started, ongoing, white_wins, black_wins, draw"}}
	}

	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, notFound(err, "match")
	}
	snap, err := s.loadSnapshot(ctx, match.TournamentID)
	if err != nil {
		return nil, err
	}
	if err := engine.CheckRecordResult(actor, snap.Snapshot); err != nil {
		return nil, err
	}

	match.Result = result
	for i := range snap.Matches {
		if snap.Matches[i].ID == matchID {
			snap.Matches[i].Result = result
		}
	}
	completed := snap.Progress().IsCompleted

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.UpdateMatchResult(ctx, tx, matchID, result); err != nil {
		return nil, fmt.Errorf("failed to update match result: %w", err)
	}
	if completed {
		if err := s.store.UpdateTournamentStatus(ctx, tx, match.TournamentID, chess.StatusFinished); err != nil {
			return nil, fmt.Errorf("failed to finish tournament: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.recorder.ResultRecorded(result)
	s.notifier.Publish(Event{Type: EventResultRecorded, TournamentID: match.TournamentID, Round: match.Round})
	if completed {
		slog.Info("tournament completed", "tournament_id", match.TournamentID)
		s.recorder.StatusChanged(chess.StatusOngoing, chess.StatusFinished)
		s.notifier.Publish(Event{Type: EventStatusChanged, TournamentID: match.TournamentID, Status: chess.StatusFinished})
	}
	return match, nil
}

// GenerateNextRound pairs the round after the current one.
func (s *MatchService) GenerateNextRound(ctx context.Context, actor policy.Actor, tournamentID uuid.UUID) ([]chess.Match, error) {
	snap, err := s.loadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := engine.CheckGenerateRound(actor, snap.Snapshot); err != nil {
		return nil, err
	}

	players, err := s.seedOrder(ctx, snap)
	if err != nil {
		return nil, err
	}
	next := engine.CurrentRound(snap.Matches) + 1
	round, err := s.pairer.NextRound(snap.Tournament.Format, players, snap.Matches, next)
	if err != nil {
		return nil, fmt.Errorf("failed to pair round %d: %w", next, err)
	}
	now := s.now().UTC()
	for i := range round {
		round[i].TournamentID = tournamentID
		round[i].CreatedAt = now
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.store.CreateMatches(ctx, tx, round); err != nil {
		return nil, fmt.Errorf("failed to create round %d: %w", next, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("round generated", "tournament_id", tournamentID, "round", next, "boards", len(round))
	s.recorder.RoundGenerated(snap.Tournament.Format)
	s.notifier.Publish(Event{Type: EventRoundGenerated, TournamentID: tournamentID, Round: next})
	return round, nil
}
