package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/AdamBeresnev/op-chess/internal/engine"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type snapshot struct {
	engine.Snapshot
	Inscriptions []chess.Inscription
}

// loadSnapshot reads a tournament with its inscriptions and matches.
func (b *base) loadSnapshot(ctx context.Context, id uuid.UUID) (*snapshot, error) {
	var (
		tournament   *chess.Tournament
		inscriptions []chess.Inscription
		matches      []chess.Match
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := b.store.GetTournament(gctx, id)
		if err != nil {
			return notFound(err, "tournament")
		}
		tournament = t
		return nil
	})
	g.Go(func() error {
		list, err := b.store.GetInscriptions(gctx, id)
		if err != nil {
			return fmt.Errorf("failed to get inscriptions: %w", err)
		}
		inscriptions = list
		return nil
	})
	g.Go(func() error {
		list, err := b.store.GetMatches(gctx, id)
		if err != nil {
			return fmt.Errorf("failed to get matches: %w", err)
		}
		matches = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &snapshot{
		Snapshot: engine.Snapshot{
			Tournament:       tournament,
			ParticipantCount: len(inscriptions),
			Matches:          matches,
		},
		Inscriptions: inscriptions,
	}, nil
}

func (s *snapshot) registered(playerID uuid.UUID) bool {
	for _, i := range s.Inscriptions {
		if i.PlayerID == playerID {
			return true
		}
	}
	return false
}

// playerInfo loads display data for everyone who is inscribed or has played.
func (b *base) playerInfo(ctx context.Context, s *snapshot) (map[uuid.UUID]engine.PlayerInfo, error) {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0, len(s.Inscriptions))
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; !ok && id != chess.DeletedPlayerID {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, i := range s.Inscriptions {
		add(i.PlayerID)
	}
	for _, m := range s.Matches {
		add(m.WhiteID)
		add(m.BlackID)
	}

	list, err := b.users.GetUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}

	info := make(map[uuid.UUID]engine.PlayerInfo, len(list))
	for _, u := range list {
		info[u.ID] = engine.PlayerInfo{Name: u.Username, Rating: u.Rating, Removed: u.Deleted()}
	}
	return info, nil
}

// seedOrder lists every inscribed player by rating, then registration order.
// Soft-deleted players keep their seat so the field matches ParticipantCount;
// the organizer records their games as forfeits.
func (b *base) seedOrder(ctx context.Context, s *snapshot) ([]uuid.UUID, error) {
	info, err := b.playerInfo(ctx, s)
	if err != nil {
		return nil, err
	}

	players := make([]uuid.UUID, 0, len(s.Inscriptions))
	for _, i := range s.Inscriptions {
		players = append(players, i.PlayerID)
	}
	sort.SliceStable(players, func(i, j int) bool {
		return info[players[i]].Rating > info[players[j]].Rating
	})
	return players, nil
}
