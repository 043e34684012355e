package chess

import (
	"time"

	"github.com/google/uuid"
)

type Inscription struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`
	PlayerID     uuid.UUID `db:"player_id" json:"player_id"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

func PlayerIDs(inscriptions []Inscription) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(inscriptions))
	for _, i := range inscriptions {
		ids = append(ids, i.PlayerID)
	}
	return ids
}
