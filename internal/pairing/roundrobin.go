package pairing

import (
	"fmt"

	"github.com/google/uuid"
)

// roundRobinPairs uses the circle method: the first player stays fixed while
// everyone else rotates one seat per round. An odd field gets a phantom seat
// and whoever lands opposite it sits the round out.
func roundRobinPairs(players []uuid.UUID, round int) ([]pair, error) {
	seats := append([]uuid.UUID{}, players...)
	if len(seats)%2 == 1 {
		seats = append(seats, uuid.Nil)
	}
	if round > len(seats)-1 {
		return nil, fmt.Errorf("round %d of %d: %w", round, len(seats)-1, ErrRoundOutOfRange)
	}

	r := round - 1
	n := len(seats)
	pairs := make([]pair, 0, n/2)
	for i := 0; i < n/2; i++ {
		white := seats[circleIndex(i, n, r)]
		black := seats[circleIndex(n-1-i, n, r)]
		if i == 0 && r%2 == 1 {
			white, black = black, white
		}
		if white == uuid.Nil || black == uuid.Nil {
			continue
		}
		pairs = append(pairs, pair{white: white, black: black})
	}
	return pairs, nil
}

func circleIndex(index, length, round int) int {
	if index == 0 {
		return 0
	}
	return (index-1-round%(length-1)+length-1)%(length-1) + 1
}
