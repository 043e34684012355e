package pairing

import (
	"fmt"
	"math/bits"
	"sort"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/google/uuid"
)

// bracketOrder lists seed indices in bracket position order so that seed 0
// and seed 1 can only meet in the final. size must be a power of two.
func bracketOrder(size int) []int {
	order := []int{0}
	for len(order) < size {
		next := make([]int, 0, len(order)*2)
		count := len(order) * 2
		for _, seed := range order {
			next = append(next, seed, count-1-seed)
		}
		order = next
	}
	return order
}

func bracketSize(n int) int {
	if n <= 1 {
		return n
	}
	return 1 << bits.Len(uint(n-1))
}

// eliminationPairs keeps everyone without a loss in bracket order and pairs
// neighbours. Missing seeds in round 1 are byes for the top seeds. A drawn
// elimination game sends the higher seed through.
func eliminationPairs(players []uuid.UUID, history []chess.Match, round int) ([]pair, error) {
	size := bracketSize(len(players))
	position := make(map[uuid.UUID]int, len(players))
	for pos, seed := range bracketOrder(size) {
		if seed < len(players) {
			position[players[seed]] = pos
		}
	}
	seedOf := make(map[uuid.UUID]int, len(players))
	for i, id := range players {
		seedOf[id] = i
	}

	out := make(map[uuid.UUID]bool)
	for _, m := range history {
		if loser, ok := eliminated(m, seedOf); ok {
			out[loser] = true
		}
	}

	var alive []uuid.UUID
	for _, id := range players {
		if !out[id] {
			alive = append(alive, id)
		}
	}
	if len(alive) < 2 {
		return nil, fmt.Errorf("round %d: %w", round, ErrRoundOutOfRange)
	}
	sort.Slice(alive, func(i, j int) bool { return position[alive[i]] < position[alive[j]] })

	if round == 1 {
		return firstRound(players, size), nil
	}

	pairs := make([]pair, 0, len(alive)/2)
	for i := 0; i+1 < len(alive); i += 2 {
		pairs = append(pairs, higherSeedWhite(alive[i], alive[i+1], seedOf))
	}
	return pairs, nil
}

func firstRound(players []uuid.UUID, size int) []pair {
	order := bracketOrder(size)
	var pairs []pair
	for i := 0; i+1 < len(order); i += 2 {
		a, b := order[i], order[i+1]
		if a >= len(players) || b >= len(players) {
			continue
		}
		pairs = append(pairs, pair{white: players[min(a, b)], black: players[max(a, b)]})
	}
	return pairs
}

func higherSeedWhite(a, b uuid.UUID, seedOf map[uuid.UUID]int) pair {
	if seedOf[a] > seedOf[b] {
		a, b = b, a
	}
	return pair{white: a, black: b}
}

func eliminated(m chess.Match, seedOf map[uuid.UUID]int) (uuid.UUID, bool) {
	switch m.Result {
	case chess.ResultWhiteWins:
		return m.BlackID, true
	case chess.ResultBlackWins:
		return m.WhiteID, true
	case chess.ResultDraw:
		if seedOf[m.WhiteID] < seedOf[m.BlackID] {
			return m.BlackID, true
		}
		return m.WhiteID, true
	}
	return uuid.Nil, false
}
