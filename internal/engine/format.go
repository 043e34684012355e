package engine

import (
	"math/bits"

	"github.com/AdamBeresnev/op-chess/internal/chess"
)

// MaxRounds returns how many rounds a format allows for n participants.
// Unknown formats get the swiss limit rather than zero rounds.
func MaxRounds(format chess.Format, n int) int {
	if n < 2 {
		return 0
	}

	switch format {
	case chess.RoundRobin:
		return n - 1
	case chess.Elimination:
		return ceilLog2(n)
	default:
		return ceilLog2(n)
	}
}

// ceilLog2 for n >= 2, so 5 gives 3 and 8 gives 3
func ceilLog2(n int) int {
	return bits.Len(uint(n - 1))
}
