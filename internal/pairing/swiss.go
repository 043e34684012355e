package pairing

import (
	"sort"

	"github.com/AdamBeresnev/op-chess/internal/chess"
	"github.com/google/uuid"
)

type swissRecord struct {
	id     uuid.UUID
	seed   int
	points float64
	rounds map[int]bool
	whites int
	blacks int
}

// byes counts the earlier rounds the player sat out. Byes are never stored as
// matches, so a missing round is the only trace of one.
func (r *swissRecord) byes(round int) int {
	return round - 1 - len(r.rounds)
}

// swissPairs pairs players inside score groups, top half against bottom half,
// avoiding rematches where the group allows it. Unpaired players float down
// into the next group. With an odd field the lowest ranked player who has not
// sat out yet gets a bye.
func swissPairs(players []uuid.UUID, history []chess.Match, round int) []pair {
	records := make(map[uuid.UUID]*swissRecord, len(players))
	ranked := make([]*swissRecord, 0, len(players))
	for i, id := range players {
		r := &swissRecord{id: id, seed: i, rounds: make(map[int]bool)}
		records[id] = r
		ranked = append(ranked, r)
	}

	for _, m := range history {
		white, black := records[m.WhiteID], records[m.BlackID]
		if m.Round >= round {
			continue
		}
		if white != nil {
			white.rounds[m.Round] = true
			white.whites++
		}
		if black != nil {
			black.rounds[m.Round] = true
			black.blacks++
		}
		switch m.Result {
		case chess.ResultWhiteWins:
			if white != nil {
				white.points++
			}
		case chess.ResultBlackWins:
			if black != nil {
				black.points++
			}
		case chess.ResultDraw:
			if white != nil {
				white.points += 0.5
			}
			if black != nil {
				black.points += 0.5
			}
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].points != ranked[j].points {
			return ranked[i].points > ranked[j].points
		}
		return ranked[i].seed < ranked[j].seed
	})

	if len(ranked)%2 == 1 {
		ranked = removeBye(ranked, round)
	}

	played := playedPairs(history)
	var pairs []pair
	var floaters []*swissRecord

	for start := 0; start < len(ranked); {
		end := start
		for end < len(ranked) && ranked[end].points == ranked[start].points {
			end++
		}
		group := append(append([]*swissRecord{}, floaters...), ranked[start:end]...)
		var groupPairs []pair
		groupPairs, floaters = pairScoreGroup(group, played)
		pairs = append(pairs, groupPairs...)
		start = end
	}

	return pairs
}

// removeBye drops the lowest ranked player who has not sat out yet. Once
// everyone has had a bye the lowest ranked player sits out again.
func removeBye(ranked []*swissRecord, round int) []*swissRecord {
	bye := len(ranked) - 1
	for i := len(ranked) - 1; i >= 0; i-- {
		if ranked[i].byes(round) == 0 {
			bye = i
			break
		}
	}
	return append(append([]*swissRecord{}, ranked[:bye]...), ranked[bye+1:]...)
}

func pairScoreGroup(group []*swissRecord, played map[matchup]bool) ([]pair, []*swissRecord) {
	half := len(group) / 2
	top, bottom := group[:half], group[half:]
	used := make([]bool, len(bottom))

	pairs := make([]pair, 0, half)
	for _, a := range top {
		pick := -1
		for j, b := range bottom {
			if used[j] {
				continue
			}
			if pick == -1 {
				pick = j
			}
			if !played[key(a.id, b.id)] {
				pick = j
				break
			}
		}
		used[pick] = true
		pairs = append(pairs, assignColors(a, bottom[pick]))
	}

	var rest []*swissRecord
	for j, b := range bottom {
		if !used[j] {
			rest = append(rest, b)
		}
	}
	return pairs, rest
}

// assignColors gives white to whoever has had it less often; the higher ranked
// player a wins ties.
func assignColors(a, b *swissRecord) pair {
	if a.whites-a.blacks > b.whites-b.blacks {
		return pair{white: b.id, black: a.id}
	}
	return pair{white: a.id, black: b.id}
}
