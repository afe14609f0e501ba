package score

import "epmb/internal/types"

// PartialBackings is the compressed form of a Support that retains only
// what the final score needs: the total stake routed to a winner, and how
// many distinct voters contributed to it.
type PartialBackings struct {
	Total   Balance
	Backers uint32
}

// Add folds another page's contribution to the same winner into this one.
func (p PartialBackings) Add(o PartialBackings) PartialBackings {
	return PartialBackings{
		Total:   p.Total.SaturatingAdd(o.Total),
		Backers: saturatingAddU32(p.Backers, o.Backers),
	}
}

func saturatingAddU32(a, b uint32) uint32 {
	sum := uint64(a) + uint64(b)
	if sum > uint64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(sum)
}

// Fold combines the per-page (winner, PartialBackings) entries collected
// across every page of a round into a single map, rejecting as
// TooManyBackings any winner whose accumulated backer count exceeds
// maxBackersPerWinner — this catches backers scattered across pages, which
// no single page's own check can see.
func Fold(pages [][]WinnerBacking, maxBackersPerWinner uint32) (map[types.AccountID]PartialBackings, error) {
	total := make(map[types.AccountID]PartialBackings)
	for _, page := range pages {
		for _, wb := range page {
			entry := total[wb.Winner].Add(wb.Backing)
			if entry.Backers > maxBackersPerWinner {
				return nil, types.ErrTooManyBackings
			}
			total[wb.Winner] = entry
		}
	}
	return total, nil
}

// WinnerBacking pairs a winner with its partial backing on one page.
type WinnerBacking struct {
	Winner  types.AccountID
	Backing PartialBackings
}

// Finalize computes the ElectionScore and winner count from a folded
// winner -> PartialBackings map: min_stake = min(total), total_stake =
// sum(total), sum_squared = sum(total^2), all with saturating arithmetic.
func Finalize(folded map[types.AccountID]PartialBackings) (ElectionScore, uint32) {
	if len(folded) == 0 {
		return ElectionScore{MinStake: Zero(), TotalStake: Zero(), SumSquared: Zero()}, 0
	}
	minStake := Balance{}
	first := true
	totalStake := Zero()
	sumSquared := Zero()
	for _, pb := range folded {
		if first || pb.Total.Cmp(minStake) < 0 {
			minStake = pb.Total
		}
		first = false
		totalStake = totalStake.SaturatingAdd(pb.Total)
		sumSquared = sumSquared.SaturatingAdd(pb.Total.Square())
	}
	return ElectionScore{MinStake: minStake, TotalStake: totalStake, SumSquared: sumSquared}, uint32(len(folded))
}
