package score

import "math/big"

// Perbill is a parts-per-billion fraction in [0, 1_000_000_000], the same
// concept the original pallet called Perbill. It is used only to express
// SolutionImprovementThreshold.
type Perbill uint32

// PerbillWhole is the Perbill value representing 100%, i.e. a whole unit.
const PerbillWhole = 1_000_000_000

const perbillDenominator = PerbillWhole

// PerbillFromPercent builds a Perbill from a whole-number percentage, e.g.
// PerbillFromPercent(1) is a 1% threshold.
func PerbillFromPercent(pct uint32) Perbill {
	return Perbill(pct * (perbillDenominator / 100))
}

// Apply returns b scaled by this fraction, via big.Int to avoid overflow.
func (p Perbill) Apply(b Balance) Balance {
	return p.mul(b)
}

// mul returns b scaled by this fraction, via big.Int to avoid overflow.
func (p Perbill) mul(b Balance) Balance {
	if p == 0 {
		return Zero()
	}
	num := new(big.Int).Mul(b.BigInt(), big.NewInt(int64(p)))
	num.Div(num, big.NewInt(perbillDenominator))
	return FromBigInt(num)
}

// ElectionScore is the (min_stake, total_stake, sum_stake_squared) tuple.
type ElectionScore struct {
	MinStake      Balance
	TotalStake    Balance
	SumSquared    Balance
}

// Compare implements the lexicographic order: higher min-stake wins; ties
// broken by larger total; further ties by smaller sum-of-squares (lower
// variance). Returns >0 if a beats b, <0 if b beats a, 0 if equal.
func (a ElectionScore) Compare(b ElectionScore) int {
	if c := a.MinStake.Cmp(b.MinStake); c != 0 {
		return c
	}
	if c := a.TotalStake.Cmp(b.TotalStake); c != 0 {
		return c
	}
	// Lower sum-of-squares wins, so invert the natural Cmp.
	return -a.SumSquared.Cmp(b.SumSquared)
}

// Equal reports whether two scores are identical in all three components.
func (a ElectionScore) Equal(b ElectionScore) bool {
	return a.MinStake.Cmp(b.MinStake) == 0 &&
		a.TotalStake.Cmp(b.TotalStake) == 0 &&
		a.SumSquared.Cmp(b.SumSquared) == 0
}

// IsBetter reports whether candidate strictly improves on incumbent by at
// least the given relative threshold, applied against incumbent's MinStake.
// A zero threshold requires only that candidate be strictly greater in
// lexicographic order, matching the minimum-untrusted-score gate.
func IsBetter(candidate, incumbent ElectionScore, threshold Perbill) bool {
	margin := threshold.mul(incumbent.MinStake)
	required := incumbent.MinStake.SaturatingAdd(margin)
	if candidate.MinStake.Cmp(required) > 0 {
		return true
	}
	if candidate.MinStake.Cmp(required) < 0 {
		return false
	}
	// candidate.MinStake == required: fall back to full lexicographic
	// comparison against the unmodified incumbent so a threshold of zero
	// degenerates to plain strict improvement.
	return candidate.Compare(incumbent) > 0
}
