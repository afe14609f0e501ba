// Package score implements the u128-equivalent arithmetic the verifier
// needs: saturating stake balances, the three-tuple election score with its
// lexicographic order, and the per-winner partial-backing fold.
package score

import "math/big"

// Balance is a non-negative stake/score magnitude. It is backed by
// *big.Int, the same representation ChainCore already uses for every
// stake and account balance (internal/blockchain.Account.Balance,
// internal/consensus.Validator.Stake), clamped to a 128-bit ceiling on
// every arithmetic operation to match the spec's u128 semantics.
type Balance struct {
	v *big.Int
}

// MaxBalance is the saturating ceiling: 2^128 - 1.
var MaxBalance = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// Zero is the additive identity.
func Zero() Balance {
	return Balance{v: big.NewInt(0)}
}

// New builds a Balance from a uint64, as fixtures commonly do.
func New(n uint64) Balance {
	return Balance{v: new(big.Int).SetUint64(n)}
}

// FromBigInt wraps an existing big.Int, clamping it into [0, MaxBalance].
func FromBigInt(v *big.Int) Balance {
	return Balance{v: clamp(new(big.Int).Set(v))}
}

func clamp(v *big.Int) *big.Int {
	if v.Sign() < 0 {
		return big.NewInt(0)
	}
	if v.Cmp(MaxBalance) > 0 {
		return new(big.Int).Set(MaxBalance)
	}
	return v
}

// BigInt returns the underlying value. Callers must not mutate it.
func (b Balance) BigInt() *big.Int {
	if b.v == nil {
		return big.NewInt(0)
	}
	return b.v
}

// Uint64 returns the value truncated to a uint64, for fixtures and tests
// that compare against small expected numbers.
func (b Balance) Uint64() uint64 {
	return b.BigInt().Uint64()
}

// Cmp compares two balances the way big.Int.Cmp does.
func (b Balance) Cmp(o Balance) int {
	return b.BigInt().Cmp(o.BigInt())
}

// SaturatingAdd adds two balances, clamping at MaxBalance.
func (b Balance) SaturatingAdd(o Balance) Balance {
	return Balance{v: clamp(new(big.Int).Add(b.BigInt(), o.BigInt()))}
}

// SaturatingMul multiplies two balances, clamping at MaxBalance.
func (b Balance) SaturatingMul(o Balance) Balance {
	return Balance{v: clamp(new(big.Int).Mul(b.BigInt(), o.BigInt()))}
}

// SaturatingSub subtracts o from b, clamping at zero rather than going
// negative.
func (b Balance) SaturatingSub(o Balance) Balance {
	return Balance{v: clamp(new(big.Int).Sub(b.BigInt(), o.BigInt()))}
}

// Square returns b*b, saturating.
func (b Balance) Square() Balance {
	return b.SaturatingMul(b)
}

func (b Balance) String() string {
	return b.BigInt().String()
}

// GobEncode/GobDecode let Balance round-trip through encoding/gob despite
// wrapping an unexported *big.Int, by delegating to big.Int's own codec.
func (b Balance) GobEncode() ([]byte, error) {
	return b.BigInt().GobEncode()
}

func (b *Balance) GobDecode(data []byte) error {
	v := new(big.Int)
	if err := v.GobDecode(data); err != nil {
		return err
	}
	b.v = v
	return nil
}
