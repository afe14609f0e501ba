// Package types holds the identifiers and small value types shared across
// the verifier: account addresses, page indices, and verification results.
package types

import "fmt"

// AccountID addresses a voter or a target (winner/validator). It follows the
// same 20-byte convention ChainCore already uses for validator and account
// addresses elsewhere in the node.
type AccountID [20]byte

// ID builds an AccountID out of a small integer, for fixtures and tests
// where targets/voters are conventionally named by number (e.g. the default
// fixture's targets [10,20,30,40]).
func ID(n uint64) AccountID {
	var a AccountID
	a[19] = byte(n)
	a[18] = byte(n >> 8)
	a[17] = byte(n >> 16)
	a[16] = byte(n >> 24)
	return a
}

func (a AccountID) String() string {
	return fmt.Sprintf("0x%x", [20]byte(a))
}

// PageIndex addresses one page of the snapshot or solution, in [0, Pages).
type PageIndex uint32

// MSP returns the most-significant page index (verified first) for a round
// with the given page count.
func MSP(pages uint32) PageIndex {
	if pages == 0 {
		return 0
	}
	return PageIndex(pages - 1)
}

// LSP is the least-significant page index (verified last).
const LSP PageIndex = 0

// VerificationResult is the single terminal callback a solution data
// provider receives once per round.
type VerificationResult int

const (
	Invalid VerificationResult = iota
	Valid
)

func (r VerificationResult) String() string {
	if r == Valid {
		return "Valid"
	}
	return "Invalid"
}
