// Package snapshot defines the read-only electorate port the verifier
// consumes. The verifier is polymorphic over any implementation that
// supplies (targets, voters(page), desired_targets); absence of any datum
// surfaces uniformly as SnapshotUnavailable.
package snapshot

import (
	"epmb/internal/score"
	"epmb/internal/types"
)

// VoterEntry is one voter's snapshot record: its identity, its staked
// weight, and the targets it is allowed to distribute stake to.
type VoterEntry struct {
	Voter   types.AccountID
	Stake   score.Balance
	Targets []types.AccountID
}

// Provider is the frozen electorate for one election round.
type Provider interface {
	// Targets returns the global target list, or ok=false if unavailable.
	Targets() (targets []types.AccountID, ok bool)
	// Voters returns the page-local voter list, or ok=false if this page
	// has not been (or can no longer be) supplied.
	Voters(page types.PageIndex) (voters []VoterEntry, ok bool)
	// DesiredTargets returns the intended winner count, or ok=false if
	// unavailable.
	DesiredTargets() (count uint32, ok bool)
}
