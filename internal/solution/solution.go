// Package solution defines the compact, index-encoded solution contract the
// feasibility checker consumes, and the concrete index-based decoder used
// by the canonical fixtures. The verifier never needs to know the wire
// format: it only calls IntoAssignments with resolver closures built from
// the snapshot.
package solution

import (
	"epmb/internal/score"
	"epmb/internal/types"
)

// TargetShare is one (target, ratio) edge in a voter's distribution. Ratio
// is a parts-per-billion fraction of the voter's stake; a voter's shares
// should sum to one whole (1_000_000_000), though the last share absorbs
// any rounding remainder during normalization rather than being required
// to sum exactly.
type TargetShare struct {
	Target types.AccountID
	Ratio  score.Perbill
}

// Assignment is one voter's resolved distribution across targets.
type Assignment struct {
	Voter        types.AccountID
	Distribution []TargetShare
}

// VoterAt resolves a page-local voter index to an identity.
type VoterAt func(index uint32) (types.AccountID, bool)

// TargetAt resolves a global target index to an identity.
type TargetAt func(index uint32) (types.AccountID, bool)

// CompactSolutionPage is the opaque, index-encoded structure supplying one
// page's worth of voter-to-target assignments. The concrete encoding is
// opaque to the verifier except via IntoAssignments.
type CompactSolutionPage interface {
	IntoAssignments(voterAt VoterAt, targetAt TargetAt) ([]Assignment, error)
}

// IndexShare is one (target index, ratio) edge as written on the wire.
type IndexShare struct {
	TargetIndex uint32
	Ratio       score.Perbill
}

// IndexAssignment is one voter's distribution as written on the wire,
// addressed entirely by index.
type IndexAssignment struct {
	VoterIndex   uint32
	Distribution []IndexShare
}

// IndexPage is the concrete index-encoded CompactSolutionPage used by the
// canonical fixtures and by cmd/verifiernode.
type IndexPage struct {
	Entries []IndexAssignment
}

// IntoAssignments resolves every index via the supplied closures. Any
// index that does not resolve fails the whole page with InvalidIndex,
// matching the feasibility checker's error taxonomy for decode failures.
func (p IndexPage) IntoAssignments(voterAt VoterAt, targetAt TargetAt) ([]Assignment, error) {
	out := make([]Assignment, 0, len(p.Entries))
	for _, e := range p.Entries {
		voter, ok := voterAt(e.VoterIndex)
		if !ok {
			return nil, types.ErrInvalidIndex
		}
		dist := make([]TargetShare, 0, len(e.Distribution))
		for _, s := range e.Distribution {
			target, ok := targetAt(s.TargetIndex)
			if !ok {
				return nil, types.ErrInvalidIndex
			}
			dist = append(dist, TargetShare{Target: target, Ratio: s.Ratio})
		}
		out = append(out, Assignment{Voter: voter, Distribution: dist})
	}
	return out, nil
}
