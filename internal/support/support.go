// Package support holds the per-winner aggregate stake structures the
// feasibility checker produces and the queued-solution store persists.
package support

import (
	"epmb/internal/score"
	"epmb/internal/types"
)

// VoterStake pairs a backing voter with the stake it routed to a winner.
type VoterStake struct {
	Voter types.AccountID
	Stake score.Balance
}

// Support is the aggregate stake received by one winner from all its
// backers. Voters is bounded by MaxBackersPerWinner.
type Support struct {
	Total  score.Balance
	Voters []VoterStake
}

// AddVoter appends a contributing voter's stake and rolls it into Total.
func (s *Support) AddVoter(voter types.AccountID, stake score.Balance) {
	s.Total = s.Total.SaturatingAdd(stake)
	s.Voters = append(s.Voters, VoterStake{Voter: voter, Stake: stake})
}

// PartialBackings compresses this Support down to what final scoring
// needs: the total and the backer count.
func (s Support) PartialBackings() score.PartialBackings {
	return score.PartialBackings{Total: s.Total, Backers: uint32(len(s.Voters))}
}

// SupportsPage is the ordered winner -> Support map produced by checking
// one page. Add does not cap the number of winners; the feasibility checker
// rejects a page with more winners than the desired target count, and no
// separate per-page winner limit exists. Order is insertion order
// (first time a winner is seen on this page), which keeps results
// deterministic without requiring a sorted key type.
type SupportsPage struct {
	order []types.AccountID
	byID  map[types.AccountID]*Support
}

// NewSupportsPage returns an empty page.
func NewSupportsPage() *SupportsPage {
	return &SupportsPage{byID: make(map[types.AccountID]*Support)}
}

// Add routes stake from voter to winner, creating the winner's Support
// entry on first sight.
func (p *SupportsPage) Add(winner, voter types.AccountID, stake score.Balance) {
	s, ok := p.byID[winner]
	if !ok {
		s = &Support{}
		p.byID[winner] = s
		p.order = append(p.order, winner)
	}
	s.AddVoter(voter, stake)
}

// Len returns the number of distinct winners on this page.
func (p *SupportsPage) Len() int {
	return len(p.order)
}

// Winners returns the winners in the order they were first seen.
func (p *SupportsPage) Winners() []types.AccountID {
	out := make([]types.AccountID, len(p.order))
	copy(out, p.order)
	return out
}

// Get returns the Support for a winner and whether it exists.
func (p *SupportsPage) Get(winner types.AccountID) (Support, bool) {
	s, ok := p.byID[winner]
	if !ok {
		return Support{}, false
	}
	return *s, true
}

// Each calls fn once per winner, in deterministic insertion order.
func (p *SupportsPage) Each(fn func(winner types.AccountID, s Support)) {
	for _, w := range p.order {
		fn(w, *p.byID[w])
	}
}

// Backings returns the compressed (winner, PartialBackings) list this page
// contributes toward final scoring.
func (p *SupportsPage) Backings() []score.WinnerBacking {
	out := make([]score.WinnerBacking, 0, len(p.order))
	for _, w := range p.order {
		out = append(out, score.WinnerBacking{Winner: w, Backing: p.byID[w].PartialBackings()})
	}
	return out
}
