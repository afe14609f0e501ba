// Package solutiontest provides a fake solution.DataProvider and builders
// for constructing index-encoded solution pages directly from a desired
// (voter, target, ratio) distribution, mirroring the original pallet's
// mock `raw_paged_from_supports` helper.
package solutiontest

import (
	"epmb/internal/score"
	"epmb/internal/snapshot"
	"epmb/internal/solution"
	"epmb/internal/types"
)

// Provider is a fake solution.DataProvider. Pages are looked up by page
// index and Score is the single claimed score; Results records every
// ReportResult call.
type Provider struct {
	Pages   map[types.PageIndex]solution.CompactSolutionPage
	Score   score.ElectionScore
	Results []types.VerificationResult

	GetPageF      func(types.PageIndex) solution.CompactSolutionPage
	GetScoreF     func() score.ElectionScore
	ReportResultF func(types.VerificationResult)
}

// New builds an empty fake provider.
func New() *Provider {
	return &Provider{Pages: make(map[types.PageIndex]solution.CompactSolutionPage)}
}

func (p *Provider) SetPage(page types.PageIndex, sol solution.CompactSolutionPage) {
	p.Pages[page] = sol
}

func (p *Provider) SetScore(s score.ElectionScore) {
	p.Score = s
}

func (p *Provider) GetPage(page types.PageIndex) solution.CompactSolutionPage {
	if p.GetPageF != nil {
		return p.GetPageF(page)
	}
	return p.Pages[page]
}

func (p *Provider) GetScore() score.ElectionScore {
	if p.GetScoreF != nil {
		return p.GetScoreF()
	}
	return p.Score
}

func (p *Provider) ReportResult(r types.VerificationResult) {
	if p.ReportResultF != nil {
		p.ReportResultF(r)
		return
	}
	p.Results = append(p.Results, r)
}

// Edge names one (voter, target, ratio) distribution edge to place on a
// page, addressed by identity rather than raw index.
type Edge struct {
	Voter        types.AccountID
	Distribution []TargetRatio
}

// TargetRatio names one target and the parts-per-billion share of the
// voter's stake routed to it.
type TargetRatio struct {
	Target types.AccountID
	Ratio  score.Perbill
}

// BuildPage resolves a set of identity-addressed edges into an IndexPage
// against the given page's voter snapshot and the global target list,
// exactly as a real miner would encode a solution against that snapshot.
func BuildPage(targets []types.AccountID, voters []snapshot.VoterEntry, edges []Edge) solution.IndexPage {
	voterIndex := make(map[types.AccountID]uint32, len(voters))
	for i, v := range voters {
		voterIndex[v.Voter] = uint32(i)
	}
	targetIndex := make(map[types.AccountID]uint32, len(targets))
	for i, t := range targets {
		targetIndex[t] = uint32(i)
	}

	page := solution.IndexPage{}
	for _, e := range edges {
		vi, ok := voterIndex[e.Voter]
		if !ok {
			continue
		}
		shares := make([]solution.IndexShare, 0, len(e.Distribution))
		for _, d := range e.Distribution {
			ti, ok := targetIndex[d.Target]
			if !ok {
				continue
			}
			shares = append(shares, solution.IndexShare{TargetIndex: ti, Ratio: d.Ratio})
		}
		page.Entries = append(page.Entries, solution.IndexAssignment{VoterIndex: vi, Distribution: shares})
	}
	return page
}

// EvenSplit builds an Edge distributing a voter's stake evenly across the
// given targets (a 1/n Perbill share each, with any parts-per-billion
// remainder folded into the last target).
func EvenSplit(voter types.AccountID, targets ...types.AccountID) Edge {
	n := uint32(len(targets))
	share := score.Perbill(score.PerbillWhole / n)
	dist := make([]TargetRatio, len(targets))
	used := score.Perbill(0)
	for i, t := range targets {
		r := share
		if i == len(targets)-1 {
			r = score.Perbill(score.PerbillWhole) - used
		}
		used += r
		dist[i] = TargetRatio{Target: t, Ratio: r}
	}
	return Edge{Voter: voter, Distribution: dist}
}
