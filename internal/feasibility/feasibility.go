// Package feasibility converts a compact solution page into a bounded
// SupportsPage, enforcing every per-page invariant the verifier relies on.
// It is purely functional given the snapshot and the page's own desired
// targets and backer bound.
package feasibility

import (
	"errors"

	"epmb/internal/score"
	"epmb/internal/snapshot"
	"epmb/internal/solution"
	"epmb/internal/support"
	"epmb/internal/types"
)

// Checker holds the collaborators and bounds needed to check one page.
type Checker struct {
	Snapshot            snapshot.Provider
	MaxBackersPerWinner uint32
}

// CheckPage runs the eight-step algorithm and returns a bounded
// SupportsPage, or a FeasibilityError pinpointing the first violation.
func (c *Checker) CheckPage(page types.PageIndex, compact solution.CompactSolutionPage) (*support.SupportsPage, *types.FeasibilityError) {
	targets, ok := c.Snapshot.Targets()
	if !ok {
		return nil, types.NewFeasibilityError(types.SnapshotUnavailable)
	}
	voters, ok := c.Snapshot.Voters(page)
	if !ok {
		return nil, types.NewFeasibilityError(types.SnapshotUnavailable)
	}
	desiredTargets, ok := c.Snapshot.DesiredTargets()
	if !ok {
		return nil, types.NewFeasibilityError(types.SnapshotUnavailable)
	}

	voterAt := func(i uint32) (types.AccountID, bool) {
		if int(i) >= len(voters) {
			return types.AccountID{}, false
		}
		return voters[i].Voter, true
	}
	targetAt := func(i uint32) (types.AccountID, bool) {
		if int(i) >= len(targets) {
			return types.AccountID{}, false
		}
		return targets[i], true
	}

	assignments, err := compact.IntoAssignments(voterAt, targetAt)
	if err != nil {
		if fe, ok := err.(*types.FeasibilityError); ok {
			return nil, fe
		}
		return nil, types.WrapNposElection(err)
	}

	voterByID := make(map[types.AccountID]snapshot.VoterEntry, len(voters))
	for _, v := range voters {
		voterByID[v.Voter] = v
	}

	for _, a := range assignments {
		v, ok := voterByID[a.Voter]
		if !ok {
			return nil, types.NewFeasibilityError(types.InvalidVoter)
		}
		for _, share := range a.Distribution {
			if !containsTarget(v.Targets, share.Target) {
				return nil, types.NewFeasibilityError(types.InvalidVote)
			}
		}
	}

	supportsPage := support.NewSupportsPage()
	for _, a := range assignments {
		v := voterByID[a.Voter]
		staked, err := normalize(v.Stake, a.Distribution)
		if err != nil {
			return nil, types.WrapNposElection(err)
		}
		for _, s := range staked {
			supportsPage.Add(s.target, a.Voter, s.stake)
		}
	}

	if uint32(supportsPage.Len()) > desiredTargets {
		return nil, types.NewFeasibilityError(types.WrongWinnerCount)
	}
	tooMany := false
	supportsPage.Each(func(_ types.AccountID, s support.Support) {
		if uint32(len(s.Voters)) > c.MaxBackersPerWinner {
			tooMany = true
		}
	})
	if tooMany {
		return nil, types.NewFeasibilityError(types.TooManyBackings)
	}

	return supportsPage, nil
}

func containsTarget(targets []types.AccountID, t types.AccountID) bool {
	for _, x := range targets {
		if x == t {
			return true
		}
	}
	return false
}

type stakedShare struct {
	target types.AccountID
	stake  score.Balance
}

// normalize converts a voter's ratio-based distribution into integer
// staked amounts using the voter's snapshot stake. The last share absorbs
// whatever parts-per-billion remainder truncation leaves behind, so the
// sum of staked shares never exceeds the voter's declared stake and no
// stake is lost to rounding. A distribution whose shares before the last
// already exceed the stake is rejected.
func normalize(stake score.Balance, dist []solution.TargetShare) ([]stakedShare, error) {
	if len(dist) == 0 {
		return nil, nil
	}
	out := make([]stakedShare, len(dist))
	assigned := score.Zero()
	for i, d := range dist {
		if i == len(dist)-1 {
			out[i] = stakedShare{target: d.Target, stake: stake.SaturatingSub(assigned)}
			continue
		}
		s := d.Ratio.Apply(stake)
		assigned = assigned.SaturatingAdd(s)
		if assigned.Cmp(stake) > 0 {
			return nil, errOverAllocated
		}
		out[i] = stakedShare{target: d.Target, stake: s}
	}
	return out, nil
}

var errOverAllocated = errors.New("feasibility: voter distribution exceeds its stake")
