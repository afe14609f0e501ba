// Package snapshottest provides a fake snapshot.Provider for tests, plus
// the canonical default fixture used throughout the verifier's test suite.
package snapshottest

import (
	"epmb/internal/score"
	"epmb/internal/snapshot"
	"epmb/internal/types"
)

// Fixture is a fake snapshot.Provider. Function fields let a test override
// one method's behavior (e.g. to simulate a missing page); unset fields
// fall back to the data held in the fixture.
type Fixture struct {
	targets        []types.AccountID
	voters         map[types.PageIndex][]snapshot.VoterEntry
	desiredTargets uint32

	TargetsF        func() ([]types.AccountID, bool)
	VotersF         func(types.PageIndex) ([]snapshot.VoterEntry, bool)
	DesiredTargetsF func() (uint32, bool)
}

// New builds an empty fixture.
func New() *Fixture {
	return &Fixture{voters: make(map[types.PageIndex][]snapshot.VoterEntry)}
}

func (f *Fixture) SetTargets(targets []types.AccountID) {
	f.targets = targets
}

func (f *Fixture) SetVoters(page types.PageIndex, voters []snapshot.VoterEntry) {
	f.voters[page] = voters
}

func (f *Fixture) SetDesiredTargets(n uint32) {
	f.desiredTargets = n
}

func (f *Fixture) Targets() ([]types.AccountID, bool) {
	if f.TargetsF != nil {
		return f.TargetsF()
	}
	if f.targets == nil {
		return nil, false
	}
	return f.targets, true
}

func (f *Fixture) Voters(page types.PageIndex) ([]snapshot.VoterEntry, bool) {
	if f.VotersF != nil {
		return f.VotersF(page)
	}
	v, ok := f.voters[page]
	return v, ok
}

func (f *Fixture) DesiredTargets() (uint32, bool) {
	if f.DesiredTargetsF != nil {
		return f.DesiredTargetsF()
	}
	if f.desiredTargets == 0 {
		return 0, false
	}
	return f.desiredTargets, true
}

// DefaultFixture builds the canonical electorate used across the test
// suite: targets [10,20,30,40], 12 voters spread over 3 pages of 4 each,
// desired_targets = 2.
func DefaultFixture() *Fixture {
	f := New()
	targets := []types.AccountID{types.ID(10), types.ID(20), types.ID(30), types.ID(40)}
	f.SetTargets(targets)
	f.SetDesiredTargets(2)

	// Page 2 (MSP): voters 101..104, each splitting stake between targets 10 and 40.
	f.SetVoters(2, []snapshot.VoterEntry{
		{Voter: types.ID(101), Stake: score.New(10), Targets: []types.AccountID{types.ID(10), types.ID(40)}},
		{Voter: types.ID(102), Stake: score.New(10), Targets: []types.AccountID{types.ID(10), types.ID(40)}},
		{Voter: types.ID(103), Stake: score.New(10), Targets: []types.AccountID{types.ID(10), types.ID(40)}},
		{Voter: types.ID(104), Stake: score.New(10), Targets: []types.AccountID{types.ID(10), types.ID(40)}},
	})
	// Page 1: voters 105..108, same split.
	f.SetVoters(1, []snapshot.VoterEntry{
		{Voter: types.ID(105), Stake: score.New(10), Targets: []types.AccountID{types.ID(10), types.ID(40)}},
		{Voter: types.ID(106), Stake: score.New(10), Targets: []types.AccountID{types.ID(10), types.ID(40)}},
		{Voter: types.ID(107), Stake: score.New(10), Targets: []types.AccountID{types.ID(10), types.ID(40)}},
		{Voter: types.ID(108), Stake: score.New(10), Targets: []types.AccountID{types.ID(10), types.ID(40)}},
	})
	// Page 0 (LSP): voters 109..112, same split.
	f.SetVoters(0, []snapshot.VoterEntry{
		{Voter: types.ID(109), Stake: score.New(10), Targets: []types.AccountID{types.ID(10), types.ID(40)}},
		{Voter: types.ID(110), Stake: score.New(10), Targets: []types.AccountID{types.ID(10), types.ID(40)}},
		{Voter: types.ID(111), Stake: score.New(10), Targets: []types.AccountID{types.ID(10), types.ID(40)}},
		{Voter: types.ID(112), Stake: score.New(10), Targets: []types.AccountID{types.ID(10), types.ID(40)}},
	})
	return f
}
