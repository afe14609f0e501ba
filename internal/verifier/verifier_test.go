package verifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epmb/internal/phase"
	"epmb/internal/score"
	"epmb/internal/snapshot"
	"epmb/internal/snapshot/snapshottest"
	"epmb/internal/solution"
	"epmb/internal/solution/solutiontest"
	"epmb/internal/store"
	"epmb/internal/support"
	"epmb/internal/types"
)

var allTargets = []types.AccountID{types.ID(10), types.ID(20), types.ID(30), types.ID(40)}

// buildAndRunToCompletion wires an Engine around the given fixtures, starts
// a round, and ticks it until the engine goes idle again. It returns the
// collected events.
func buildAndRunToCompletion(t *testing.T, cfg Config, snap *snapshottest.Fixture, prov *solutiontest.Provider) ([]Event, *Engine) {
	t.Helper()
	emitter := &SliceEmitter{}
	eng := New(cfg, snap, prov, phase.Static{Phase: phase.Unsigned}, store.NewMemory(), emitter, nil)
	require.NoError(t, eng.Start())
	for i := 0; i < 64 && eng.Status().IsOngoing(); i++ {
		eng.Tick()
	}
	assert.False(t, eng.Status().IsOngoing(), "round did not terminate")
	return emitter.Events, eng
}

// singlePageFixture places all 12 voters from the three-page default
// fixture onto one page, for exercising Pages=1 rounds.
func singlePageFixture() *snapshottest.Fixture {
	fx := snapshottest.New()
	fx.SetTargets(allTargets)
	fx.SetDesiredTargets(2)

	def := snapshottest.DefaultFixture()
	page2, _ := def.Voters(2)
	page1, _ := def.Voters(1)
	page0, _ := def.Voters(0)

	var all []snapshot.VoterEntry
	all = append(all, page2...)
	all = append(all, page1...)
	all = append(all, page0...)
	fx.SetVoters(0, all)
	return fx
}

func TestScenario_SinglePage_HappyPath(t *testing.T) {
	fx := singlePageFixture()
	voters, _ := fx.Voters(0)

	var edges []solutiontest.Edge
	for _, v := range voters {
		edges = append(edges, solutiontest.EvenSplit(v.Voter, types.ID(10), types.ID(40)))
	}
	page := solutiontest.BuildPage(allTargets, voters, edges)

	prov := solutiontest.New()
	prov.SetPage(0, page)
	prov.SetScore(score.ElectionScore{MinStake: score.New(60), TotalStake: score.New(120), SumSquared: score.New(7200)})

	cfg := Config{Pages: 1, MaxBackersPerWinner: 12}
	events, eng := buildAndRunToCompletion(t, cfg, fx, prov)

	require.Len(t, events, 2)
	verified, ok := events[0].(VerifiedEvent)
	require.True(t, ok)
	assert.Equal(t, types.PageIndex(0), verified.Page)
	assert.Equal(t, uint32(2), verified.WinnerCount)

	queued, ok := events[1].(QueuedEvent)
	require.True(t, ok)
	assert.Nil(t, queued.Old)
	assert.Equal(t, uint64(60), queued.New.MinStake.Uint64())

	assert.Equal(t, []types.VerificationResult{types.Valid}, prov.Results)

	qs, ok := eng.QueuedScore()
	require.True(t, ok)
	assert.True(t, qs.Equal(queued.New))
}

func TestScenario_MultiPage_HappyPath(t *testing.T) {
	fx := snapshottest.DefaultFixture()
	prov := solutiontest.New()
	for _, page := range []types.PageIndex{0, 1, 2} {
		voters, _ := fx.Voters(page)
		var edges []solutiontest.Edge
		for _, v := range voters {
			edges = append(edges, solutiontest.EvenSplit(v.Voter, types.ID(10), types.ID(40)))
		}
		prov.SetPage(page, solutiontest.BuildPage(allTargets, voters, edges))
	}
	prov.SetScore(score.ElectionScore{MinStake: score.New(60), TotalStake: score.New(120), SumSquared: score.New(7200)})

	cfg := Config{Pages: 3, MaxBackersPerWinner: 12}
	events, _ := buildAndRunToCompletion(t, cfg, fx, prov)

	require.Len(t, events, 4)
	assert.Equal(t, types.PageIndex(2), events[0].(VerifiedEvent).Page)
	assert.Equal(t, types.PageIndex(1), events[1].(VerifiedEvent).Page)
	assert.Equal(t, types.PageIndex(0), events[2].(VerifiedEvent).Page)
	_, ok := events[3].(QueuedEvent)
	assert.True(t, ok)
	assert.Equal(t, []types.VerificationResult{types.Valid}, prov.Results)
}

func TestScenario_BadClaimedScore(t *testing.T) {
	fx := snapshottest.DefaultFixture()
	prov := solutiontest.New()
	for _, page := range []types.PageIndex{0, 1, 2} {
		voters, _ := fx.Voters(page)
		var edges []solutiontest.Edge
		for _, v := range voters {
			edges = append(edges, solutiontest.EvenSplit(v.Voter, types.ID(10), types.ID(40)))
		}
		prov.SetPage(page, solutiontest.BuildPage(allTargets, voters, edges))
	}
	// Claim a MinStake one higher than what the supplied pages actually produce.
	prov.SetScore(score.ElectionScore{MinStake: score.New(61), TotalStake: score.New(120), SumSquared: score.New(7200)})

	cfg := Config{Pages: 3, MaxBackersPerWinner: 12}
	events, eng := buildAndRunToCompletion(t, cfg, fx, prov)

	require.Len(t, events, 4)
	failed, ok := events[3].(VerificationFailedEvent)
	require.True(t, ok)
	assert.Equal(t, types.InvalidScore, failed.Err.Kind)
	assert.Equal(t, []types.VerificationResult{types.Invalid}, prov.Results)

	_, ok = eng.QueuedScore()
	assert.False(t, ok)
}

func TestScenario_TooManyBackingsOnMSP(t *testing.T) {
	fx := snapshottest.DefaultFixture()
	voters, _ := fx.Voters(2)

	var edges []solutiontest.Edge
	for _, v := range voters {
		edges = append(edges, solutiontest.EvenSplit(v.Voter, types.ID(10)))
	}
	page := solutiontest.BuildPage(allTargets, voters, edges)

	prov := solutiontest.New()
	prov.SetPage(2, page)

	cfg := Config{Pages: 3, MaxBackersPerWinner: 2}
	events, _ := buildAndRunToCompletion(t, cfg, fx, prov)

	require.Len(t, events, 1)
	failed, ok := events[0].(VerificationFailedEvent)
	require.True(t, ok)
	assert.Equal(t, types.PageIndex(2), failed.Page)
	assert.Equal(t, types.TooManyBackings, failed.Err.Kind)
}

func TestScenario_WrongWinnerCountOnMSP(t *testing.T) {
	fx := snapshottest.DefaultFixture()
	voters, _ := fx.Voters(2)
	// Let every MSP voter declare all four targets, so the page fails on its
	// winner count rather than on an undeclared vote.
	for i := range voters {
		voters[i].Targets = allTargets
	}
	fx.SetVoters(2, voters)

	page := solutiontest.BuildPage(allTargets, voters, []solutiontest.Edge{
		solutiontest.EvenSplit(voters[0].Voter, types.ID(10)),
		solutiontest.EvenSplit(voters[1].Voter, types.ID(20)),
		solutiontest.EvenSplit(voters[2].Voter, types.ID(30)),
	})

	prov := solutiontest.New()
	prov.SetPage(2, page)

	cfg := Config{Pages: 3, MaxBackersPerWinner: 12}
	events, _ := buildAndRunToCompletion(t, cfg, fx, prov)

	require.Len(t, events, 1)
	failed, ok := events[0].(VerificationFailedEvent)
	require.True(t, ok)
	assert.Equal(t, types.WrongWinnerCount, failed.Err.Kind)
}

func TestScenario_GlobalUnderWinners(t *testing.T) {
	fx := snapshottest.DefaultFixture()
	voters2, _ := fx.Voters(2)

	// MSP page names a single winner; pages 1 and 0 are left entirely empty.
	page2 := solutiontest.BuildPage(allTargets, voters2, []solutiontest.Edge{
		solutiontest.EvenSplit(voters2[0].Voter, types.ID(10)),
	})

	prov := solutiontest.New()
	prov.SetPage(2, page2)
	prov.SetPage(1, solution.IndexPage{})
	prov.SetPage(0, solution.IndexPage{})
	prov.SetScore(score.ElectionScore{MinStake: score.New(10), TotalStake: score.New(10), SumSquared: score.New(100)})

	cfg := Config{Pages: 3, MaxBackersPerWinner: 12}
	events, _ := buildAndRunToCompletion(t, cfg, fx, prov)

	require.Len(t, events, 4)
	v2 := events[0].(VerifiedEvent)
	assert.Equal(t, types.PageIndex(2), v2.Page)
	assert.Equal(t, uint32(1), v2.WinnerCount)

	v1 := events[1].(VerifiedEvent)
	assert.Equal(t, types.PageIndex(1), v1.Page)
	assert.Equal(t, uint32(0), v1.WinnerCount)

	v0 := events[2].(VerifiedEvent)
	assert.Equal(t, types.PageIndex(0), v0.Page)
	assert.Equal(t, uint32(0), v0.WinnerCount)

	failed, ok := events[3].(VerificationFailedEvent)
	require.True(t, ok)
	assert.Equal(t, types.PageIndex(0), failed.Page)
	assert.Equal(t, types.WrongWinnerCount, failed.Err.Kind)
}

func TestScenario_InvalidVoteOnSinglePage(t *testing.T) {
	fx := singlePageFixture()
	voters, _ := fx.Voters(0)

	// voters[0] only declared targets 10 and 40; send it to target 20 instead.
	page := solutiontest.BuildPage(allTargets, voters, []solutiontest.Edge{
		{Voter: voters[0].Voter, Distribution: []solutiontest.TargetRatio{{Target: types.ID(20), Ratio: score.PerbillWhole}}},
	})

	prov := solutiontest.New()
	prov.SetPage(0, page)

	cfg := Config{Pages: 1, MaxBackersPerWinner: 12}
	events, _ := buildAndRunToCompletion(t, cfg, fx, prov)

	require.Len(t, events, 1)
	failed, ok := events[0].(VerificationFailedEvent)
	require.True(t, ok)
	assert.Equal(t, types.PageIndex(0), failed.Page)
	assert.Equal(t, types.InvalidVote, failed.Err.Kind)
}

func TestScenario_ForcePathOutsideEmergency(t *testing.T) {
	fx := snapshottest.DefaultFixture()
	prov := solutiontest.New()
	cfg := Config{Pages: 1, MaxBackersPerWinner: 12}
	eng := New(cfg, fx, prov, phase.Static{Phase: phase.Unsigned}, store.NewMemory(), nil, nil)

	sp := support.NewSupportsPage()
	sp.Add(types.ID(10), types.ID(101), score.New(10))
	err := eng.ForceSetSinglePage(0, sp, score.ElectionScore{MinStake: score.New(10), TotalStake: score.New(10), SumSquared: score.New(100)})
	assert.ErrorIs(t, err, types.ErrCallNotAllowed)

	_, ok := eng.QueuedScore()
	assert.False(t, ok)
}

func TestScenario_ForcePathInEmergency(t *testing.T) {
	fx := snapshottest.DefaultFixture()
	prov := solutiontest.New()
	cfg := Config{Pages: 1, MaxBackersPerWinner: 12}
	eng := New(cfg, fx, prov, phase.Static{Phase: phase.Emergency}, store.NewMemory(), nil, nil)

	sp := support.NewSupportsPage()
	sp.Add(types.ID(10), types.ID(101), score.New(10))
	s := score.ElectionScore{MinStake: score.New(10), TotalStake: score.New(10), SumSquared: score.New(100)}
	require.NoError(t, eng.ForceSetSinglePage(0, sp, s))

	got, ok := eng.QueuedScore()
	require.True(t, ok)
	assert.True(t, got.Equal(s))
}

func TestEngine_StartWhileOngoingRejected(t *testing.T) {
	fx := snapshottest.DefaultFixture()
	prov := solutiontest.New()
	cfg := Config{Pages: 2, MaxBackersPerWinner: 12}
	eng := New(cfg, fx, prov, phase.Static{Phase: phase.Unsigned}, store.NewMemory(), nil, nil)

	require.NoError(t, eng.Start())
	err := eng.Start()
	assert.ErrorIs(t, err, types.ErrAlreadyVerifying)
}

func TestEngine_ReconfigureRejectedMidRound(t *testing.T) {
	fx := snapshottest.DefaultFixture()
	prov := solutiontest.New()
	cfg := Config{Pages: 2, MaxBackersPerWinner: 12}
	eng := New(cfg, fx, prov, phase.Static{Phase: phase.Unsigned}, store.NewMemory(), nil, nil)

	require.NoError(t, eng.Start())
	err := eng.Reconfigure(3)
	assert.ErrorIs(t, err, types.ErrRoundInFlight)
}

func TestEngine_QualityGate(t *testing.T) {
	fx := snapshottest.DefaultFixture()
	prov := solutiontest.New()
	cfg := Config{Pages: 1, MaxBackersPerWinner: 12, SolutionImprovementThreshold: score.PerbillFromPercent(10)}
	eng := New(cfg, fx, prov, phase.Static{Phase: phase.Emergency}, store.NewMemory(), nil, nil)

	incumbent := score.ElectionScore{MinStake: score.New(100), TotalStake: score.New(100), SumSquared: score.New(100)}
	sp := support.NewSupportsPage()
	sp.Add(types.ID(10), types.ID(101), score.New(100))
	require.NoError(t, eng.ForceSetSinglePage(0, sp, incumbent))

	worse := score.ElectionScore{MinStake: score.New(105), TotalStake: score.New(105), SumSquared: score.New(105)}
	assert.Error(t, eng.EnsureScoreQuality(worse))

	better := score.ElectionScore{MinStake: score.New(120), TotalStake: score.New(120), SumSquared: score.New(120)}
	assert.NoError(t, eng.EnsureScoreQuality(better))
}
