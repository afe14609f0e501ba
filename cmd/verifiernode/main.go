// Verifier Node - runs one simulated paged verification round against a
// fixed electorate and prints every event it emits.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"epmb/internal/phase"
	"epmb/internal/score"
	"epmb/internal/snapshot/snapshottest"
	"epmb/internal/solution/solutiontest"
	"epmb/internal/store"
	"epmb/internal/types"
	"epmb/internal/verifier"
)

var version = "1.0.0"

func main() {
	dataDir := flag.String("datadir", "", "LevelDB directory for the queued solution (empty keeps it in memory)")
	pages := flag.Uint("pages", 3, "Number of pages in the round")
	maxBackers := flag.Uint("maxbackers", 12, "Maximum backers per winning target")
	threshold := flag.Uint("improvement-pct", 0, "Minimum relative improvement, in percent, required to admit a challenger")
	emergency := flag.Bool("emergency", false, "Run with the phase controller fixed to Emergency, unlocking the force path")
	flag.Parse()

	fmt.Printf("verifiernode %s\n", version)

	backend, closeBackend := openBackend(*dataDir)
	defer closeBackend()

	snap := snapshottest.DefaultFixture()
	prov := buildSolvedProvider(snap)

	cfg := verifier.Config{
		Pages:                        uint32(*pages),
		MaxBackersPerWinner:          uint32(*maxBackers),
		SolutionImprovementThreshold: score.PerbillFromPercent(uint32(*threshold)),
	}

	ph := phase.Static{Phase: phase.Unsigned}
	if *emergency {
		ph = phase.Static{Phase: phase.Emergency}
	}

	emitter := &verifier.SliceEmitter{}
	metrics := verifier.NewMetrics(prometheus.NewRegistry())
	eng := verifier.New(cfg, snap, prov, ph, backend, emitter, metrics)

	if err := eng.Start(); err != nil {
		log.Fatalf("failed to start round: %v", err)
	}
	for eng.Status().IsOngoing() {
		eng.Tick()
	}

	for _, ev := range emitter.Events {
		log.Println(describe(ev))
	}

	if s, ok := eng.QueuedScore(); ok {
		log.Printf("queued score: min=%s total=%s sumsq=%s", s.MinStake, s.TotalStake, s.SumSquared)
		if fp, ok := eng.FingerprintPage(types.LSP); ok {
			log.Printf("page %d fingerprint: %x", types.LSP, fp)
		}
	} else {
		log.Println("no solution queued")
	}
}

func openBackend(dataDir string) (store.Backend, func()) {
	if dataDir == "" {
		m := store.NewMemory()
		return m, func() { _ = m.Close() }
	}
	db, err := store.NewLevelDB(dataDir)
	if err != nil {
		log.Fatalf("failed to open store at %s: %v", dataDir, err)
	}
	return db, func() { _ = db.Close() }
}

// buildSolvedProvider mines the trivial even-split solution over the
// default fixture: every voter splits its stake evenly across targets 10
// and 40, giving both a clean majority.
func buildSolvedProvider(snap *snapshottest.Fixture) *solutiontest.Provider {
	targets, _ := snap.Targets()
	prov := solutiontest.New()

	var folded = map[types.AccountID]uint64{}
	for _, page := range []types.PageIndex{0, 1, 2} {
		voters, ok := snap.Voters(page)
		if !ok {
			continue
		}
		var edges []solutiontest.Edge
		for _, v := range voters {
			edges = append(edges, solutiontest.EvenSplit(v.Voter, types.ID(10), types.ID(40)))
			half := v.Stake.Uint64() / 2
			folded[types.ID(10)] += half
			folded[types.ID(40)] += v.Stake.Uint64() - half
		}
		prov.SetPage(page, solutiontest.BuildPage(targets, voters, edges))
	}

	min, total, sumSquared := uint64(0), uint64(0), uint64(0)
	first := true
	for _, v := range folded {
		if first || v < min {
			min = v
		}
		first = false
		total += v
		sumSquared += v * v
	}
	prov.SetScore(score.ElectionScore{
		MinStake:   score.New(min),
		TotalStake: score.New(total),
		SumSquared: score.New(sumSquared),
	})
	return prov
}

func describe(ev verifier.Event) string {
	switch e := ev.(type) {
	case verifier.VerifiedEvent:
		return fmt.Sprintf("Verified(page=%d, winners=%d)", e.Page, e.WinnerCount)
	case verifier.VerificationFailedEvent:
		return fmt.Sprintf("VerificationFailed(page=%d, kind=%s)", e.Page, e.Err.Kind)
	case verifier.QueuedEvent:
		return fmt.Sprintf("Queued(score=%s)", e.New.MinStake)
	default:
		return fmt.Sprintf("%#v", ev)
	}
}
