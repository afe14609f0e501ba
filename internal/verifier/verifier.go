package verifier

import (
	"sync"

	"epmb/internal/feasibility"
	"epmb/internal/phase"
	"epmb/internal/score"
	"epmb/internal/snapshot"
	"epmb/internal/solution"
	"epmb/internal/store"
	"epmb/internal/support"
	"epmb/internal/types"
)

// Config holds the round's tunable parameters. MinimumUntrustedScore is
// mutable via an authority call, so it is a pointer the engine reads
// fresh on every quality check rather than a value copied at construction.
type Config struct {
	Pages                        uint32
	MaxBackersPerWinner          uint32
	DesiredTargetsOverride       uint32 // 0 means "use snapshot.DesiredTargets()"
	SolutionImprovementThreshold score.Perbill
	MinimumUntrustedScore        *score.ElectionScore
}

// Engine is the paged verifier state machine. Scheduling is
// single-threaded and cooperative: a host calls Tick exactly once per
// simulated block, and no goroutines are spawned inside a tick.
type Engine struct {
	mu sync.Mutex

	cfg      Config
	snapshot snapshot.Provider
	provider solution.DataProvider
	phase    phase.Controller
	store    *store.QueuedSolution
	checker  *feasibility.Checker
	emitter  Emitter
	metrics  *Metrics

	status Status
}

// New builds an Engine wired to its collaborators. Pass a nil emitter to
// discard events, and a nil metrics Registerer (via NewMetrics(nil)) to
// skip Prometheus registration in tests.
func New(cfg Config, snap snapshot.Provider, provider solution.DataProvider, phaseCtl phase.Controller, backend store.Backend, emitter Emitter, metrics *Metrics) *Engine {
	if emitter == nil {
		emitter = &SliceEmitter{}
	}
	if metrics == nil {
		metrics = noopMetrics()
	}
	return &Engine{
		cfg:      cfg,
		snapshot: snap,
		provider: provider,
		phase:    phaseCtl,
		store:    store.New(backend, cfg.Pages),
		checker:  &feasibility.Checker{Snapshot: snap, MaxBackersPerWinner: cfg.MaxBackersPerWinner},
		emitter:  emitter,
		metrics:  metrics,
		status:   Nothing(),
	}
}

// Start begins verification from MSP. A concurrent start while a round is
// already ongoing is rejected rather than silently continuing.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status.IsOngoing() {
		return types.ErrAlreadyVerifying
	}
	e.status = Ongoing(types.MSP(e.cfg.Pages))
	e.metrics.CurrentPage.Set(float64(e.status.Page()))
	return nil
}

// Status reports Nothing or Ongoing(page).
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// QueuedScore reads the current valid score.
func (e *Engine) QueuedScore() (score.ElectionScore, bool) {
	return e.store.QueuedScore()
}

// GetQueuedSolutionPage reads the current valid page.
func (e *Engine) GetQueuedSolutionPage(page types.PageIndex) (*support.SupportsPage, bool) {
	return e.store.GetQueuedSolutionPage(page)
}

// FingerprintPage returns a content digest of the current valid page, for
// cheap cross-node agreement checks.
func (e *Engine) FingerprintPage(page types.PageIndex) ([32]byte, bool) {
	return e.store.FingerprintPage(page)
}

// FeasibilityCheckPage runs the checker standalone, without touching
// engine state — used by callers that want to pre-validate a page before
// submission.
func (e *Engine) FeasibilityCheckPage(page types.PageIndex, compact solution.CompactSolutionPage) (*support.SupportsPage, *types.FeasibilityError) {
	return e.checker.CheckPage(page, compact)
}

// Kill wipes all state: both buffers, backings, and score.
func (e *Engine) Kill() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Kill()
	e.status = Nothing()
	e.metrics.CurrentPage.Set(-1)
}

// Reconfigure changes the page count for the next round. It refuses to do
// so while a round is in flight, per this module's resolution of the
// corresponding open question.
func (e *Engine) Reconfigure(pages uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status.IsOngoing() {
		return types.ErrRoundInFlight
	}
	e.cfg.Pages = pages
	e.store.Reconfigure(pages)
	return nil
}

// Tick consumes exactly one page of an ongoing round. It is a no-op when
// the engine is idle.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.status.IsOngoing() {
		return
	}
	page := e.status.Page()

	compact := e.provider.GetPage(page)
	supportsPage, ferr := e.checker.CheckPage(page, compact)
	if ferr != nil {
		e.abort(page, ferr)
		return
	}

	e.store.SetInvalidPage(page, supportsPage)
	e.emitter.Emit(VerifiedEvent{Page: page, WinnerCount: uint32(supportsPage.Len())})
	e.metrics.PagesVerified.Inc()

	if page > types.LSP {
		e.status = Ongoing(page - 1)
		e.metrics.CurrentPage.Set(float64(page - 1))
		return
	}

	claimed := e.provider.GetScore()
	finalScore, ferr := e.finalizeLocked(claimed)
	if ferr != nil {
		e.emitter.Emit(VerificationFailedEvent{Page: page, Err: ferr})
		e.store.ClearInvalid()
		e.provider.ReportResult(types.Invalid)
		e.metrics.PagesFailed.Inc()
	} else {
		e.provider.ReportResult(types.Valid)
		_ = finalScore
	}
	e.status = Nothing()
	e.metrics.CurrentPage.Set(-1)
}

func (e *Engine) abort(page types.PageIndex, ferr *types.FeasibilityError) {
	e.emitter.Emit(VerificationFailedEvent{Page: page, Err: ferr})
	e.store.ClearInvalid()
	e.provider.ReportResult(types.Invalid)
	e.metrics.PagesFailed.Inc()
	e.status = Nothing()
	e.metrics.CurrentPage.Set(-1)
}

func (e *Engine) desiredTargets() (uint32, bool) {
	if e.cfg.DesiredTargetsOverride != 0 {
		return e.cfg.DesiredTargetsOverride, true
	}
	return e.snapshot.DesiredTargets()
}
