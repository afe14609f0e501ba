package verifier

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the ambient tick-outcome counters an operator watches
// alongside the event log. They are distinct from block-weight
// accounting, which belongs to the host.
type Metrics struct {
	PagesVerified    prometheus.Counter
	PagesFailed      prometheus.Counter
	SolutionsQueued  prometheus.Counter
	CurrentPage      prometheus.Gauge
}

// NewMetrics registers the verifier's counters and gauge against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PagesVerified: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "verifier_pages_verified_total",
			Help: "Number of solution pages that passed feasibility checking.",
		}),
		PagesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "verifier_pages_failed_total",
			Help: "Number of verification rounds that aborted on a page or at finalization.",
		}),
		SolutionsQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "verifier_solutions_queued_total",
			Help: "Number of solutions that were fully verified and queued as valid.",
		}),
		CurrentPage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "verifier_current_page",
			Help: "The page that will be consumed on the next tick, or -1 if idle.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.PagesVerified, m.PagesFailed, m.SolutionsQueued, m.CurrentPage)
	}
	m.CurrentPage.Set(-1)
	return m
}

// noopMetrics is used when a verifier is built without a registry.
func noopMetrics() *Metrics {
	return NewMetrics(nil)
}
