package verifier

import (
	"epmb/internal/score"
	"epmb/internal/types"
)

// EnsureScoreQuality gates a candidate score before it is even admitted
// for verification: it must strictly improve over the currently queued
// score by at least SolutionImprovementThreshold, and it must exceed
// MinimumUntrustedScore if one is set (checked with a zero threshold).
func (e *Engine) EnsureScoreQuality(candidate score.ElectionScore) error {
	if queued, ok := e.store.QueuedScore(); ok {
		if !score.IsBetter(candidate, queued, e.cfg.SolutionImprovementThreshold) {
			return types.ErrScoreTooLow
		}
	}
	if e.cfg.MinimumUntrustedScore != nil {
		if !score.IsBetter(candidate, *e.cfg.MinimumUntrustedScore, 0) {
			return types.ErrScoreTooLow
		}
	}
	return nil
}

// SetMinimumUntrustedScore updates the authority-controlled floor.
func (e *Engine) SetMinimumUntrustedScore(s *score.ElectionScore) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg.MinimumUntrustedScore = s
}
