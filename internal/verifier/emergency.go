package verifier

import (
	"epmb/internal/phase"
	"epmb/internal/score"
	"epmb/internal/support"
	"epmb/internal/types"
)

// ForceSetSinglePage installs one page directly into the valid buffer
// along with its score, bypassing verification entirely. It only
// succeeds while the phase controller reports Emergency.
func (e *Engine) ForceSetSinglePage(page types.PageIndex, supports *support.SupportsPage, s score.ElectionScore) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase.CurrentPhase() != phase.Emergency {
		return types.ErrCallNotAllowed
	}
	e.store.ForceSetSinglePageValid(page, supports, s)
	return nil
}

// ForceSetValid installs every page directly into the valid buffer along
// with its score, bypassing verification entirely. It fails with
// ErrCallNotAllowed outside Emergency, and with ErrWrongPageCount if the
// number of provided pages does not equal Pages.
func (e *Engine) ForceSetValid(pages map[types.PageIndex]*support.SupportsPage, s score.ElectionScore) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase.CurrentPhase() != phase.Emergency {
		return types.ErrCallNotAllowed
	}
	if uint32(len(pages)) != e.cfg.Pages {
		return types.ErrWrongPageCount
	}
	e.store.ForceSetValid(pages, s)
	return nil
}
