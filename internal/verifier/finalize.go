package verifier

import (
	"epmb/internal/score"
	"epmb/internal/types"
)

// finalizeLocked folds every page's backings into the aggregate score,
// compares it against the claimed score and the desired winner count, and
// on success flips the queued-solution pointer. Must be called with e.mu
// held.
func (e *Engine) finalizeLocked(claimed score.ElectionScore) (score.ElectionScore, *types.FeasibilityError) {
	backingsByPage := e.store.AllBackings()
	if uint32(len(backingsByPage)) != e.cfg.Pages {
		return score.ElectionScore{}, types.NewFeasibilityError(types.Incomplete)
	}

	pages := make([][]score.WinnerBacking, 0, len(backingsByPage))
	for _, wb := range backingsByPage {
		pages = append(pages, wb)
	}

	folded, err := score.Fold(pages, e.cfg.MaxBackersPerWinner)
	if err != nil {
		return score.ElectionScore{}, types.NewFeasibilityError(types.TooManyBackings)
	}

	finalScore, winnerCount := score.Finalize(folded)

	desired, ok := e.desiredTargets()
	if !ok {
		return score.ElectionScore{}, types.NewFeasibilityError(types.SnapshotUnavailable)
	}

	if winnerCount != desired {
		return score.ElectionScore{}, types.NewFeasibilityError(types.WrongWinnerCount)
	}
	if !finalScore.Equal(claimed) {
		return score.ElectionScore{}, types.NewFeasibilityError(types.InvalidScore)
	}

	oldScore, hadOld := e.store.QueuedScore()
	e.store.FinalizeCorrect(finalScore)
	e.metrics.SolutionsQueued.Inc()

	var old *score.ElectionScore
	if hadOld {
		old = &oldScore
	}
	e.emitter.Emit(QueuedEvent{New: finalScore, Old: old})

	return finalScore, nil
}
