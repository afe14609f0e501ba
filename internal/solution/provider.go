package solution

import (
	"epmb/internal/score"
	"epmb/internal/types"
)

// DataProvider feeds one solution page per verification tick and the
// claimed overall score on demand, then receives a single terminal
// callback once per round.
type DataProvider interface {
	// GetPage must be idempotent for a given round.
	GetPage(page types.PageIndex) CompactSolutionPage
	// GetScore returns the claimed overall score.
	GetScore() score.ElectionScore
	// ReportResult is the single terminal callback per round.
	ReportResult(result types.VerificationResult)
}
