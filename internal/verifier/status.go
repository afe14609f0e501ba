// Package verifier implements the paged verifier state machine: it
// sequences per-page verification over consecutive ticks, finalizes the
// aggregate score, enforces the score-quality gate, and exposes the
// authority-gated emergency/force path.
package verifier

import "epmb/internal/types"

// Status is Nothing or Ongoing(page); initial Nothing, terminal Nothing.
// Ongoing(p) means page p will be consumed on the next tick.
type Status struct {
	ongoing bool
	page    types.PageIndex
}

// Nothing is the idle status.
func Nothing() Status {
	return Status{}
}

// Ongoing builds a status mid-round, at the given page.
func Ongoing(page types.PageIndex) Status {
	return Status{ongoing: true, page: page}
}

// IsOngoing reports whether a round is in flight.
func (s Status) IsOngoing() bool {
	return s.ongoing
}

// Page returns the page that will be consumed on the next tick. Only
// meaningful when IsOngoing is true.
func (s Status) Page() types.PageIndex {
	return s.page
}

func (s Status) String() string {
	if !s.ongoing {
		return "Nothing"
	}
	return "Ongoing"
}
