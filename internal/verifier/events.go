package verifier

import (
	"epmb/internal/score"
	"epmb/internal/types"
)

// Event is the marker interface for the three observable side effects the
// verifier emits. Event ordering matches the order of the backing state
// mutations, so downstream observers can reconstruct the state transition
// log deterministically.
type Event interface {
	isEvent()
}

// VerifiedEvent fires on a successful page.
type VerifiedEvent struct {
	Page        types.PageIndex
	WinnerCount uint32
}

func (VerifiedEvent) isEvent() {}

// VerificationFailedEvent fires on any abort.
type VerificationFailedEvent struct {
	Page types.PageIndex
	Err  *types.FeasibilityError
}

func (VerificationFailedEvent) isEvent() {}

// QueuedEvent fires on final commit.
type QueuedEvent struct {
	New score.ElectionScore
	Old *score.ElectionScore
}

func (QueuedEvent) isEvent() {}

// Emitter delivers events as the verifier produces them. Tests collect
// events in a slice; cmd/verifiernode prints them.
type Emitter interface {
	Emit(Event)
}

// SliceEmitter appends every event to an in-memory slice, the collector a
// test typically wants.
type SliceEmitter struct {
	Events []Event
}

func (e *SliceEmitter) Emit(ev Event) {
	e.Events = append(e.Events, ev)
}
