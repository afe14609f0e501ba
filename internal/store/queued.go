package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"

	"golang.org/x/crypto/blake2b"

	"epmb/internal/score"
	"epmb/internal/support"
	"epmb/internal/types"
)

// QueuedSolution owns all persistent solution state and enforces the
// double-buffer discipline that prevents a new, possibly-invalid
// challenger from ever clobbering the currently valid solution. Two
// parallel page-keyed containers (x, y) plus a one-bit pointer give an
// atomic swap with zero copy: assembly always writes to the "invalid"
// container, and FinalizeCorrect makes it valid by flipping the bit rather
// than copying pages.
type QueuedSolution struct {
	mu sync.RWMutex

	backend Backend
	pages   uint32

	x, y     map[types.PageIndex]*support.SupportsPage
	validIsX bool

	backings map[types.PageIndex][]score.WinnerBacking
	valScore *score.ElectionScore
}

// New builds a QueuedSolution over the given backend, holding pages pages
// per round. Pass store.NewMemory() for an ephemeral store.
func New(backend Backend, pages uint32) *QueuedSolution {
	return &QueuedSolution{
		backend:  backend,
		pages:    pages,
		x:        make(map[types.PageIndex]*support.SupportsPage),
		y:        make(map[types.PageIndex]*support.SupportsPage),
		validIsX: false, // Y starts valid, matching the pallet's own default.
		backings: make(map[types.PageIndex][]score.WinnerBacking),
	}
}

func (q *QueuedSolution) validMap() map[types.PageIndex]*support.SupportsPage {
	if q.validIsX {
		return q.x
	}
	return q.y
}

func (q *QueuedSolution) invalidMap() map[types.PageIndex]*support.SupportsPage {
	if q.validIsX {
		return q.y
	}
	return q.x
}

// SetInvalidPage writes one fully-verified page into the invalid buffer
// and appends its compressed backings. Idempotent on identical input.
func (q *QueuedSolution) SetInvalidPage(page types.PageIndex, supports *support.SupportsPage) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.backings[page] = supports.Backings()
	q.invalidMap()[page] = supports
}

// FinalizeCorrect atomically flips the valid pointer, stores score, clears
// all Backings, and clears the new invalid buffer (the previous valid).
// The caller must already have verified every page and confirmed score.
func (q *QueuedSolution) FinalizeCorrect(s score.ElectionScore) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.validIsX = !q.validIsX
	q.valScore = &s
	q.backings = make(map[types.PageIndex][]score.WinnerBacking)
	// Clear what is now the invalid side (the previous valid).
	q.clearInvalidLocked()

	q.persistValidLocked()
}

// ClearInvalid drops the invalid buffer and all Backings without flipping.
// Used on any verification failure.
func (q *QueuedSolution) ClearInvalid() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.clearInvalidLocked()
}

func (q *QueuedSolution) clearInvalidLocked() {
	for p := range q.invalidMap() {
		delete(q.invalidMap(), p)
	}
	q.backings = make(map[types.PageIndex][]score.WinnerBacking)
}

// ClearValid drops the valid buffer and its score. Used when installing
// an emergency solution.
func (q *QueuedSolution) ClearValid() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for p := range q.validMap() {
		delete(q.validMap(), p)
	}
	q.valScore = nil
}

// ForceSetValid writes directly to the valid buffer without verification.
// Authority-gated by the caller.
func (q *QueuedSolution) ForceSetValid(pages map[types.PageIndex]*support.SupportsPage, s score.ElectionScore) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for page, sp := range pages {
		q.validMap()[page] = sp
	}
	q.valScore = &s
	q.persistValidLocked()
}

// ForceSetSinglePageValid clears the valid buffer, installs one page, and
// installs score.
func (q *QueuedSolution) ForceSetSinglePageValid(page types.PageIndex, sp *support.SupportsPage, s score.ElectionScore) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for p := range q.validMap() {
		delete(q.validMap(), p)
	}
	q.validMap()[page] = sp
	q.valScore = &s
	q.persistValidLocked()
}

// FingerprintPage returns the blake2b-256 digest of the valid page's
// winner/total content, letting an operator confirm two nodes queued the
// same solution without comparing the full page.
func (q *QueuedSolution) FingerprintPage(page types.PageIndex) ([32]byte, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	sp, ok := q.validMap()[page]
	if !ok {
		return [32]byte{}, false
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(toGobPage(sp)); err != nil {
		return [32]byte{}, false
	}
	return blake2b.Sum256(buf.Bytes()), true
}

// GetQueuedSolutionPage reads the current valid page.
func (q *QueuedSolution) GetQueuedSolutionPage(page types.PageIndex) (*support.SupportsPage, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	sp, ok := q.validMap()[page]
	return sp, ok
}

// QueuedScore reads the current valid score.
func (q *QueuedSolution) QueuedScore() (score.ElectionScore, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.valScore == nil {
		return score.ElectionScore{}, false
	}
	return *q.valScore, true
}

// AllBackings returns every page's compressed backings collected so far,
// for finalization's fold step.
func (q *QueuedSolution) AllBackings() map[types.PageIndex][]score.WinnerBacking {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make(map[types.PageIndex][]score.WinnerBacking, len(q.backings))
	for p, b := range q.backings {
		out[p] = b
	}
	return out
}

// BackingsCount reports how many pages currently have backings recorded.
func (q *QueuedSolution) BackingsCount() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.backings)
}

// Kill erases everything: both buffers, backings, and score.
func (q *QueuedSolution) Kill() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.x = make(map[types.PageIndex]*support.SupportsPage)
	q.y = make(map[types.PageIndex]*support.SupportsPage)
	q.backings = make(map[types.PageIndex][]score.WinnerBacking)
	q.valScore = nil
}

// Reconfigure changes the page count for the next round. Per this spec's
// resolution of the corresponding open question, residual Backings for
// pages outside the new range are iterated and cleared rather than left to
// outlive their page count.
func (q *QueuedSolution) Reconfigure(pages uint32) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pages = pages
	for p := range q.backings {
		if uint32(p) >= pages {
			delete(q.backings, p)
		}
	}
}

// persistValidLocked writes every valid page's winners and totals (not its
// backer lists) and the score to the backend. Nothing in this package reads
// them back. Must be called with q.mu held.
func (q *QueuedSolution) persistValidLocked() {
	if q.backend == nil {
		return
	}
	for page, sp := range q.validMap() {
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(toGobPage(sp)); err != nil {
			continue
		}
		_ = q.backend.Put(pageKey(page), buf.Bytes())
	}
	if q.valScore != nil {
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(*q.valScore); err == nil {
			_ = q.backend.Put(scoreKey(), buf.Bytes())
		}
	}
}

func pageKey(page types.PageIndex) []byte {
	return []byte(fmt.Sprintf("epmb/queued/page/%d", page))
}

func scoreKey() []byte {
	return []byte("epmb/queued/score")
}

// gobPage is a flattened, gob-friendly mirror of support.SupportsPage,
// since SupportsPage keeps its fields unexported to preserve ordering
// invariants internally.
type gobPage struct {
	Winners []types.AccountID
	Totals  []score.Balance
}

func toGobPage(sp *support.SupportsPage) gobPage {
	var g gobPage
	sp.Each(func(w types.AccountID, s support.Support) {
		g.Winners = append(g.Winners, w)
		g.Totals = append(g.Totals, s.Total)
	})
	return g
}
