// Package session threads the pagination closed loop for one editing
// timeline: user edit, join reconciliation, render, overflow scan,
// split, until the layout reaches a fixed point.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pagemill/pagemill/internal/doc"
	"github.com/pagemill/pagemill/internal/pagination"
)

// DefaultMaxSettlePasses bounds the render/split loop after one edit.
// Convergence is normally reached within a handful of passes; the
// bound only guards against a pathological viewport.
const DefaultMaxSettlePasses = 1024

// Session owns one document snapshot, its pagination state and the
// selection anchor. All edits flow through Apply so the engine's
// reactions stay ordered behind their triggers.
type Session struct {
	ID        string
	Title     string
	CreatedAt time.Time

	mu        sync.Mutex
	updatedAt time.Time
	d         *doc.Node
	state     pagination.State
	selection int
	history   []*doc.Transaction

	view       pagination.Viewport
	reconciler *pagination.Reconciler
	scanner    *pagination.Scanner
	maxPasses  int
	log        *slog.Logger
}

// New creates a session over a document and settles its pagination
// immediately, so a freshly imported document comes out paginated.
func New(title string, d *doc.Node, view pagination.Viewport, log *slog.Logger, maxPasses int) *Session {
	if maxPasses <= 0 {
		maxPasses = DefaultMaxSettlePasses
	}
	now := time.Now()
	s := &Session{
		ID:         uuid.NewString(),
		Title:      title,
		CreatedAt:  now,
		updatedAt:  now,
		d:          d,
		state:      pagination.NewState(),
		view:       view,
		reconciler: pagination.NewReconciler(log),
		scanner:    pagination.NewScanner(view, pagination.NewSplitter(log), log),
		maxPasses:  maxPasses,
		log:        log,
	}
	s.mu.Lock()
	s.settleLocked()
	s.mu.Unlock()
	return s
}

// Doc returns the current snapshot.
func (s *Session) Doc() *doc.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d
}

// State returns the current pagination state.
func (s *Session) State() pagination.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Layout renders the current snapshot through the session's viewport.
func (s *Session) Layout() []pagination.PageBox {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Layout(s.d)
}

// UpdatedAt is the time of the last edit.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// HistoryLen is the number of undoable edits recorded so far.
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// Apply runs a user transaction through the full loop: reconcile,
// commit, settle.
func (s *Session) Apply(tr *doc.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(tr)
}

// InsertText splices text into the textblock at pos and repaginates.
func (s *Session) InsertText(pos int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr := doc.NewTransaction(s.d)
	if err := tr.InsertText(pos, text); err != nil {
		return err
	}
	s.selection = pos
	return s.applyLocked(tr)
}

// DeleteRange removes [from, to) and repaginates. When the range spans
// the whole content of top-level pages it widens to cover the page
// nodes themselves, so an emptied page disappears with the edit.
func (s *Session) DeleteRange(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, to = s.widenPageRange(from, to)
	tr := doc.NewTransaction(s.d)
	if err := tr.DeleteRange(from, to); err != nil {
		return err
	}
	s.selection = from
	return s.applyLocked(tr)
}

func (s *Session) applyLocked(tr *doc.Transaction) error {
	if tr.Before() != s.d {
		return fmt.Errorf("transaction built on a stale snapshot")
	}
	anchor := tr.Mapping().Map(s.selection, -1).Pos
	join := s.reconciler.Reconcile(tr, s.state, anchor)
	s.commit(tr)
	if join != nil {
		s.commit(join)
	}
	s.settleLocked()
	s.updatedAt = time.Now()
	return nil
}

// commit folds one transaction into the session: snapshot, remapped
// pagination state, remapped selection, and undo history when the edit
// is user-visible.
func (s *Session) commit(tr *doc.Transaction) {
	s.state = s.state.Apply(tr)
	s.d = tr.Doc()
	s.selection = tr.Mapping().Map(s.selection, -1).Pos
	if tr.AddToHistory() && tr.DocChanged() {
		s.history = append(s.history, tr)
	}
}

// settleLocked runs overflow passes until no page overflows or the
// pass bound is hit. Each pass emits at most one split, so the loop
// count is bounded by the number of boundaries that need introducing.
func (s *Session) settleLocked() int {
	for pass := 0; pass < s.maxPasses; pass++ {
		split := s.scanner.Pass(s.d)
		if split == nil {
			return pass
		}
		s.commit(split)
	}
	s.log.Warn("pagination did not settle within pass bound", "passes", s.maxPasses)
	return s.maxPasses
}

// widenPageRange extends a deletion to cover whole page nodes when the
// endpoints sit exactly at a page's content bounds. The last remaining
// page is never widened away: a document keeps at least one page.
func (s *Session) widenPageRange(from, to int) (int, int) {
	newFrom, newTo := -1, -1
	pos := 0
	for _, page := range s.d.Children {
		start, end := pos+1, pos+1+page.ContentSize()
		if from == start && to >= end {
			newFrom = pos
		}
		if to == end && from <= start {
			newTo = pos + page.Size()
		}
		pos += page.Size()
	}
	if newFrom < 0 || newTo < 0 {
		return from, to
	}
	if newFrom == 0 && newTo == s.d.ContentSize() {
		return from, to
	}
	return newFrom, newTo
}
