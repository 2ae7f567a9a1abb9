package pagination

import (
	"log/slog"

	"github.com/pagemill/pagemill/internal/doc"
)

// PageBox is the rendered geometry of one page container, in the
// abstract units of the rendering collaborator.
type PageBox struct {
	Pos      int // position of the page node in the document
	Index    int // page ordinal
	Extent   int // rendered content extent
	Capacity int // allotted extent
}

// Overflowing reports whether the page's content exceeds its capacity.
func (b PageBox) Overflowing() bool { return b.Extent > b.Capacity }

// Viewport is the rendering collaborator: it reports per-page geometry
// and resolves a rendered extent back to a document position. The
// engine never reaches into layout primitives directly.
type Viewport interface {
	Layout(d *doc.Node) []PageBox
	PositionAtExtent(d *doc.Node, box PageBox, extent int) (int, bool)
}

// Scanner inspects the rendered pages after each render pass and asks
// the splitter to fix the first overflowing container it can.
type Scanner struct {
	view  Viewport
	split *Splitter
	log   *slog.Logger
}

// NewScanner wires a scanner to a viewport and splitter.
func NewScanner(view Viewport, split *Splitter, log *slog.Logger) *Scanner {
	return &Scanner{view: view, split: split, log: log}
}

// Pass runs one overflow pass over a rendered snapshot and returns the
// split edit for the first fixable overflowing page, or nil when every
// page fits or must be skipped this pass. Unresolvable boundaries and
// illegal split points are skipped, never fatal; they are retried on
// the next pass.
func (sc *Scanner) Pass(d *doc.Node) *doc.Transaction {
	for _, box := range sc.view.Layout(d) {
		if !box.Overflowing() {
			continue
		}
		pos, ok := sc.view.PositionAtExtent(d, box, box.Capacity)
		if !ok {
			sc.log.Debug("no resolvable boundary for overflowing page", "page", box.Index)
			continue
		}
		tr, err := sc.split.Plan(d, pos)
		if err != nil {
			sc.log.Debug("split planning failed", "page", box.Index, "error", err)
			continue
		}
		if tr == nil {
			continue
		}
		return tr
	}
	return nil
}
