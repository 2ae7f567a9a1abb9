// Package measure is the rendering collaborator: a deterministic,
// unit-based layout over the document tree. It reports per-page
// rendered extents and resolves an extent back to the nearest document
// position, which is all the pagination engine is allowed to ask of a
// renderer.
package measure

import (
	"github.com/pagemill/pagemill/internal/doc"
	"github.com/pagemill/pagemill/internal/pagination"
)

// Metrics configures the layout in abstract units.
type Metrics struct {
	// PageCapacity is the extent allotted to one page's content.
	PageCapacity int
	// BlockSpacing is the per-block overhead (margins, leading).
	BlockSpacing int
}

// DefaultMetrics returns the layout defaults used when nothing is
// configured.
func DefaultMetrics() Metrics {
	return Metrics{PageCapacity: 1200, BlockSpacing: 2}
}

// View implements pagination.Viewport over Metrics.
type View struct {
	m Metrics
}

// NewView builds a view for the given metrics.
func NewView(m Metrics) *View {
	if m.PageCapacity <= 0 {
		m.PageCapacity = DefaultMetrics().PageCapacity
	}
	if m.BlockSpacing < 0 {
		m.BlockSpacing = 0
	}
	return &View{m: m}
}

// Metrics returns the view's configuration.
func (v *View) Metrics() Metrics { return v.m }

// BlockExtent is the rendered extent of one block: spacing plus text
// for textblocks, spacing plus children for containers.
func (v *View) BlockExtent(n *doc.Node) int {
	if n.Kind.Textblock() {
		return v.m.BlockSpacing + n.TextLen()
	}
	extent := v.m.BlockSpacing
	for _, c := range n.Children {
		extent += v.BlockExtent(c)
	}
	return extent
}

// PageExtent is the rendered extent of a page's content.
func (v *View) PageExtent(page *doc.Node) int {
	extent := 0
	for _, c := range page.Children {
		extent += v.BlockExtent(c)
	}
	return extent
}

// Layout renders the document: one box per top-level page, in order.
func (v *View) Layout(d *doc.Node) []pagination.PageBox {
	var boxes []pagination.PageBox
	pos := 0
	for i, page := range d.Children {
		if page.Kind == doc.KindPage {
			boxes = append(boxes, pagination.PageBox{
				Pos:      pos,
				Index:    i,
				Extent:   v.PageExtent(page),
				Capacity: v.m.PageCapacity,
			})
		}
		pos += page.Size()
	}
	return boxes
}

// PositionAtExtent resolves the document position where the page's
// rendered prefix first reaches the given extent; the
// coordinate-to-position query of a real renderer. ok is false when no
// position resolves (empty page, extent past the content), in which
// case the caller skips the container for this pass.
func (v *View) PositionAtExtent(d *doc.Node, box pagination.PageBox, extent int) (int, bool) {
	page := doc.NodeAt(d, box.Pos)
	if page == nil || page.Kind != doc.KindPage {
		return 0, false
	}
	return v.positionWithin(page, box.Pos+1, extent)
}

func (v *View) positionWithin(n *doc.Node, contentStart, rem int) (int, bool) {
	acc, off := 0, 0
	for _, child := range n.Children {
		ce := v.BlockExtent(child)
		if acc+ce <= rem {
			acc += ce
			off += child.Size()
			continue
		}
		inner := rem - acc
		if inner <= v.m.BlockSpacing {
			// The boundary falls in the spacing before the block.
			return contentStart + off, true
		}
		inner -= v.m.BlockSpacing
		if child.Kind.Textblock() {
			if inner >= child.TextLen() {
				return contentStart + off + child.Size(), true
			}
			return contentStart + off + 1 + inner, true
		}
		return v.positionWithin(child, contentStart+off+1, inner)
	}
	return 0, false
}
