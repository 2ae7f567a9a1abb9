// Package pagination keeps a document visually divided into
// fixed-capacity pages while a session edits it. It tracks every
// structural split it introduces, remaps the record through each edit,
// and undoes exactly those splits again when later edits make them
// unnecessary, leaving user-authored structure alone.
package pagination

import (
	"github.com/pagemill/pagemill/internal/doc"
)

// MetaKey is the transaction metadata key carrying the engine's edit
// tag. Edits tagged here are the engine's own reactions: they never
// re-trigger the reconciler and never enter undo history (except the
// page-removal join, which shares history with the edit that caused it).
const MetaKey = "pagination"

const (
	// TagSplit marks an overflow-driven split edit.
	TagSplit = "split"
	// TagJoin marks a compensating join edit.
	TagJoin = "join"
)

// Tag returns the engine tag on a transaction, or "".
func Tag(tr *doc.Transaction) string {
	if v, ok := tr.GetMeta(MetaKey).(string); ok {
		return v
	}
	return ""
}

// Connection is a secondary ancestor-level boundary created by a
// multi-depth split. From sits after the left fragment, To before the
// right one; the pair re-fuses the ancestors during a join. It is valid
// only while To stays at offset 0 of its parent.
type Connection struct {
	From int
	To   int
}

// Split is one structural boundary this engine introduced. Pos is the
// join point between the two halves.
type Split struct {
	Pos         int
	Connections []Connection
}

// State is the engine's record of its own splits in one snapshot.
// It is a value: transitions return a new State.
type State struct {
	Splits []Split
}

// NewState returns the empty state a session starts from.
func NewState() State { return State{} }

// Apply derives the state for the snapshot a transaction produced.
// A join edit resets the record to empty (the simplest safe fixed
// point); any other edit remaps every tracked position, dropping
// splits whose content was deleted and connections no longer anchored
// at offset 0. A split edit additionally records its own boundary.
func (st State) Apply(tr *doc.Transaction) State {
	if Tag(tr) == TagJoin {
		return State{}
	}
	next := st.remap(tr.Mapping(), tr.Doc())
	if Tag(tr) == TagSplit {
		if sp, ok := splitFromTransaction(tr); ok {
			next.Splits = append(next.Splits, sp)
		}
	}
	return next
}

// remap carries every tracked position through a mapping and validates
// connections against the new snapshot.
func (st State) remap(m doc.Mapping, newDoc *doc.Node) State {
	var next State
	for _, sp := range st.Splits {
		r := m.Map(sp.Pos, -1)
		if r.Deleted {
			continue
		}
		ns := Split{Pos: r.Pos}
		for _, c := range sp.Connections {
			from := m.Map(c.From, -1)
			to := m.Map(c.To, 1)
			if from.Deleted || to.Deleted {
				continue
			}
			if !atOffsetZero(newDoc, to.Pos) {
				continue
			}
			ns.Connections = append(ns.Connections, Connection{From: from.Pos, To: to.Pos})
		}
		next.Splits = append(next.Splits, ns)
	}
	return next
}

// atOffsetZero reports whether pos sits at offset 0 of a container,
// i.e. nothing has been inserted before the node it anchors.
func atOffsetZero(d *doc.Node, pos int) bool {
	r, err := doc.Resolve(d, pos)
	if err != nil {
		return false
	}
	return r.Parent().Kind.Container() && r.AtStart()
}

// splitFromTransaction recovers the boundary a split edit introduced
// by inspecting its single structural step. The primary join point is
// the outermost boundary; one connection is recorded per inner
// ancestor level whose right fragment is a container node (textblock
// adjacency folds into the primary position).
func splitFromTransaction(tr *doc.Transaction) (Split, bool) {
	for _, s := range tr.Steps() {
		ss, ok := s.(*doc.SplitStep)
		if !ok {
			continue
		}
		sp := Split{Pos: ss.Pos + ss.Depth}
		for d := 1; d < ss.Depth; d++ {
			to := ss.Pos + 2*ss.Depth - d
			fragment := doc.NodeAt(tr.Doc(), to)
			if fragment != nil && fragment.Kind.Container() {
				sp.Connections = append(sp.Connections, Connection{
					From: ss.Pos + ss.Depth - d,
					To:   to,
				})
			}
		}
		return sp, true
	}
	return Split{}, false
}
