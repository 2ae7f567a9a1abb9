package doc

import "fmt"

// Resolved is a position resolved against one document snapshot: the
// chain of ancestors containing it, with the child index and content
// start recorded per depth. Depth 0 is the root; the deepest entry is
// the node directly containing the position.
type Resolved struct {
	Pos int

	nodes        []*Node
	index        []int
	start        []int
	parentOffset int
}

// Resolve locates pos within root. Positions are only meaningful
// relative to the snapshot they were resolved against.
func Resolve(root *Node, pos int) (*Resolved, error) {
	if pos < 0 || pos > root.ContentSize() {
		return nil, fmt.Errorf("position %d out of range 0..%d", pos, root.ContentSize())
	}
	r := &Resolved{Pos: pos}
	node, start, rem := root, 0, pos
	for {
		r.nodes = append(r.nodes, node)
		r.start = append(r.start, start)
		if node.Kind.Textblock() {
			r.index = append(r.index, rem)
			r.parentOffset = rem
			return r, nil
		}
		offset := 0
		idx := len(node.Children)
		var into *Node
		for i, child := range node.Children {
			if rem == offset {
				idx = i
				break
			}
			if rem < offset+child.size {
				idx = i
				into = child
				break
			}
			offset += child.size
		}
		r.index = append(r.index, idx)
		if into == nil {
			r.parentOffset = rem
			return r, nil
		}
		start = start + offset + 1
		rem = rem - offset - 1
		node = into
	}
}

// Depth is the number of ancestor levels above the containing node's
// children; the root is depth 0.
func (r *Resolved) Depth() int { return len(r.nodes) - 1 }

// Node returns the ancestor at the given depth.
func (r *Resolved) Node(depth int) *Node { return r.nodes[depth] }

// Parent is the node directly containing the position.
func (r *Resolved) Parent() *Node { return r.nodes[r.Depth()] }

// Index is the child index the path descends into at the given depth,
// or the boundary index when the position stops at that level.
func (r *Resolved) Index(depth int) int { return r.index[depth] }

// Start is the position where the content of the ancestor at the given
// depth begins.
func (r *Resolved) Start(depth int) int { return r.start[depth] }

// End is the position where the content of the ancestor at the given
// depth ends.
func (r *Resolved) End(depth int) int { return r.start[depth] + r.nodes[depth].ContentSize() }

// Before is the position of the ancestor's open token. Only valid for
// depth >= 1.
func (r *Resolved) Before(depth int) int { return r.start[depth] - 1 }

// After is the position just past the ancestor's close token. Only
// valid for depth >= 1.
func (r *Resolved) After(depth int) int { return r.End(depth) + 1 }

// ParentOffset is the offset of the position within its parent: a rune
// offset inside a textblock, a token offset inside a container.
func (r *Resolved) ParentOffset() int { return r.parentOffset }

// AtStart reports whether the position sits at offset 0 of its parent.
func (r *Resolved) AtStart() bool { return r.parentOffset == 0 }

// AtEnd reports whether the position sits at the end of its parent.
func (r *Resolved) AtEnd() bool { return r.parentOffset == r.Parent().ContentSize() }

// NodeBefore is the child ending at the position, or nil when the
// position is at the parent's start or inside text.
func (r *Resolved) NodeBefore() *Node {
	if r.Parent().Kind.Textblock() {
		return nil
	}
	return r.Parent().Child(r.index[r.Depth()] - 1)
}

// NodeAfter is the child starting at the position, or nil when the
// position is at the parent's end or inside text.
func (r *Resolved) NodeAfter() *Node {
	if r.Parent().Kind.Textblock() {
		return nil
	}
	return r.Parent().Child(r.index[r.Depth()])
}

// SharedDepth is the deepest depth at which this and other resolve
// through the same node.
func (r *Resolved) SharedDepth(other *Resolved) int {
	d := 0
	for d < r.Depth() && d < other.Depth() &&
		r.nodes[d+1] == other.nodes[d+1] && r.start[d+1] == other.start[d+1] {
		d++
	}
	return d
}

// NodeAt returns the node whose open token sits at pos, or nil.
func NodeAt(root *Node, pos int) *Node {
	r, err := Resolve(root, pos)
	if err != nil {
		return nil
	}
	return r.NodeAfter()
}

// CanSplit reports whether the tree can be divided at pos across depth
// ancestor levels. The root is never split, and the innermost cut must
// leave content on both sides so neither fragment is empty.
func CanSplit(root *Node, pos, depth int) bool {
	r, err := Resolve(root, pos)
	if err != nil {
		return false
	}
	if depth < 1 || depth > r.Depth() {
		return false
	}
	return !r.AtStart() && !r.AtEnd()
}

// CanJoin reports whether the two siblings adjacent at pos can be fused.
func CanJoin(root *Node, pos int) bool {
	r, err := Resolve(root, pos)
	if err != nil {
		return false
	}
	return joinable(r.NodeBefore(), r.NodeAfter())
}

// PageCount is the number of top-level page nodes.
func PageCount(root *Node) int {
	count := 0
	for _, c := range root.Children {
		if c.Kind == KindPage {
			count++
		}
	}
	return count
}
