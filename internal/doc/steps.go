package doc

import (
	"fmt"
	"unicode/utf8"
)

// Step is one atomic document change. Applying a step is pure: it
// returns a new snapshot and the position map for the change, leaving
// the input untouched.
type Step interface {
	Apply(d *Node) (*Node, *StepMap, error)
}

// runeSlice returns s[from:to] in rune offsets; to < 0 means end.
func runeSlice(s string, from, to int) string {
	runes := []rune(s)
	if to < 0 || to > len(runes) {
		to = len(runes)
	}
	if from < 0 {
		from = 0
	}
	if from > to {
		from = to
	}
	return string(runes[from:to])
}

// replaceChild returns a copy of n with the child at idx replaced by
// zero or more nodes.
func replaceChild(n *Node, idx int, repl ...*Node) *Node {
	children := make([]*Node, 0, len(n.Children)-1+len(repl))
	children = append(children, n.Children[:idx]...)
	children = append(children, repl...)
	children = append(children, n.Children[idx+1:]...)
	return n.WithChildren(children)
}

// rebuild replaces the ancestor at the given depth of a resolved path
// and reconstructs every level above it, returning the new root.
func rebuild(r *Resolved, depth int, node *Node) *Node {
	for d := depth; d > 0; d-- {
		node = replaceChild(r.Node(d-1), r.Index(d-1), node)
	}
	return node
}

// InsertTextStep splices text into a textblock at Pos.
type InsertTextStep struct {
	Pos  int
	Text string
}

func (s *InsertTextStep) Apply(d *Node) (*Node, *StepMap, error) {
	if s.Text == "" {
		return d, emptyStepMap, nil
	}
	r, err := Resolve(d, s.Pos)
	if err != nil {
		return nil, nil, err
	}
	parent := r.Parent()
	if !parent.Kind.Textblock() {
		return nil, nil, fmt.Errorf("insert text: position %d is not inside a textblock", s.Pos)
	}
	off := r.ParentOffset()
	text := runeSlice(parent.Text, 0, off) + s.Text + runeSlice(parent.Text, off, -1)
	root := rebuild(r, r.Depth(), parent.WithText(text))
	return root, newStepMap(s.Pos, 0, utf8.RuneCountInString(s.Text)), nil
}

// DeleteRangeStep removes exactly the tokens in [From, To). The range
// must be balanced: both endpoints at the same depth under their
// deepest shared ancestor, so the cut sides can be fused level by
// level and the position map stays exact. Nodes wholly inside the
// range are dropped; the partial nodes on each side merge pairwise,
// keeping the from-side kind and attrs.
type DeleteRangeStep struct {
	From int
	To   int
}

func (s *DeleteRangeStep) Apply(d *Node) (*Node, *StepMap, error) {
	if s.From > s.To {
		return nil, nil, fmt.Errorf("delete range: from %d after to %d", s.From, s.To)
	}
	if s.From == s.To {
		return d, emptyStepMap, nil
	}
	rf, err := Resolve(d, s.From)
	if err != nil {
		return nil, nil, err
	}
	rt, err := Resolve(d, s.To)
	if err != nil {
		return nil, nil, err
	}
	shared := rf.SharedDepth(rt)

	if rf.Depth() == shared && rt.Depth() == shared {
		// Both endpoints in the same node.
		parent := rf.Parent()
		var updated *Node
		if parent.Kind.Textblock() {
			updated = parent.WithText(runeSlice(parent.Text, 0, rf.ParentOffset()) + runeSlice(parent.Text, rt.ParentOffset(), -1))
		} else {
			fi, ti := rf.Index(shared), rt.Index(shared)
			children := make([]*Node, 0, len(parent.Children)-(ti-fi))
			children = append(children, parent.Children[:fi]...)
			children = append(children, parent.Children[ti:]...)
			updated = parent.WithChildren(children)
		}
		return rebuild(rf, shared, updated), newStepMap(s.From, s.To-s.From, 0), nil
	}

	if rf.Depth() == shared || rt.Depth() == shared || rf.Depth() != rt.Depth() {
		return nil, nil, fmt.Errorf("delete range: unbalanced range %d..%d", s.From, s.To)
	}
	if rf.Parent().Kind.Textblock() != rt.Parent().Kind.Textblock() {
		return nil, nil, fmt.Errorf("delete range: incompatible cut ends at %d..%d", s.From, s.To)
	}

	spine := mergeSpine(rf, rt, shared+1)
	common := rf.Node(shared)
	children := make([]*Node, 0, len(common.Children))
	children = append(children, common.Children[:rf.Index(shared)]...)
	children = append(children, spine)
	children = append(children, common.Children[rt.Index(shared)+1:]...)
	return rebuild(rf, shared, common.WithChildren(children)), newStepMap(s.From, s.To-s.From, 0), nil
}

// mergeSpine fuses the partial nodes along the from and to paths at
// each depth below the shared ancestor into a single node per level.
func mergeSpine(rf, rt *Resolved, depth int) *Node {
	fn, tn := rf.Node(depth), rt.Node(depth)
	if depth == rf.Depth() {
		if fn.Kind.Textblock() {
			return fn.WithText(runeSlice(fn.Text, 0, rf.ParentOffset()) + runeSlice(tn.Text, rt.ParentOffset(), -1))
		}
		children := make([]*Node, 0, rf.Index(depth)+len(tn.Children)-rt.Index(depth))
		children = append(children, fn.Children[:rf.Index(depth)]...)
		children = append(children, tn.Children[rt.Index(depth):]...)
		return fn.WithChildren(children)
	}
	inner := mergeSpine(rf, rt, depth+1)
	children := make([]*Node, 0, rf.Index(depth)+1+len(tn.Children)-rt.Index(depth)-1)
	children = append(children, fn.Children[:rf.Index(depth)]...)
	children = append(children, inner)
	children = append(children, tn.Children[rt.Index(depth)+1:]...)
	return fn.WithChildren(children)
}

// SplitStep divides Depth ancestor levels at Pos. Both fragments at
// every level share the original node's kind and attrs, which is how a
// pre-split origin tag ends up on both halves.
type SplitStep struct {
	Pos   int
	Depth int
}

func (s *SplitStep) Apply(d *Node) (*Node, *StepMap, error) {
	r, err := Resolve(d, s.Pos)
	if err != nil {
		return nil, nil, err
	}
	if !CanSplit(d, s.Pos, s.Depth) {
		return nil, nil, fmt.Errorf("split: illegal split point %d depth %d", s.Pos, s.Depth)
	}

	parent := r.Parent()
	var left, right *Node
	if parent.Kind.Textblock() {
		off := r.ParentOffset()
		left = parent.WithText(runeSlice(parent.Text, 0, off))
		right = parent.WithText(runeSlice(parent.Text, off, -1))
	} else {
		idx := r.Index(r.Depth())
		left = parent.WithChildren(append([]*Node{}, parent.Children[:idx]...))
		right = parent.WithChildren(append([]*Node{}, parent.Children[idx:]...))
	}

	for i := 1; i < s.Depth; i++ {
		level := r.Depth() - i
		n := r.Node(level)
		idx := r.Index(level)
		leftKids := make([]*Node, 0, idx+1)
		leftKids = append(leftKids, n.Children[:idx]...)
		leftKids = append(leftKids, left)
		rightKids := make([]*Node, 0, len(n.Children)-idx)
		rightKids = append(rightKids, right)
		rightKids = append(rightKids, n.Children[idx+1:]...)
		left, right = n.WithChildren(leftKids), n.WithChildren(rightKids)
	}

	anchor := r.Depth() - s.Depth
	root := rebuild(r, anchor, replaceChild(r.Node(anchor), r.Index(anchor), left, right))
	return root, newStepMap(s.Pos, 0, 2*s.Depth), nil
}

// JoinStep fuses the two siblings adjacent at Pos into one node,
// keeping the left sibling's kind and attrs.
type JoinStep struct {
	Pos int
}

func (s *JoinStep) Apply(d *Node) (*Node, *StepMap, error) {
	r, err := Resolve(d, s.Pos)
	if err != nil {
		return nil, nil, err
	}
	before, after := r.NodeBefore(), r.NodeAfter()
	if !joinable(before, after) {
		return nil, nil, fmt.Errorf("join: no joinable siblings at %d", s.Pos)
	}
	idx := r.Index(r.Depth())
	merged := join(before, after)
	children := make([]*Node, 0, len(r.Parent().Children)-1)
	children = append(children, r.Parent().Children[:idx-1]...)
	children = append(children, merged)
	children = append(children, r.Parent().Children[idx+1:]...)
	root := rebuild(r, r.Depth(), r.Parent().WithChildren(children))
	return root, newStepMap(s.Pos-1, 2, 0), nil
}

// SetAttrsStep merges attributes onto the node starting at Pos.
type SetAttrsStep struct {
	Pos   int
	Attrs map[string]string
}

func (s *SetAttrsStep) Apply(d *Node) (*Node, *StepMap, error) {
	r, err := Resolve(d, s.Pos)
	if err != nil {
		return nil, nil, err
	}
	target := r.NodeAfter()
	if target == nil {
		return nil, nil, fmt.Errorf("set attrs: no node at %d", s.Pos)
	}
	root := rebuild(r, r.Depth(), replaceChild(r.Parent(), r.Index(r.Depth()), target.WithAttrs(s.Attrs)))
	return root, emptyStepMap, nil
}
