// Package doc implements the document model the pagination engine edits:
// an immutable ordered tree with integer token positions, position
// resolution, and invertible edit steps with position maps.
package doc

import "unicode/utf8"

// Kind identifies a node type in the document tree.
type Kind uint8

const (
	KindDoc Kind = iota
	KindPage
	KindBlockquote
	KindParagraph
	KindHeading
)

func (k Kind) String() string {
	switch k {
	case KindDoc:
		return "doc"
	case KindPage:
		return "page"
	case KindBlockquote:
		return "blockquote"
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	}
	return "unknown"
}

// Textblock reports whether nodes of this kind carry flat text
// instead of child nodes.
func (k Kind) Textblock() bool {
	return k == KindParagraph || k == KindHeading
}

// Container reports whether nodes of this kind hold child nodes.
func (k Kind) Container() bool {
	return !k.Textblock()
}

// AttrOrigin is the attribute key carrying the origin tag written onto
// both fragments of an engine-made split.
const AttrOrigin = "origin"

// Node is one node of a document tree. Nodes are immutable: every edit
// produces a new tree sharing unchanged subtrees with the old one.
//
// Positions are token offsets in the flattened tree. A textblock
// occupies 2 + rune-count tokens (open, runes, close); a container
// occupies 2 + the sum of its children. Positions within the root's
// content run from 0 to ContentSize.
type Node struct {
	Kind     Kind
	Attrs    map[string]string
	Text     string  // textblocks only
	Children []*Node // containers only

	size int
}

func newNode(kind Kind, attrs map[string]string, text string, children []*Node) *Node {
	n := &Node{Kind: kind, Attrs: attrs, Text: text, Children: children, size: 2}
	if kind.Textblock() {
		n.size += utf8.RuneCountInString(text)
	} else {
		for _, c := range children {
			n.size += c.size
		}
	}
	return n
}

// NewDoc builds a document root from page nodes.
func NewDoc(pages ...*Node) *Node {
	return newNode(KindDoc, nil, "", pages)
}

// NewPage builds a page node from block nodes.
func NewPage(blocks ...*Node) *Node {
	return newNode(KindPage, nil, "", blocks)
}

// NewBlockquote builds a blockquote container from block nodes.
func NewBlockquote(blocks ...*Node) *Node {
	return newNode(KindBlockquote, nil, "", blocks)
}

// NewParagraph builds a paragraph textblock.
func NewParagraph(text string) *Node {
	return newNode(KindParagraph, nil, text, nil)
}

// NewHeading builds a heading textblock of the given level (1-6).
func NewHeading(level int, text string) *Node {
	return newNode(KindHeading, map[string]string{"level": levelString(level)}, text, nil)
}

func levelString(level int) string {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return string(rune('0' + level))
}

// Size is the token width of the node including its open and close tokens.
func (n *Node) Size() int { return n.size }

// ContentSize is the token width of the node's content.
func (n *Node) ContentSize() int { return n.size - 2 }

// Attr returns the attribute value for key, or "" when absent.
func (n *Node) Attr(key string) string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs[key]
}

// TextLen is the rune count of a textblock's text.
func (n *Node) TextLen() int { return utf8.RuneCountInString(n.Text) }

// WithText returns a copy of the textblock carrying the given text.
func (n *Node) WithText(text string) *Node {
	return newNode(n.Kind, n.Attrs, text, nil)
}

// WithChildren returns a copy of the container carrying the given children.
func (n *Node) WithChildren(children []*Node) *Node {
	return newNode(n.Kind, n.Attrs, "", children)
}

// WithAttrs returns a copy with attrs merged over the existing ones.
func (n *Node) WithAttrs(attrs map[string]string) *Node {
	merged := make(map[string]string, len(n.Attrs)+len(attrs))
	for k, v := range n.Attrs {
		merged[k] = v
	}
	for k, v := range attrs {
		merged[k] = v
	}
	return newNode(n.Kind, merged, n.Text, n.Children)
}

// Child returns the i-th child, or nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// Eq reports structural equality: same kinds, attrs, text and children.
func (n *Node) Eq(other *Node) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil {
		return false
	}
	if n.Kind != other.Kind || n.Text != other.Text || len(n.Children) != len(other.Children) {
		return false
	}
	if len(n.Attrs) != len(other.Attrs) {
		return false
	}
	for k, v := range n.Attrs {
		if other.Attr(k) != v {
			return false
		}
	}
	for i, c := range n.Children {
		if !c.Eq(other.Children[i]) {
			return false
		}
	}
	return true
}

// joinable reports whether two sibling nodes may be fused into one.
func joinable(a, b *Node) bool {
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	if a.Kind == KindHeading && a.Attr("level") != b.Attr("level") {
		return false
	}
	return a.Kind != KindDoc
}

// join fuses two joinable siblings, keeping the left node's kind and attrs.
func join(a, b *Node) *Node {
	if a.Kind.Textblock() {
		return newNode(a.Kind, a.Attrs, a.Text+b.Text, nil)
	}
	children := make([]*Node, 0, len(a.Children)+len(b.Children))
	children = append(children, a.Children...)
	children = append(children, b.Children...)
	return newNode(a.Kind, a.Attrs, "", children)
}
