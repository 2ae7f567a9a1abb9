package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/pagemill/pagemill/internal/doc"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Result, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	root := md.Parser().Parse(reader)

	result := &Result{Title: titleFromFilename(filename, ".md", ".markdown")}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if block := blockFromAST(n, src); block != nil {
			result.Blocks = append(result.Blocks, block)
		}
	}
	return result, nil
}

// blockFromAST converts one top-level goldmark node into a block.
func blockFromAST(n ast.Node, src []byte) *doc.Node {
	switch node := n.(type) {
	case *ast.Heading:
		return doc.NewHeading(node.Level, string(node.Text(src)))
	case *ast.Blockquote:
		var inner []*doc.Node
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			if b := blockFromAST(c, src); b != nil {
				inner = append(inner, b)
			}
		}
		if len(inner) == 0 {
			return nil
		}
		return doc.NewBlockquote(inner...)
	case *ast.List:
		// Flatten list items into one paragraph per item.
		var items []string
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			if t := extractText(item, src); t != "" {
				items = append(items, t)
			}
		}
		if len(items) == 0 {
			return nil
		}
		return doc.NewParagraph(strings.Join(items, "\n"))
	default:
		if t := extractText(n, src); t != "" {
			return doc.NewParagraph(t)
		}
		return nil
	}
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	// Blocks without inline children (code blocks) keep their raw lines;
	// everything else reads its inline text, so nothing is counted twice.
	if n.Type() == ast.TypeBlock && n.FirstChild() == nil {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
