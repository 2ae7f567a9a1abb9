package parser

import (
	"strings"
	"testing"

	"github.com/pagemill/pagemill/internal/doc"
)

func TestMarkdownParser_Blocks(t *testing.T) {
	input := `# Title

Intro text.

> quoted line

- one
- two
`
	p := &MarkdownParser{}
	result, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Title != "doc" {
		t.Errorf("expected title %q, got %q", "doc", result.Title)
	}
	if len(result.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(result.Blocks))
	}

	h := result.Blocks[0]
	if h.Kind != doc.KindHeading || h.Text != "Title" {
		t.Errorf("expected h1 %q, got %v %q", "Title", h.Kind, h.Text)
	}
	if h.Attr("level") != "1" {
		t.Errorf("expected level %q, got %q", "1", h.Attr("level"))
	}

	para := result.Blocks[1]
	if para.Kind != doc.KindParagraph || para.Text != "Intro text." {
		t.Errorf("expected paragraph %q, got %v %q", "Intro text.", para.Kind, para.Text)
	}

	bq := result.Blocks[2]
	if bq.Kind != doc.KindBlockquote || len(bq.Children) != 1 {
		t.Fatalf("expected blockquote with 1 block, got %v", bq)
	}
	if bq.Child(0).Text != "quoted line" {
		t.Errorf("expected quoted text %q, got %q", "quoted line", bq.Child(0).Text)
	}

	list := result.Blocks[3]
	if list.Kind != doc.KindParagraph || list.Text != "one\ntwo" {
		t.Errorf("expected flattened list %q, got %q", "one\ntwo", list.Text)
	}
}

func TestMarkdownParser_HeadingLevels(t *testing.T) {
	input := "## Second\n\n### Third\n"
	p := &MarkdownParser{}
	result, err := p.Parse(strings.NewReader(input), "levels.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(result.Blocks))
	}
	if got := result.Blocks[0].Attr("level"); got != "2" {
		t.Errorf("expected level %q, got %q", "2", got)
	}
	if got := result.Blocks[1].Attr("level"); got != "3" {
		t.Errorf("expected level %q, got %q", "3", got)
	}
}

func TestMarkdownParser_CodeBlock(t *testing.T) {
	input := "```\nfirst line\nsecond line\n```\n"
	p := &MarkdownParser{}
	result, err := p.Parse(strings.NewReader(input), "code.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(result.Blocks))
	}
	got := result.Blocks[0].Text
	if !strings.Contains(got, "first line") || !strings.Contains(got, "second line") {
		t.Errorf("expected code content preserved, got %q", got)
	}
}

func TestResultDocument(t *testing.T) {
	result := &Result{Blocks: []*doc.Node{doc.NewParagraph("hello")}}
	d := result.Document()
	if doc.PageCount(d) != 1 {
		t.Fatalf("expected a single page, got %d", doc.PageCount(d))
	}
	if d.Child(0).Child(0).Text != "hello" {
		t.Errorf("expected block carried onto the page")
	}

	empty := &Result{}
	d = empty.Document()
	if doc.PageCount(d) != 1 || len(d.Child(0).Children) != 1 {
		t.Fatal("expected an empty import to yield one empty paragraph")
	}
	if d.Child(0).Child(0).Kind != doc.KindParagraph || d.Child(0).Child(0).Text != "" {
		t.Error("expected the placeholder block to be an empty paragraph")
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		filename string
		ok       bool
	}{
		{"doc.md", true},
		{"doc.txt", true},
		{"doc.html", true},
		{"doc.csv", true},
		{"doc.pdf", true},
		{"doc.docx", true},
		{"doc.exe", false},
	}
	for _, tt := range tests {
		_, err := ForFile(tt.filename)
		if (err == nil) != tt.ok {
			t.Errorf("ForFile(%q): expected ok=%v, got err=%v", tt.filename, tt.ok, err)
		}
	}
	if IsSupportedExtension("doc.exe") {
		t.Error("expected .exe to be unsupported")
	}
	if !IsSupportedExtension("doc.MD") {
		t.Error("expected extension check to be case-insensitive")
	}
}
