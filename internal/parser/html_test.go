package parser

import (
	"strings"
	"testing"

	"github.com/pagemill/pagemill/internal/doc"
)

func TestHTMLParser_Blocks(t *testing.T) {
	input := `<html>
<head><title>Page Title</title></head>
<body>
<h1>Heading</h1>
<p>First paragraph.</p>
<blockquote><p>Quoted.</p></blockquote>
<script>ignore();</script>
</body>
</html>`

	p := &HTMLParser{}
	result, err := p.Parse(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Title != "Page Title" {
		t.Errorf("expected title from <title>, got %q", result.Title)
	}
	if len(result.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(result.Blocks))
	}

	h := result.Blocks[0]
	if h.Kind != doc.KindHeading || h.Text != "Heading" || h.Attr("level") != "1" {
		t.Errorf("unexpected heading block: %v %q level %q", h.Kind, h.Text, h.Attr("level"))
	}
	if got := result.Blocks[1].Text; got != "First paragraph." {
		t.Errorf("expected %q, got %q", "First paragraph.", got)
	}
	bq := result.Blocks[2]
	if bq.Kind != doc.KindBlockquote || len(bq.Children) != 1 || bq.Child(0).Text != "Quoted." {
		t.Errorf("unexpected blockquote: %v", bq)
	}
}

func TestHTMLParser_FallbackTitle(t *testing.T) {
	p := &HTMLParser{}
	result, err := p.Parse(strings.NewReader("<p>body only</p>"), "snippet.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Title != "snippet" {
		t.Errorf("expected filename title %q, got %q", "snippet", result.Title)
	}
}
