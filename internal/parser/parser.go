// Package parser imports external document formats into the editable
// tree. Every importer returns flat blocks; pagination is the
// session's concern, so imported content starts on a single page.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pagemill/pagemill/internal/doc"
)

// Result is an imported document: a title and its top-level blocks.
type Result struct {
	Title  string
	Blocks []*doc.Node
}

// Document assembles the blocks into a one-page document ready for a
// session to paginate. An empty import yields a single empty paragraph
// so the document always has content to edit.
func (r *Result) Document() *doc.Node {
	blocks := r.Blocks
	if len(blocks) == 0 {
		blocks = []*doc.Node{doc.NewParagraph("")}
	}
	return doc.NewDoc(doc.NewPage(blocks...))
}

// Parser converts raw document bytes into blocks.
type Parser interface {
	Parse(r io.Reader, filename string) (*Result, error)
}

// SupportedExtensions lists file extensions this service can import.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".html": true,
	".htm":  true,
	".pdf":  true,
	".docx": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

func titleFromFilename(filename string, exts ...string) string {
	for _, e := range exts {
		filename = strings.TrimSuffix(filename, e)
	}
	return filename
}
