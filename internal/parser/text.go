package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/pagemill/pagemill/internal/doc"
)

// TextParser handles plain text files: blank lines separate paragraphs.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	result := &Result{Title: titleFromFilename(filename, ".txt")}
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			result.Blocks = append(result.Blocks, doc.NewParagraph(current.String()))
			current.Reset()
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
