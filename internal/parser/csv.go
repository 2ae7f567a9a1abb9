package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pagemill/pagemill/internal/doc"
)

// CSVParser handles CSV files: header-labelled rows, one paragraph per
// batch so very wide files still produce workable blocks.
type CSVParser struct{}

const csvBatchSize = 20

func (p *CSVParser) Parse(r io.Reader, filename string) (*Result, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	result := &Result{Title: titleFromFilename(filename, ".csv")}
	if len(records) == 0 {
		return result, nil
	}

	headers := records[0]
	dataRows := records[1:]

	for i := 0; i < len(dataRows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(dataRows))

		var text strings.Builder
		text.WriteString("Headers: " + strings.Join(headers, ", "))
		for _, row := range dataRows[i:end] {
			text.WriteString("\n")
			for j, cell := range row {
				if j > 0 {
					text.WriteString(", ")
				}
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
			}
		}
		result.Blocks = append(result.Blocks, doc.NewParagraph(text.String()))
	}
	return result, nil
}
