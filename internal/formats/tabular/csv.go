package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/mind-engage/mindengage-qbank/internal/formats"
	"github.com/mind-engage/mindengage-qbank/internal/formats/text"
)

func init() {
	formats.Register(NewCSV(','), ".csv")
	formats.Register(NewCSV('\t'), ".tsv")
}

// CSVAdapter reads delimited text through encoding/csv and renders it with Render.
type CSVAdapter struct {
	Comma rune
}

func NewCSV(comma rune) *CSVAdapter { return &CSVAdapter{Comma: comma} }

func (a *CSVAdapter) Flatten(ctx context.Context, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if b, err = text.Decode(b); err != nil {
		return "", err
	}
	cr := csv.NewReader(bytes.NewReader(b))
	cr.Comma = a.Comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return Render(rows), nil
}
