package xlsx

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mind-engage/mindengage-qbank/internal/formats"
	"github.com/mind-engage/mindengage-qbank/internal/formats/tabular"
)

func init() {
	formats.Register(New(), ".xlsx", ".xlsm")
}

type Adapter struct{}

func New() *Adapter { return &Adapter{} }

// Flatten reads every sheet in workbook order and renders it with
// tabular.RenderSheets.
func (a *Adapter) Flatten(ctx context.Context, r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sheets [][][]string
	for _, name := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets = append(sheets, rows)
	}
	return tabular.RenderSheets(sheets), nil
}
