package excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"talentmetrics/domain/core"
	"talentmetrics/domain/grid"
	"talentmetrics/domain/table"
	"talentmetrics/ports"
)

// Workbook reads back a report written by WorkbookSink: each sheet is a
// header-first table.
type Workbook struct {
	path string
	file *excelize.File
}

var _ ports.ReportReader = (*Workbook)(nil)

// OpenWorkbook opens path for reading; callers must Close it
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Workbook{path: path, file: f}, nil
}

// TableNames returns the sheet names in workbook order
func (w *Workbook) TableNames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return w.file.GetSheetList(), nil
}

// ReadTable reads the sheet called name. Fully blank rows are not
// returned.
func (w *Workbook) ReadTable(ctx context.Context, name string) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if idx, err := w.file.GetSheetIndex(name); err != nil || idx < 0 {
		return nil, core.NewTableNotFoundError(name)
	}
	rows, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return table.FromGrid(grid.FromStrings(rows)), nil
}

// Close releases the file
func (w *Workbook) Close() error {
	return w.file.Close()
}
