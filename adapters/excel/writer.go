package excel

import (
	"context"
	"fmt"
	"sync"

	"github.com/xuri/excelize/v2"

	"talentmetrics/domain/core"
	"talentmetrics/domain/table"
	"talentmetrics/internal"
	"talentmetrics/ports"
)

const defaultSheet = "Sheet1"

// WorkbookSink writes every table to its own sheet of one .xlsx file.
// Nothing reaches disk until Close.
type WorkbookSink struct {
	path   string
	cfg    SinkConfig
	logger *internal.Logger

	mu      sync.Mutex
	file    *excelize.File
	written []string
	closed  bool
}

var _ ports.ReportSink = (*WorkbookSink)(nil)

// NewWorkbookSink starts an in-memory workbook that Close saves to path
func NewWorkbookSink(path string, cfg SinkConfig, logger *internal.Logger) *WorkbookSink {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &WorkbookSink{
		path:   path,
		cfg:    cfg,
		logger: logger.Named("workbook"),
		file:   excelize.NewFile(),
	}
}

// WriteTable adds a sheet called name: a header row, then one row per
// record. Missing cells are left blank.
func (s *WorkbookSink) WriteTable(ctx context.Context, name string, t *table.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return core.ErrSinkClosed
	}
	for _, w := range s.written {
		if w == name {
			return fmt.Errorf("%w: %s", core.ErrDuplicateName, name)
		}
	}

	if _, err := s.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %q: %w", name, err)
	}
	if err := s.writeRows(name, t); err != nil {
		return err
	}
	if s.cfg.WidthColumns > 0 && s.cfg.ColumnWidth > 0 {
		last, err := excelize.ColumnNumberToName(s.cfg.WidthColumns)
		if err != nil {
			return err
		}
		if err := s.file.SetColWidth(name, "A", last, s.cfg.ColumnWidth); err != nil {
			return fmt.Errorf("set column width on %q: %w", name, err)
		}
	}

	s.written = append(s.written, name)
	s.logger.Debug("wrote sheet %s (%d rows)", name, t.Len())
	return nil
}

func (s *WorkbookSink) writeRows(sheet string, t *table.Table) error {
	if t.Width() == 0 {
		return nil
	}
	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := s.file.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header of %q: %w", sheet, err)
	}

	for r, row := range t.Rows {
		values := make([]interface{}, len(row))
		for j, c := range row {
			values[j] = c.Value()
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := s.file.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d of %q: %w", r+1, sheet, err)
		}
	}
	return nil
}

// Close saves the workbook. The default sheet is dropped unless a table was
// written under its name. Closing twice is a no-op.
func (s *WorkbookSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	defer s.file.Close()

	if len(s.written) > 0 && !s.wrote(defaultSheet) {
		if err := s.file.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("drop default sheet: %w", err)
		}
		if idx, err := s.file.GetSheetIndex(s.written[0]); err == nil && idx >= 0 {
			s.file.SetActiveSheet(idx)
		}
	}

	if err := s.file.SaveAs(s.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", s.path, err)
	}
	s.logger.Info("saved %s (%d sheets)", s.path, len(s.written))
	return nil
}

func (s *WorkbookSink) wrote(name string) bool {
	for _, w := range s.written {
		if w == name {
			return true
		}
	}
	return false
}
