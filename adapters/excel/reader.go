package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"talentmetrics/domain/core"
	"talentmetrics/domain/grid"
	"talentmetrics/internal"
	"talentmetrics/internal/errors"
	"talentmetrics/ports"
)

// Loader reads spreadsheets and delimited text into cell grids
type Loader struct {
	cfg    LoaderConfig
	logger *internal.Logger
}

var _ ports.GridLoader = (*Loader)(nil)

// NewLoader creates a loader; a nil logger falls back to the default one
func NewLoader(cfg LoaderConfig, logger *internal.Logger) *Loader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if cfg.Comma == 0 {
		cfg.Comma = ','
	}
	return &Loader{cfg: cfg, logger: logger.Named("excel")}
}

// Load reads src into a grid. Every failure is an upstream load error.
func (l *Loader) Load(ctx context.Context, src ports.Source) (*grid.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.UpstreamLoadFailure(src.String(), err)
	}
	if _, err := os.Stat(src.Path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.UpstreamLoadFailure(src.String(), fmt.Errorf("%w: %s", core.ErrSourceNotFound, src.Path))
		}
		return nil, errors.UpstreamLoadFailure(src.String(), err)
	}

	start := time.Now()
	var (
		rows [][]string
		err  error
	)
	switch fileType := DetectFileType(src.Path); fileType {
	case FileTypeXLSX:
		rows, err = l.readWorkbook(src)
	case FileTypeCSV, FileTypeTSV:
		rows, err = l.readDelimited(src.Path, fileType)
	default:
		err = fmt.Errorf("%w: %s", core.ErrUnsupportedSource, src.Path)
	}
	if err != nil {
		return nil, errors.UpstreamLoadFailure(src.String(), err)
	}

	g := grid.FromStrings(rows)
	l.logger.Debug("loaded %s in %.2fms (%d rows x %d columns)",
		src, float64(time.Since(start).Nanoseconds())/1e6, g.NumRows(), g.Width())
	return g, nil
}

// Fingerprint hashes the raw file bytes together with the sheet selector
func (l *Loader) Fingerprint(ctx context.Context, src ports.Source) (core.Hash, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.UpstreamLoadFailure(src.String(), err)
	}
	data, err := os.ReadFile(src.Path)
	if err != nil {
		if os.IsNotExist(err) {
			err = fmt.Errorf("%w: %s", core.ErrSourceNotFound, src.Path)
		}
		return "", errors.UpstreamLoadFailure(src.String(), err)
	}
	return core.NewHash(append(data, []byte("#"+src.Sheet)...)), nil
}

// readWorkbook returns the raw cell values of one sheet. An empty sheet
// name selects the first sheet.
func (l *Loader) readWorkbook(src ports.Source) ([][]string, error) {
	f, err := excelize.OpenFile(src.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := resolveSheet(f, src)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func resolveSheet(f *excelize.File, src ports.Source) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", core.NewSheetNotFoundError(src.Path, src.Sheet)
	}
	if src.Sheet == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if s == src.Sheet {
			return s, nil
		}
	}
	for _, s := range sheets {
		if strings.EqualFold(s, src.Sheet) {
			return s, nil
		}
	}
	return "", core.NewSheetNotFoundError(src.Path, src.Sheet)
}

// readDelimited reads every record; ragged rows are allowed since section
// dumps rarely have a constant width
func (l *Loader) readDelimited(path string, fileType FileType) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fileType, err)
	}
	defer file.Close()

	return parseDelimited(file, l.delimiter(fileType), l.cfg.LazyQuotes)
}

func (l *Loader) delimiter(fileType FileType) rune {
	if fileType == FileTypeTSV {
		return '\t'
	}
	return l.cfg.Comma
}

func parseDelimited(r io.Reader, comma rune, lazyQuotes bool) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = lazyQuotes

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited text: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}
