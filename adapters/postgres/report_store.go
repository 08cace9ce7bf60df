package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"talentmetrics/domain/core"
	"talentmetrics/domain/grid"
	"talentmetrics/domain/report"
	"talentmetrics/domain/table"
	"talentmetrics/internal/errors"
	"talentmetrics/internal/migration"
	"talentmetrics/ports"
)

// uniqueViolation is the SQLSTATE postgres raises on a duplicate key
const uniqueViolation = "23505"

// Connect opens the report database and applies the schema
func Connect(ctx context.Context, url string, maxOpenConns int) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), "failed to connect to report database")
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// tableRecord is one row of report_tables. JSON goes to the driver as text;
// lib/pq would send []byte as bytea.
type tableRecord struct {
	Name     string `db:"name"`
	Position int    `db:"position"`
	Columns  []byte `db:"columns"`
	Rows     []byte `db:"rows"`
	Degraded bool   `db:"degraded"`
}

// RunSummary describes one stored report run
type RunSummary struct {
	RunID        core.RunID `db:"run_id" json:"run_id"`
	GeneratedAt  time.Time  `db:"generated_at" json:"generated_at"`
	LabelVersion string     `db:"label_version" json:"label_version"`
	Tables       int        `db:"tables" json:"tables"`
}

// ReportStore persists the tables of one run. It is both the sink and the
// reader for that run; the database handle is owned by the caller.
type ReportStore struct {
	db    *sqlx.DB
	runID core.RunID

	mu       sync.Mutex
	position int
	closed   bool
}

var (
	_ ports.ReportSink   = (*ReportStore)(nil)
	_ ports.ReportReader = (*ReportStore)(nil)
)

// NewReportStore binds a store to runID
func NewReportStore(db *sqlx.DB, runID core.RunID) *ReportStore {
	return &ReportStore{db: db, runID: runID}
}

// RunID returns the run the store reads and writes
func (s *ReportStore) RunID() core.RunID {
	return s.runID
}

// SaveRun records the run metadata and diagnostics of r
func (s *ReportStore) SaveRun(ctx context.Context, r *report.Report) error {
	diagnostics, err := json.Marshal(r.Diagnostics)
	if err != nil {
		return fmt.Errorf("encode diagnostics: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO report_runs (run_id, generated_at, label_version, diagnostics)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id) DO UPDATE
		SET generated_at = EXCLUDED.generated_at,
			label_version = EXCLUDED.label_version,
			diagnostics = EXCLUDED.diagnostics
	`, s.runID.String(), r.GeneratedAt.Time(), r.LabelVersion, string(diagnostics))
	return err
}

// WriteTable stores t under name, after every table written before it
func (s *ReportStore) WriteTable(ctx context.Context, name string, t *table.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return core.ErrSinkClosed
	}

	record, err := encodeTable(name, s.position, t)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO report_runs (run_id) VALUES ($1) ON CONFLICT (run_id) DO NOTHING
	`, s.runID.String()); err != nil {
		return err
	}
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO report_tables (run_id, name, position, columns, rows, degraded, created_at)
		VALUES (:run_id, :name, :position, :columns, :rows, :degraded, NOW())
	`, map[string]interface{}{
		"run_id":   s.runID.String(),
		"name":     record.Name,
		"position": record.Position,
		"columns":  string(record.Columns),
		"rows":     string(record.Rows),
		"degraded": record.Degraded,
	})
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", core.ErrDuplicateName, name)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.position++
	return nil
}

// Close stops further writes; the database stays open
func (s *ReportStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// TableNames returns the run's tables in write order
func (s *ReportStore) TableNames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.SelectContext(ctx, &names, `
		SELECT name FROM report_tables
		WHERE run_id = $1
		ORDER BY position ASC
	`, s.runID.String())
	return names, err
}

// ReadTable loads the table called name
func (s *ReportStore) ReadTable(ctx context.Context, name string) (*table.Table, error) {
	var record tableRecord
	err := s.db.GetContext(ctx, &record, `
		SELECT name, position, columns, rows, degraded
		FROM report_tables
		WHERE run_id = $1 AND name = $2
	`, s.runID.String(), name)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, core.NewTableNotFoundError(name)
	}
	if err != nil {
		return nil, err
	}
	return decodeTable(record)
}

// ListRuns returns the most recent runs first
func ListRuns(ctx context.Context, db *sqlx.DB, limit int) ([]RunSummary, error) {
	query := `
		SELECT r.run_id, r.generated_at, r.label_version, COUNT(t.name) AS tables
		FROM report_runs r
		LEFT JOIN report_tables t ON t.run_id = r.run_id
		GROUP BY r.run_id, r.generated_at, r.label_version
		ORDER BY r.generated_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	var runs []RunSummary
	if err := db.SelectContext(ctx, &runs, query, args...); err != nil {
		return nil, err
	}
	return runs, nil
}

func encodeTable(name string, position int, t *table.Table) (tableRecord, error) {
	columns := t.Columns
	if columns == nil {
		columns = []string{}
	}
	rows := t.Rows
	if rows == nil {
		rows = [][]grid.Cell{}
	}

	colJSON, err := json.Marshal(columns)
	if err != nil {
		return tableRecord{}, fmt.Errorf("encode columns of %s: %w", name, err)
	}
	rowJSON, err := json.Marshal(rows)
	if err != nil {
		return tableRecord{}, fmt.Errorf("encode rows of %s: %w", name, err)
	}
	return tableRecord{Name: name, Position: position, Columns: colJSON, Rows: rowJSON, Degraded: t.Degraded}, nil
}

func decodeTable(record tableRecord) (*table.Table, error) {
	t := &table.Table{Degraded: record.Degraded}
	if err := json.Unmarshal(record.Columns, &t.Columns); err != nil {
		return nil, fmt.Errorf("decode columns of %s: %w", record.Name, err)
	}
	if err := json.Unmarshal(record.Rows, &t.Rows); err != nil {
		return nil, fmt.Errorf("decode rows of %s: %w", record.Name, err)
	}
	return t, nil
}
