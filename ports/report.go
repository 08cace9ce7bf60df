package ports

import (
	"context"

	"talentmetrics/domain/table"
)

// ReportSink persists named tables. Tables are written in call order;
// Close flushes and releases the sink, after which writes fail with
// core.ErrSinkClosed.
type ReportSink interface {
	WriteTable(ctx context.Context, name string, t *table.Table) error
	Close() error
}

// ReportReader reads back what a sink wrote, where the sink supports it
type ReportReader interface {
	TableNames(ctx context.Context) ([]string, error)
	ReadTable(ctx context.Context, name string) (*table.Table, error)
}
