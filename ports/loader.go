package ports

import (
	"context"
	"fmt"

	"talentmetrics/domain/core"
	"talentmetrics/domain/grid"
)

// Source identifies one input: a file path plus an optional sheet selector.
// Delimited text files ignore the sheet.
type Source struct {
	Path  string `json:"path"`
	Sheet string `json:"sheet,omitempty"`
}

// String renders the source for logs and cache keys
func (s Source) String() string {
	if s.Sheet == "" {
		return s.Path
	}
	return fmt.Sprintf("%s#%s", s.Path, s.Sheet)
}

// GridLoader turns a source file into a cell grid.
// Every failure is an upstream load error (core.ErrUpstreamLoad).
type GridLoader interface {
	Load(ctx context.Context, src Source) (*grid.Grid, error)
	// Fingerprint hashes the source content without parsing it
	Fingerprint(ctx context.Context, src Source) (core.Hash, error)
}
