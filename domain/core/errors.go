package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Load errors. These are the only hard failures; everything downstream
	// treats missing data as empty input.
	ErrUpstreamLoad      = errors.New("upstream load failed")
	ErrSheetNotFound     = fmt.Errorf("%w: sheet not found", ErrUpstreamLoad)
	ErrUnsupportedSource = fmt.Errorf("%w: unsupported source type", ErrUpstreamLoad)
	ErrSourceNotFound    = fmt.Errorf("%w: source file not found", ErrUpstreamLoad)

	// Sink errors
	ErrTableNotFound = errors.New("table not found")
	ErrSinkClosed    = errors.New("report sink already closed")
	ErrDuplicateName = errors.New("duplicate table name")
)

// Error constructors with context
func NewSheetNotFoundError(path, sheet string) error {
	return fmt.Errorf("%w: %q in %s", ErrSheetNotFound, sheet, path)
}

func NewTableNotFoundError(name string) error {
	return fmt.Errorf("%w: %s", ErrTableNotFound, name)
}

// Error checking helpers
func IsUpstreamLoadError(err error) bool {
	return errors.Is(err, ErrUpstreamLoad)
}

func IsTableNotFoundError(err error) bool {
	return errors.Is(err, ErrTableNotFound)
}
