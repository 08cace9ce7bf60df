package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("WARN"))
	assert.Equal(t, LogLevelDebug, ParseLogLevel(" debug "))
	assert.Equal(t, LogLevelTrace, ParseLogLevel("TRACE"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestNopLoggerIsSilent(t *testing.T) {
	l := NewNopLogger().Named("test").With("input", "exits")
	assert.NotPanics(t, func() {
		l.Error("boom %d", 1)
		l.Trace("hidden")
	})
	assert.Equal(t, LogLevelError, l.GetLevel())
}
