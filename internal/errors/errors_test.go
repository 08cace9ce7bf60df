package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"talentmetrics/domain/core"
)

func TestWrapKeepsCode(t *testing.T) {
	base := ConfigInvalid("TALENT_MIX_WINDOW must be positive")
	wrapped := Wrapf(base, "loading %s", "config")

	assert.Equal(t, CodeConfigInvalid, GetCode(wrapped))
	assert.Contains(t, wrapped.Error(), "loading config")
	assert.Nil(t, Wrap(nil, "ignored"))
	assert.Equal(t, CodeInternalError, GetCode(Wrap(fmt.Errorf("plain"), "ctx")))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}

func TestUpstreamLoadFailure(t *testing.T) {
	err := UpstreamLoadFailure("exits.csv", fmt.Errorf("permission denied"))
	assert.Equal(t, CodeUpstreamLoad, err.Code)
	assert.True(t, core.IsUpstreamLoadError(err))
	assert.Contains(t, err.Error(), "permission denied")

	sheet := UpstreamLoadFailure("2025.xlsx", core.NewSheetNotFoundError("2025.xlsx", "NPS"))
	assert.True(t, stderrors.Is(sheet, core.ErrSheetNotFound))

	assert.True(t, core.IsUpstreamLoadError(UpstreamLoadFailure("x", nil)))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeSinkError, fmt.Errorf("disk full"))
	assert.Equal(t, CodeSinkError, GetCode(err))
	assert.True(t, IsAppError(err))
	assert.Nil(t, WithCode(CodeSinkError, nil))
}

func TestGetCodeFollowsWrapping(t *testing.T) {
	inner := NotFound("table X")
	wrapped := fmt.Errorf("handler: %w", inner)
	assert.Equal(t, CodeNotFound, GetCode(wrapped))
	assert.True(t, IsAppError(wrapped))
	assert.False(t, IsAppError(stderrors.New("plain")))
}
