package build

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_FormatAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := WrapError(cause, CategoryParse, SeverityError, "invalid frontmatter")

	require.Contains(t, err.Error(), "parse")
	require.Contains(t, err.Error(), "boom")
	require.True(t, errors.Is(err, cause))
}

func TestIsCategory_ThroughWrapping(t *testing.T) {
	err := NewError(CategoryCollision, SeverityFatal, "clash")
	wrapped := fmt.Errorf("stage plan_outputs: %w", err)

	require.True(t, IsCategory(wrapped, CategoryCollision))
	require.False(t, IsCategory(wrapped, CategoryParse))
	require.Equal(t, CategoryCollision, GetCategory(wrapped))
}

func TestGetCategory_UnclassifiedDefaultsToInternal(t *testing.T) {
	require.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
}

func TestStageError_WrapsClassifiedError(t *testing.T) {
	be := NewError(CategoryIO, SeverityFatal, "unreadable")
	se := newFatalStageError(StageLoad, be)

	require.True(t, IsCategory(se, CategoryIO))
	require.Contains(t, se.Error(), "load_content")
}
