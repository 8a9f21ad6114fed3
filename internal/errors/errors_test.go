package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_WithCause_IncludesCauseInMessage(t *testing.T) {
	cause := fmt.Errorf("open failed")
	err := Wrap(cause, CategoryFileSystem, SeverityError, "cannot read metadata")

	require.Contains(t, err.Error(), "filesystem")
	require.Contains(t, err.Error(), "open failed")
	require.True(t, errors.Is(err, cause))
}

func TestConfigError_IsFatal(t *testing.T) {
	err := ConfigError("unknown layout strategy")

	require.True(t, IsFatal(err))
	require.True(t, IsCategory(err, CategoryConfig))
}

func TestGetCategory_PlainError_ReturnsInternal(t *testing.T) {
	require.Equal(t, CategoryInternal, GetCategory(fmt.Errorf("boom")))
}

func TestWithContext_AccumulatesFields(t *testing.T) {
	err := New(CategoryResolve, SeverityWarning, "unresolved uid").
		WithContext("uid", "Totally.Unknown").
		WithContext("doc", "ns.a.md")

	require.Equal(t, "Totally.Unknown", err.Context["uid"])
	require.Equal(t, "ns.a.md", err.Context["doc"])
}
