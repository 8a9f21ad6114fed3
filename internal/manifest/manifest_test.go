package manifest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUnchanged_UnknownPath_ReportsChanged(t *testing.T) {
	s := openTestStore(t)

	ok, err := s.Unchanged(context.Background(), "a.md", Hash([]byte("hello")))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRecordThenUnchanged_SameContent_ReportsUnchanged(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	h := Hash([]byte("hello"))

	require.NoError(t, s.Record(ctx, "a.md", h, "build-1"))

	ok, err := s.Unchanged(ctx, "a.md", h)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Unchanged(ctx, "a.md", Hash([]byte("changed")))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStale_ReturnsAndPrunesEntriesFromOlderBuilds(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, "kept.md", Hash([]byte("k")), "build-1"))
	require.NoError(t, s.Record(ctx, "dropped.md", Hash([]byte("d")), "build-1"))
	require.NoError(t, s.Record(ctx, "kept.md", Hash([]byte("k")), "build-2"))

	stale, err := s.Stale(ctx, "build-2")
	require.NoError(t, err)
	require.Equal(t, []string{"dropped.md"}, stale)

	// Pruned: a second sweep finds nothing.
	stale, err = s.Stale(ctx, "build-2")
	require.NoError(t, err)
	require.Empty(t, stale)
}
