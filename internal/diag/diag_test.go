package diag

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollector_ConcurrentAdds_AllRecorded(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(Diagnostic{Kind: UnresolvedRef, UID: "X"})
		}()
	}
	wg.Wait()
	require.Equal(t, 50, c.Count())
	require.Equal(t, 50, c.CountKind(UnresolvedRef))
}

func TestSummary_GroupsByKind(t *testing.T) {
	c := NewCollector()
	c.Add(Diagnostic{Kind: UnresolvedRef})
	c.Add(Diagnostic{Kind: UnresolvedRef})
	c.Add(Diagnostic{Kind: RecordSkipped})

	require.Equal(t, []string{"record-skipped: 1", "unresolved-reference: 2"}, c.Summary())
}
