package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_CountersMove(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObservePhaseDuration("discover", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.AddRecordsDiscovered(3)
	pr.AddMembersCombined(2)
	pr.IncMarkerResolved("internal")
	pr.IncMarkerResolved("internal")
	pr.IncMarkerResolved("unresolved")
	pr.IncBuildOutcome("success")

	require.Equal(t, 3.0, testutil.ToFloat64(pr.recordsDiscovered))
	require.Equal(t, 2.0, testutil.ToFloat64(pr.membersCombined))
	require.Equal(t, 2.0, testutil.ToFloat64(pr.markersResolved.WithLabelValues("internal")))
	require.Equal(t, 1.0, testutil.ToFloat64(pr.markersResolved.WithLabelValues("unresolved")))
	require.Equal(t, 1.0, testutil.ToFloat64(pr.buildOutcome.WithLabelValues("success")))

	// Basic scrape to ensure metrics encode without panic.
	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 6)
}

func TestHTTPHandler_ServesRegisteredMetrics(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.AddRecordsDiscovered(7)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "refdocs_records_discovered_total 7")
}
