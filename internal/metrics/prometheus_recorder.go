package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once              sync.Once
	phaseDuration     *prom.HistogramVec
	buildDuration     prom.Histogram
	recordsDiscovered prom.Counter
	membersCombined   prom.Counter
	markersResolved   *prom.CounterVec
	buildOutcome      *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.phaseDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "refdocs",
			Name:      "phase_duration_seconds",
			Help:      "Duration of individual pipeline phases",
			Buckets:   prom.DefBuckets,
		}, []string{"phase"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "refdocs",
			Name:      "build_duration_seconds",
			Help:      "Total generation run duration",
			Buckets:   prom.DefBuckets,
		})
		pr.recordsDiscovered = prom.NewCounter(prom.CounterOpts{
			Namespace: "refdocs",
			Name:      "records_discovered_total",
			Help:      "Records assigned an output path during discovery",
		})
		pr.membersCombined = prom.NewCounter(prom.CounterOpts{
			Namespace: "refdocs",
			Name:      "members_combined_total",
			Help:      "Member records rewritten onto their parent's page",
		})
		pr.markersResolved = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "refdocs",
			Name:      "markers_resolved_total",
			Help:      "Cross-reference markers by resolution outcome",
		}, []string{"outcome"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "refdocs",
			Name:      "build_outcomes_total",
			Help:      "Generation run outcomes by final status",
		}, []string{"outcome"})
		reg.MustRegister(pr.phaseDuration, pr.buildDuration, pr.recordsDiscovered, pr.membersCombined, pr.markersResolved, pr.buildOutcome)
	})
	return pr
}

func (pr *PrometheusRecorder) ObservePhaseDuration(phase string, d time.Duration) {
	pr.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	pr.buildDuration.Observe(d.Seconds())
}

func (pr *PrometheusRecorder) AddRecordsDiscovered(n int) {
	pr.recordsDiscovered.Add(float64(n))
}

func (pr *PrometheusRecorder) AddMembersCombined(n int) {
	pr.membersCombined.Add(float64(n))
}

func (pr *PrometheusRecorder) IncMarkerResolved(outcome string) {
	pr.markersResolved.WithLabelValues(outcome).Inc()
}

func (pr *PrometheusRecorder) IncBuildOutcome(outcome string) {
	pr.buildOutcome.WithLabelValues(outcome).Inc()
}
