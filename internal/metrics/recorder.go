// Package metrics defines observability hooks for the generation pipeline.
package metrics

import "time"

// Recorder defines observability hooks for discovery and resolution metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObservePhaseDuration(phase string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	AddRecordsDiscovered(n int)
	AddMembersCombined(n int)
	IncMarkerResolved(outcome string) // outcome: internal|external|fallback|unresolved
	IncBuildOutcome(outcome string)   // outcome: success|warning|failed
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePhaseDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) AddRecordsDiscovered(int)                   {}
func (NoopRecorder) AddMembersCombined(int)                     {}
func (NoopRecorder) IncMarkerResolved(string)                   {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
