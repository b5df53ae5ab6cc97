// Package metrics provides build observability through a Recorder interface.
//
// Components receive a Recorder by dependency injection and default to
// NoopRecorder, so metrics impose zero overhead until a real implementation
// (Prometheus, see prometheus_recorder.go) is swapped in. The daemon does the
// swap and serves the /metrics endpoint.
package metrics

import "time"

// Recorder defines all metrics operations emitted by the build pipeline.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result string)
	IncBuildOutcome(outcome string)
	AddPagesRendered(n int)
}

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, string)              {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) AddPagesRendered(int)                       {}

var _ Recorder = NoopRecorder{}
