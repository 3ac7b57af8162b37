package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Reference kinds for AddReferencesRewritten.
const (
	KindLocal = "local"
	KindStyle = "style"
)

// Recorder defines observability hooks for a pass. Implementations may
// forward to Prometheus; NoopRecorder discards everything.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncRunOutcome(outcome string) // outcome: success|warning|failed|canceled
	SetAnchorsIndexed(component, version string, n int)
	AddReferencesRewritten(kind string, n int)
	AddDocumentsWritten(n int)
	IncLintIssue(rule, severity string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncRunOutcome(string)                       {}
func (NoopRecorder) SetAnchorsIndexed(string, string, int)      {}
func (NoopRecorder) AddReferencesRewritten(string, int)         {}
func (NoopRecorder) AddDocumentsWritten(int)                    {}
func (NoopRecorder) IncLintIssue(string, string)                {}
