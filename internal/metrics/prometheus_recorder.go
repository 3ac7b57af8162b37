package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/adocxref/internal/foundation/errors"
)

const namespace = "adocxref"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once                sync.Once
	registry            *prom.Registry
	stageDuration       *prom.HistogramVec
	runDuration         prom.Histogram
	stageResults        *prom.CounterVec
	runOutcome          *prom.CounterVec
	anchorsIndexed      *prom.GaugeVec
	referencesRewritten *prom.CounterVec
	documentsWritten    prom.Counter
	lintIssues          *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pass stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total pass duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Pass outcomes by final status",
		}, []string{"outcome"})
		pr.anchorsIndexed = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "anchors_indexed",
			Help:      "Anchors in the index of a component-version",
		}, []string{"component", "version"})
		pr.referencesRewritten = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "references_rewritten_total",
			Help:      "References rewritten by pass kind",
		}, []string{"kind"})
		pr.documentsWritten = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "documents_written_total",
			Help:      "Modified or generated documents written to the output",
		})
		pr.lintIssues = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "lint_issues_total",
			Help:      "Reported lint issues by rule and severity",
		}, []string{"rule", "severity"})
		reg.MustRegister(pr.stageDuration, pr.runDuration, pr.stageResults, pr.runOutcome,
			pr.anchorsIndexed, pr.referencesRewritten, pr.documentsWritten, pr.lintIssues)
	})
	return pr
}

// Registry returns the registry the metrics are registered with.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncRunOutcome(outcome string) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetAnchorsIndexed(component, version string, n int) {
	if p == nil || p.anchorsIndexed == nil {
		return
	}
	p.anchorsIndexed.WithLabelValues(component, version).Set(float64(n))
}

func (p *PrometheusRecorder) AddReferencesRewritten(kind string, n int) {
	if p == nil || p.referencesRewritten == nil {
		return
	}
	p.referencesRewritten.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) AddDocumentsWritten(n int) {
	if p == nil || p.documentsWritten == nil {
		return
	}
	p.documentsWritten.Add(float64(n))
}

func (p *PrometheusRecorder) IncLintIssue(rule, severity string) {
	if p == nil || p.lintIssues == nil {
		return
	}
	p.lintIssues.WithLabelValues(rule, severity).Inc()
}

// WriteTextfile writes the registry in the node exporter textfile format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write metrics textfile").
			WithContext("path", path).
			Build()
	}
	return nil
}
