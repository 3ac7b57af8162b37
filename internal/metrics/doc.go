// Package metrics records pass metrics for adocxref.
//
// Components receive a Recorder and default to NoopRecorder, so metrics
// never need nil checks at the call site:
//
//	runner := pipeline.NewRunner(cfg, logger) // NoopRecorder
//	runner.WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// The CLI writes the registry of a PrometheusRecorder to a node exporter
// textfile after a build (WriteTextfile).
package metrics
