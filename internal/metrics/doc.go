// Package metrics provides build metrics for umlbuilder.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed at call sites:
//
//	b := build.NewBuilder(engine)                       // NoopRecorder
//	b = b.WithRecorder(metrics.NewPrometheusRecorder(nil)) // Prometheus
//
// PrometheusRecorder keeps its own registry. A single command line build has no
// scrape endpoint, so the registry is written in the node_exporter textfile
// format with WriteTextfile when the build ends.
package metrics
