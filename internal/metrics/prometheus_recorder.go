package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "umlbuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg            *prom.Registry
	stageDuration  *prom.HistogramVec
	buildDuration  prom.Histogram
	buildOutcome   *prom.CounterVec
	renderDuration *prom.HistogramVec
	fileResults    *prom.CounterVec
	concurrency    prom.Gauge
	lastBuild      prom.Gauge
}

// NewPrometheusRecorder constructs and registers the metrics on reg, or on a
// fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual build stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "build_duration_seconds",
		Help:      "Total build duration",
		Buckets:   prom.DefBuckets,
	})
	pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "build_outcomes_total",
		Help:      "Build outcomes by final status",
	}, []string{"outcome"})
	pr.renderDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "render_duration_seconds",
		Help:      "Duration of individual engine invocations",
		Buckets:   prom.ExponentialBuckets(0.05, 2, 10),
	}, []string{"result"})
	pr.fileResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "file_results_total",
		Help:      "Input files by result (rendered, skipped, failed)",
	}, []string{"result"})
	pr.concurrency = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "render_concurrency",
		Help:      "Worker count used by the last build",
	})
	pr.lastBuild = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "last_build_timestamp_seconds",
		Help:      "Unix time the last build finished",
	})
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.buildOutcome, pr.renderDuration, pr.fileResults, pr.concurrency, pr.lastBuild)
	return pr
}

// Registry exposes the registry the metrics live in.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
	p.lastBuild.SetToCurrentTime()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObserveRenderDuration(d time.Duration, result ResultLabel) {
	if p == nil || p.renderDuration == nil {
		return
	}
	p.renderDuration.WithLabelValues(string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncFileResult(result ResultLabel) {
	if p == nil || p.fileResults == nil {
		return
	}
	p.fileResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetConcurrency(n int) {
	if p == nil || p.concurrency == nil {
		return
	}
	p.concurrency.Set(float64(n))
}

// WriteTextfile writes every gathered metric to path in the text exposition
// format. The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
