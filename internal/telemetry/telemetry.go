// Package telemetry exposes pipeline counters in the Prometheus format.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"talentmetrics/domain/table"
)

const namespace = "talentmetrics"

// Section outcomes
const (
	SectionFound    = "found"
	SectionMissing  = "missing"
	SectionDegraded = "degraded"
)

// Metrics owns a private registry so tests and multiple servers never
// collide on the global one. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	sections      *prometheus.CounterVec
	loads         *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	unmapped      *prometheus.CounterVec
	buildDuration prometheus.Histogram
	lastBuild     prometheus.Gauge
}

// New registers every collector on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sections_extracted_total",
			Help:      "Section extractions by section name and outcome.",
		}, []string{"section", "outcome"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_loads_total",
			Help:      "Input loads by input and result.",
		}, []string{"input", "result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_cache_lookups_total",
			Help:      "Grid cache lookups by result.",
		}, []string{"result"}),
		unmapped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unmapped_labels_total",
			Help:      "Raw department labels missing from the label map.",
		}, []string{"section"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Wall time of report builds.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		lastBuild: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_build_timestamp_seconds",
			Help:      "Unix time of the last completed build.",
		}),
	}
	m.registry.MustRegister(
		m.sections, m.loads, m.cacheLookups, m.unmapped, m.buildDuration, m.lastBuild,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSection counts an extraction outcome
func (m *Metrics) ObserveSection(section string, t *table.Table) {
	if m == nil {
		return
	}
	m.sections.WithLabelValues(section, SectionOutcome(t)).Inc()
}

// SectionOutcome classifies an extracted table
func SectionOutcome(t *table.Table) string {
	switch {
	case t == nil || !t.Section.Found || t.IsEmpty():
		return SectionMissing
	case t.Degraded:
		return SectionDegraded
	default:
		return SectionFound
	}
}

// ObserveLoad counts an input load
func (m *Metrics) ObserveLoad(input string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.loads.WithLabelValues(input, result).Inc()
}

// ObserveCache implements gridcache.Observer
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveUnmapped counts raw labels without a map entry
func (m *Metrics) ObserveUnmapped(section string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.unmapped.WithLabelValues(section).Add(float64(n))
}

// ObserveBuild records a finished build
func (m *Metrics) ObserveBuild(d time.Duration, at time.Time) {
	if m == nil {
		return
	}
	m.buildDuration.Observe(d.Seconds())
	m.lastBuild.Set(float64(at.Unix()))
}
