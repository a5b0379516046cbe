// Package metrics holds the prometheus collectors exported by the server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "whisper_bridge"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	Transcriptions *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	Segments       *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
}

// New registers the collectors plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Transcriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcriptions_total",
			Help:      "Transcription requests by engine and outcome.",
		}, []string{"engine", "status"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcription_duration_seconds",
			Help:      "Wall time of a bridge run.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 180},
		}, []string{"engine"}),
		Segments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_total",
			Help:      "Segments returned to clients.",
		}, []string{"engine"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"path", "status"}),
	}

	m.registry.MustRegister(
		m.Transcriptions,
		m.Duration,
		m.Segments,
		m.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveTranscription records one finished run. status is "ok", "error", "timeout" or "cached".
func (m *Metrics) ObserveTranscription(engine, status string, elapsed time.Duration, segments int) {
	m.Transcriptions.WithLabelValues(engine, status).Inc()
	if status != "cached" {
		m.Duration.WithLabelValues(engine).Observe(elapsed.Seconds())
	}
	if segments > 0 {
		m.Segments.WithLabelValues(engine).Add(float64(segments))
	}
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
