package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline counters exposed on /metrics.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	voiceClonesTotal    *prometheus.CounterVec
	conversionsTotal    *prometheus.CounterVec
	conversionDuration  *prometheus.HistogramVec
	voiceDeletionsTotal *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		voiceClonesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voice_clones_total",
				Help: "Voice clone attempts by outcome",
			},
			[]string{"outcome"},
		),
		conversionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voice_conversions_total",
				Help: "Per-language speech-to-speech conversions by outcome",
			},
			[]string{"language", "outcome"},
		),
		conversionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "voice_conversion_duration_seconds",
				Help:    "Speech-to-speech conversion duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
			[]string{"language"},
		),
		voiceDeletionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voice_deletions_total",
				Help: "Provider-side voice deletions by outcome",
			},
			[]string{"outcome"},
		),
	}
}

func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordClone(outcome string) {
	m.voiceClonesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordConversion(language, outcome string, duration time.Duration) {
	m.conversionsTotal.WithLabelValues(language, outcome).Inc()
	if outcome == "completed" {
		m.conversionDuration.WithLabelValues(language).Observe(duration.Seconds())
	}
}

func (m *Metrics) RecordVoiceDeletion(outcome string) {
	m.voiceDeletionsTotal.WithLabelValues(outcome).Inc()
}
