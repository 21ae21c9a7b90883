package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cyclesTotal   *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	postsTotal    *prometheus.CounterVec
	adapterErrors *prometheus.CounterVec
	sentimentPct  *prometheus.GaugeVec
	alertsTotal   *prometheus.CounterVec
	storeErrors   *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cyclesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentipulse_cycles_total",
				Help: "Total number of aggregation cycles by result",
			},
			[]string{"result"},
		),
		cycleDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sentipulse_cycle_duration_seconds",
				Help:    "Duration of aggregation cycles in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		postsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentipulse_posts_collected_total",
				Help: "Total posts collected per source",
			},
			[]string{"source"},
		),
		adapterErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentipulse_adapter_errors_total",
				Help: "Total source adapter failures",
			},
			[]string{"source"},
		),
		sentimentPct: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sentipulse_sentiment_pct",
				Help: "Latest aggregate sentiment percentage by kind",
			},
			[]string{"kind"},
		),
		alertsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentipulse_alerts_total",
				Help: "Total alerts fired by type",
			},
			[]string{"type"},
		),
		storeErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentipulse_store_errors_total",
				Help: "Total store operation failures",
			},
			[]string{"op"},
		),
	}
}

// RecordCycle records one finished aggregation cycle.
func (r *Recorder) RecordCycle(result string, seconds float64) {
	r.cyclesTotal.WithLabelValues(result).Inc()
	r.cycleDuration.Observe(seconds)
}

// RecordPosts records posts collected from a source.
func (r *Recorder) RecordPosts(source string, count int) {
	r.postsTotal.WithLabelValues(source).Add(float64(count))
}

// RecordAdapterError records a source adapter failure.
func (r *Recorder) RecordAdapterError(source string) {
	r.adapterErrors.WithLabelValues(source).Inc()
}

// RecordSentiment records the latest aggregate percentages.
func (r *Recorder) RecordSentiment(bullishPct, bearishPct, neutralPct float64) {
	r.sentimentPct.WithLabelValues("bullish").Set(bullishPct)
	r.sentimentPct.WithLabelValues("bearish").Set(bearishPct)
	r.sentimentPct.WithLabelValues("neutral").Set(neutralPct)
}

// RecordAlert records a fired alert.
func (r *Recorder) RecordAlert(alertType string) {
	r.alertsTotal.WithLabelValues(alertType).Inc()
}

// RecordStoreError records a store operation failure.
func (r *Recorder) RecordStoreError(op string) {
	r.storeErrors.WithLabelValues(op).Inc()
}
