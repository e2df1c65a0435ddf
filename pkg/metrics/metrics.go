// Package metrics exposes Prometheus metrics for pipeline runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the pipeline.
type Metrics struct {
	modelsEnrichedTotal     prometheus.Counter
	modelsSkippedTotal      *prometheus.CounterVec
	offeringsFetchedTotal   prometheus.Counter
	snapshotsGeneratedTotal prometheus.Counter
	stepFailuresTotal       *prometheus.CounterVec
	notificationsSentTotal  *prometheus.CounterVec
	stepDuration            *prometheus.HistogramVec
}

// NewMetrics registers the pipeline metrics with the given registerer (nil
// uses the default one).
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &Metrics{
		modelsEnrichedTotal: promauto.With(registerer).NewCounter(prometheus.CounterOpts{
			Name: "modelcost_models_enriched_total",
			Help: "Number of models successfully enriched from HuggingFace",
		}),
		modelsSkippedTotal: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Name: "modelcost_models_skipped_total",
			Help: "Number of models skipped during enrichment",
		}, []string{"reason"}),
		offeringsFetchedTotal: promauto.With(registerer).NewCounter(prometheus.CounterOpts{
			Name: "modelcost_gpu_offerings_fetched_total",
			Help: "Number of GPU offerings fetched from pricing catalogs",
		}),
		snapshotsGeneratedTotal: promauto.With(registerer).NewCounter(prometheus.CounterOpts{
			Name: "modelcost_snapshots_generated_total",
			Help: "Number of leaderboard snapshots generated",
		}),
		stepFailuresTotal: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Name: "modelcost_step_failures_total",
			Help: "Number of pipeline step failures, including retried attempts",
		}, []string{"step"}),
		notificationsSentTotal: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Name: "modelcost_notifications_sent_total",
			Help: "Number of email notifications sent",
		}, []string{"kind"}),
		stepDuration: promauto.With(registerer).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "modelcost_step_duration_seconds",
			Help:    "Duration of pipeline steps in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"step"}),
	}
}

func (m *Metrics) RecordModelEnriched() { m.modelsEnrichedTotal.Inc() }

func (m *Metrics) RecordModelSkipped(reason string) {
	m.modelsSkippedTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordOfferingsFetched(count int) {
	m.offeringsFetchedTotal.Add(float64(count))
}

func (m *Metrics) RecordSnapshotsGenerated(count int) {
	m.snapshotsGeneratedTotal.Add(float64(count))
}

func (m *Metrics) RecordStepFailure(step string) {
	m.stepFailuresTotal.WithLabelValues(step).Inc()
}

func (m *Metrics) RecordNotificationSent(kind string) {
	m.notificationsSentTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveStepDuration(step string, duration time.Duration) {
	m.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// Handler serves the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
