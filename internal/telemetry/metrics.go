package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// refreshRuns tracks feed refresh outcomes.
	refreshRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buybox_refresh_runs_total",
		Help: "Total number of feed refresh runs by result",
	}, []string{"result"}) // result: success, error

	// refreshDuration tracks the time taken by a full feed refresh.
	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "buybox_refresh_duration_seconds",
		Help:    "Time taken for a full feed refresh",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	})

	// offersLoaded tracks the size of the last loaded snapshot.
	offersLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "buybox_offers_loaded",
		Help: "Number of offers in the current snapshot",
	})

	// priceChangesDetected tracks price movements found during refresh.
	priceChangesDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "buybox_price_changes_detected_total",
		Help: "Total number of price changes detected across refreshes",
	})

	// evaluationDuration tracks the time taken by an evaluation pass.
	evaluationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "buybox_evaluation_duration_seconds",
		Help:    "Time taken for a buybox evaluation pass by kind",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"kind"}) // kind: evaluate, winners, stats, export

	// sinkErrors tracks failed forwards to the upstream write sinks.
	sinkErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buybox_sink_errors_total",
		Help: "Total number of failed sink requests by sink",
	}, []string{"sink"}) // sink: pricing, activation
)

// MetricsRecorder provides methods to record service metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordRefresh records one feed refresh run.
func (m *MetricsRecorder) RecordRefresh(duration time.Duration, offerCount int, err error) {
	refreshDuration.Observe(duration.Seconds())
	if err != nil {
		refreshRuns.WithLabelValues("error").Inc()
		return
	}
	refreshRuns.WithLabelValues("success").Inc()
	offersLoaded.Set(float64(offerCount))
}

// RecordPriceChanges records price movements detected during a refresh.
func (m *MetricsRecorder) RecordPriceChanges(count int) {
	priceChangesDetected.Add(float64(count))
}

// RecordEvaluation records the duration of an analysis pass.
func (m *MetricsRecorder) RecordEvaluation(kind string, duration time.Duration) {
	evaluationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordSinkError records a failed forward to an upstream sink.
func (m *MetricsRecorder) RecordSinkError(sink string) {
	sinkErrors.WithLabelValues(sink).Inc()
}
