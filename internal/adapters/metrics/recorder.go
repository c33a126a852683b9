// Package metrics records send outcomes in a Prometheus registry.
//
// ehsend is short-lived, so instead of serving /metrics the registry is
// written once at exit in the node_exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Recorder implements app.SendEventEmitter on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	batchesTotal *prometheus.CounterVec
	eventsTotal  *prometheus.CounterVec
	batchEvents  prometheus.Histogram
	batchBytes   prometheus.Histogram
	sendDuration prometheus.Histogram
	lastRun      prometheus.Gauge
}

// NewRecorder creates a recorder whose series carry a constant eventhub label.
func NewRecorder(eventHub string) *Recorder {
	labels := prometheus.Labels{"eventhub": eventHub}
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		batchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "ehsend_batches_total",
				Help:        "Number of batches handed to the publisher",
				ConstLabels: labels,
			},
			[]string{"status"}, // status: success, error
		),
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "ehsend_events_total",
				Help:        "Number of events in batches handed to the publisher",
				ConstLabels: labels,
			},
			[]string{"status"},
		),
		batchEvents: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:        "ehsend_batch_events",
				Help:        "Number of events in successfully sent batches",
				Buckets:     []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
				ConstLabels: labels,
			},
		),
		batchBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:        "ehsend_batch_bytes",
				Help:        "Encoded size of successfully sent batches",
				Buckets:     prometheus.ExponentialBuckets(1024, 4, 8),
				ConstLabels: labels,
			},
		),
		sendDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:        "ehsend_send_duration_seconds",
				Help:        "Time spent transmitting successfully sent batches",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name:        "ehsend_last_run_timestamp_seconds",
				Help:        "Unix time the recorder was created",
				ConstLabels: labels,
			},
		),
	}

	r.registry.MustRegister(
		r.batchesTotal,
		r.eventsTotal,
		r.batchEvents,
		r.batchBytes,
		r.sendDuration,
		r.lastRun,
	)
	r.lastRun.SetToCurrentTime()

	return r
}

// OnBatchSent records a successful batch send.
func (r *Recorder) OnBatchSent(events int, bytes uint64, duration time.Duration) {
	r.batchesTotal.WithLabelValues(statusSuccess).Inc()
	r.eventsTotal.WithLabelValues(statusSuccess).Add(float64(events))
	r.batchEvents.Observe(float64(events))
	r.batchBytes.Observe(float64(bytes))
	r.sendDuration.Observe(duration.Seconds())
}

// OnBatchFailed records a failed batch send.
func (r *Recorder) OnBatchFailed(err error, events int) {
	r.batchesTotal.WithLabelValues(statusError).Inc()
	r.eventsTotal.WithLabelValues(statusError).Add(float64(events))
}

// WriteTextfile writes the registry to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}
