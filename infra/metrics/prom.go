package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/maelk/cmdworker/core/metrics"
)

// PromSink records worker outcomes in Prometheus metrics.
type PromSink struct {
	records   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	queueWait prometheus.Histogram
	batchSize prometheus.Gauge
}

// NewPromSink registers worker metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_records_total",
		Help: "Total number of records processed",
	}, []string{"command", "success", "error_category"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worker_record_duration_seconds",
		Help:    "Time spent processing a single record",
		Buckets: prometheus.DefBuckets,
	}, []string{"command", "success"})
	queueWait := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "worker_queue_wait_seconds",
		Help:    "Estimated time a record spent queued before processing",
		Buckets: prometheus.DefBuckets,
	})
	batchSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "worker_batch_size",
		Help: "Number of records in the last processed batch",
	})

	if err := reg.Register(records); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			records = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(queueWait); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			queueWait = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(batchSize); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			batchSize = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{records: records, duration: duration, queueWait: queueWait, batchSize: batchSize}, nil
}

// RecordOutcome increments the record counter and observes durations.
func (s *PromSink) RecordOutcome(out coremetrics.RecordOutcome) error {
	success := strconv.FormatBool(out.Success)
	s.records.WithLabelValues(out.Command, success, out.ErrorCategory).Inc()
	s.duration.WithLabelValues(out.Command, success).Observe(out.WorkerDuration.Seconds())
	if out.QueueWaitKnown {
		s.queueWait.Observe(out.QueueWait.Seconds())
	}
	return nil
}

// RecordBatch sets the batch size gauge.
func (s *PromSink) RecordBatch(stats coremetrics.BatchStats) error {
	s.batchSize.Set(float64(stats.Total))
	return nil
}
