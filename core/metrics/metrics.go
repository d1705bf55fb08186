package metrics

import "time"

// RecordOutcome captures the result of processing a single record.
type RecordOutcome struct {
	RecordID       string
	CorrelationID  string
	Command        string
	Success        bool
	ErrorCategory  string
	WorkerDuration time.Duration
	// QueueWait is only meaningful when the envelope carried a gateway start
	// time; QueueWaitKnown reports whether it was computed.
	QueueWait      time.Duration
	QueueWaitKnown bool
	Time           time.Time
}

// BatchStats summarizes one batch invocation.
type BatchStats struct {
	BatchID   string
	Total     int
	Failed    int
	Succeeded int
	Time      time.Time
}

// MetricsSink records worker outcomes for observability purposes.
type MetricsSink interface {
	RecordOutcome(out RecordOutcome) error
	RecordBatch(stats BatchStats) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordOutcome(RecordOutcome) error { return nil }
func (NopSink) RecordBatch(BatchStats) error      { return nil }
