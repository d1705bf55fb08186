package metrics

import coremetrics "github.com/maelk/cmdworker/core/metrics"

// MultiSink fans worker outcomes out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordOutcome forwards the outcome to all sinks, returning the first error encountered.
func (m *MultiSink) RecordOutcome(out coremetrics.RecordOutcome) error {
	for _, s := range m.Sinks {
		if err := s.RecordOutcome(out); err != nil {
			return err
		}
	}
	return nil
}

// RecordBatch forwards batch stats to all sinks.
func (m *MultiSink) RecordBatch(stats coremetrics.BatchStats) error {
	for _, s := range m.Sinks {
		if err := s.RecordBatch(stats); err != nil {
			return err
		}
	}
	return nil
}
