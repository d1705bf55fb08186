package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/maelk/cmdworker/core/metrics"
)

func TestPromSink_RecordOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected PromSink")
	}
	out := coremetrics.RecordOutcome{
		RecordID:       "r1",
		Command:        "/echo",
		Success:        true,
		WorkerDuration: 25 * time.Millisecond,
		QueueWait:      5 * time.Millisecond,
		QueueWaitKnown: true,
		Time:           time.Now(),
	}
	if err := sink.RecordOutcome(out); err != nil {
		t.Fatalf("record error: %v", err)
	}

	expected := `
# HELP worker_records_total Total number of records processed
# TYPE worker_records_total counter
worker_records_total{command="/echo",error_category="",success="true"} 1
`
	if err := testutil.CollectAndCompare(sink.records, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	if c := testutil.CollectAndCount(sink.duration); c == 0 {
		t.Errorf("duration not recorded")
	}
	if c := testutil.CollectAndCount(sink.queueWait); c == 0 {
		t.Errorf("queue wait not recorded")
	}
}

func TestPromSink_RecordBatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink := sinkIf.(*PromSink)
	if err := sink.RecordBatch(coremetrics.BatchStats{Total: 7, Failed: 2, Succeeded: 5}); err != nil {
		t.Fatalf("record batch: %v", err)
	}
	if v := testutil.ToFloat64(sink.batchSize); v != 7 {
		t.Errorf("batch size gauge: got %v want 7", v)
	}
}
