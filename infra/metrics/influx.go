package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/maelk/cmdworker/core/metrics"
	"github.com/maelk/cmdworker/infra/logger"
)

// InfluxSink writes worker outcomes to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config) *InfluxSink {
	base := strings.TrimSuffix(cfg.InfluxURL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordOutcome writes the record outcome as a line protocol point.
func (s *InfluxSink) RecordOutcome(out coremetrics.RecordOutcome) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("record_outcome").
		AddTag("command", out.Command).
		AddTag("success", strconv.FormatBool(out.Success)).
		AddTag("component", "batch_dispatcher").
		AddField("worker_duration_ms", out.WorkerDuration.Milliseconds()).
		AddField("correlation_id", out.CorrelationID).
		SetTime(out.Time)
	if out.ErrorCategory != "" {
		p = p.AddTag("error_category", out.ErrorCategory)
	}
	if out.QueueWaitKnown {
		p = p.AddField("queue_wait_ms", out.QueueWait.Milliseconds())
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordBatch writes the batch summary point.
func (s *InfluxSink) RecordBatch(stats coremetrics.BatchStats) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("batch_summary").
		AddTag("component", "batch_dispatcher").
		AddField("total", stats.Total).
		AddField("failed", stats.Failed).
		AddField("succeeded", stats.Succeeded).
		SetTime(stats.Time)
	if stats.BatchID != "" {
		p = p.AddTag("batch_id", stats.BatchID)
	}
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
