package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/maelk/cmdworker/core/command"
	"github.com/maelk/cmdworker/core/logger"
	"github.com/maelk/cmdworker/core/metrics"
	"github.com/maelk/cmdworker/internal/eventbus"
)

// Dispatcher processes batches of records. For each record it decodes the
// command envelope, resolves the handler in the registry, invokes it and
// classifies the record as succeeded or failed. One record's error never
// aborts its siblings; records are processed one at a time, strictly in
// delivery order. The dispatcher holds no state between batches.
type Dispatcher struct {
	registry       *command.Registry
	logger         logger.Logger
	sink           metrics.MetricsSink
	bus            eventbus.EventBus
	handlerTimeout time.Duration
	now            func() time.Time
}

// NewDispatcher creates a Dispatcher. A nil sink defaults to NopSink and the
// bus is optional. handlerTimeout bounds a single handler invocation; zero
// means no per-handler deadline.
func NewDispatcher(registry *command.Registry, log logger.Logger, sink metrics.MetricsSink, bus eventbus.EventBus, handlerTimeout time.Duration) (*Dispatcher, error) {
	if registry == nil || log == nil {
		return nil, fmt.Errorf("worker: nil parameter provided to NewDispatcher")
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Dispatcher{
		registry:       registry,
		logger:         log,
		sink:           sink,
		bus:            bus,
		handlerTimeout: handlerTimeout,
		now:            time.Now,
	}, nil
}

// Dispatch processes every record of the batch and returns the identifiers of
// the records that failed. It emits one metrics log line per record and one
// summary line for the batch.
func (d *Dispatcher) Dispatch(ctx context.Context, batch Batch) Outcome {
	failed := make([]string, 0)
	durations := make([]float64, 0, len(batch.Records))

	for _, rec := range batch.Records {
		res := d.processRecord(ctx, rec)
		durations = append(durations, float64(res.workerDuration.Milliseconds()))
		if !res.success {
			failed = append(failed, rec.ID)
		}
		if d.bus != nil {
			d.bus.Publish(eventbus.RecordEvent{RecordID: rec.ID, Command: res.commandName, Success: res.success})
		}
	}

	stats := Summarize(durations)
	total := len(batch.Records)
	d.logger.Infow("batch processed", map[string]any{
		"batch_id":         batch.ID,
		"total":            total,
		"failed":           len(failed),
		"succeeded":        total - len(failed),
		"mean_duration_ms": stats.MeanMs,
		"p50_duration_ms":  stats.P50Ms,
		"p95_duration_ms":  stats.P95Ms,
	})
	if err := d.sink.RecordBatch(metrics.BatchStats{
		BatchID:   batch.ID,
		Total:     total,
		Failed:    len(failed),
		Succeeded: total - len(failed),
		Time:      d.now(),
	}); err != nil {
		d.logger.Errorf("batch metrics error: %v", err)
	}
	if d.bus != nil {
		d.bus.Publish(eventbus.BatchEvent{BatchID: batch.ID, Total: total, Failed: len(failed)})
	}
	return Outcome{FailedIDs: failed}
}

type recordResult struct {
	success        bool
	commandName    string
	workerDuration time.Duration
}

// processRecord runs the per-record algorithm. Errors, including handler
// panics, surface only through the returned result.
func (d *Dispatcher) processRecord(ctx context.Context, rec Record) recordResult {
	start := d.now()

	var env command.Envelope
	var res command.Result
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("handler panic: %v", r)
			}
		}()
		env, err = command.Decode([]byte(rec.Body))
		if err != nil {
			return err
		}
		var h command.Handler
		h, err = d.registry.Resolve(env.Command)
		if err != nil {
			return err
		}
		hctx := ctx
		if d.handlerTimeout > 0 {
			var cancel context.CancelFunc
			hctx, cancel = context.WithTimeout(ctx, d.handlerTimeout)
			defer cancel()
		}
		res, err = h.Handle(hctx, env, rec.ID)
		return err
	}()

	end := d.now()
	workerDuration := end.Sub(start)

	correlationID := rec.ID
	if env.CorrelationID != "" {
		correlationID = env.CorrelationID
	}
	rlog := d.logger.With(map[string]any{"correlation_id": correlationID})

	fields := map[string]any{
		"command":            env.Command,
		"worker_duration_ms": workerDuration.Milliseconds(),
	}
	queueWait := time.Duration(0)
	queueWaitKnown := false
	if gwStart, ok := env.GatewayStart(); ok {
		totalE2E := end.Sub(gwStart)
		// Queue wait estimates time spent queued before this worker began,
		// clamped to zero to absorb clock skew between hosts.
		queueWait = totalE2E - workerDuration
		if queueWait < 0 {
			queueWait = 0
		}
		queueWaitKnown = true
		fields["total_e2e_ms"] = totalE2E.Milliseconds()
		fields["queue_wait_ms"] = queueWait.Milliseconds()
	}

	category := ""
	if err == nil {
		fields["success"] = true
		if res.SyncResponseMs != nil {
			fields["sync_response_ms"] = *res.SyncResponseMs
		}
		if res.AsyncResponseMs != nil {
			fields["async_response_ms"] = *res.AsyncResponseMs
		}
		rlog.Infow("record processed", fields)
	} else {
		category = string(command.Category(err))
		fields["success"] = false
		fields["error_category"] = category
		fields["error"] = err.Error()
		rlog.Infow("record processed", fields)
		rlog.Errorw("record processing failed", map[string]any{
			"record_id":          rec.ID,
			"worker_duration_ms": workerDuration.Milliseconds(),
			"error":              err.Error(),
		})
	}

	if serr := d.sink.RecordOutcome(metrics.RecordOutcome{
		RecordID:       rec.ID,
		CorrelationID:  correlationID,
		Command:        env.Command,
		Success:        err == nil,
		ErrorCategory:  category,
		WorkerDuration: workerDuration,
		QueueWait:      queueWait,
		QueueWaitKnown: queueWaitKnown,
		Time:           end,
	}); serr != nil {
		d.logger.Errorf("record metrics error: %v", serr)
	}

	return recordResult{success: err == nil, commandName: env.Command, workerDuration: workerDuration}
}
