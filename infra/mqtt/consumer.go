package mqtt

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/maelk/cmdworker/core/notify"
	"github.com/maelk/cmdworker/core/worker"
	"github.com/maelk/cmdworker/infra/logger"
)

// BatchProcessor consumes one batch and reports the failed record IDs.
// *worker.Dispatcher satisfies it.
type BatchProcessor interface {
	Dispatch(ctx context.Context, batch worker.Batch) worker.Outcome
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Consumer bridges the broker and the batch dispatcher: it subscribes to the
// source topic, feeds each delivered batch through the processor and publishes
// the failed-identifier set on the outcome topic so only those records are
// redelivered.
type Consumer struct {
	cli          pahoClient
	processor    BatchProcessor
	sourceTopic  string
	outcomeTopic string
	notifyTopic  string
	cfg          Config
	logger       logger.Logger

	started atomic.Bool
	mu      sync.Mutex
}

// NewConsumer connects to the broker. Consumption does not begin until Start
// is called, so handlers can be registered without racing the first delivery.
func NewConsumer(cfg Config, wcfg worker.Config, proc BatchProcessor, log logger.Logger) (*Consumer, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.New("mqtt_consumer")
	}

	c := &Consumer{
		processor:    proc,
		sourceTopic:  wcfg.SourceTopic,
		outcomeTopic: wcfg.OutcomeTopic,
		notifyTopic:  wcfg.NotifyTopic,
		cfg:          cfg,
		logger:       log,
	}

	opts.OnConnect = func(cli paho.Client) {
		log.Infof("MQTT connected")
		if !c.started.Load() {
			return
		}
		if token := cli.Subscribe(c.sourceTopic, cfg.qosFor("source"), c.onBatch); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	c.cli = cli
	return c, nil
}

// Start subscribes to the source topic and begins consuming batches. On
// reconnection the subscription is re-established automatically.
func (c *Consumer) Start() error {
	c.started.Store(true)
	token := c.cli.Subscribe(c.sourceTopic, c.cfg.qosFor("source"), c.onBatch)
	token.Wait()
	return token.Error()
}

// onBatch handles one delivery from the source topic. Malformed batch payloads
// are logged and skipped; there is nothing to acknowledge on the broker's
// behalf for a payload that names no records.
func (c *Consumer) onBatch(_ paho.Client, msg paho.Message) {
	var batch worker.Batch
	if err := json.Unmarshal(msg.Payload(), &batch); err != nil {
		c.logger.Errorf("failed to decode batch: %v", err)
		return
	}
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	c.logger.Infof("received batch %s with %d records", batch.ID, len(batch.Records))

	out := c.processor.Dispatch(context.Background(), batch)
	if err := c.publishOutcome(batch.ID, out); err != nil {
		c.logger.Errorf("failed to publish outcome for batch %s: %v", batch.ID, err)
	}
}

type outcomeMessage struct {
	BatchID   string   `json:"batchId"`
	FailedIDs []string `json:"failedIds"`
}

func (c *Consumer) publishOutcome(batchID string, out worker.Outcome) error {
	payload, err := json.Marshal(outcomeMessage{BatchID: batchID, FailedIDs: out.FailedIDs})
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	token := c.cli.Publish(c.outcomeTopic, c.cfg.qosFor("outcome"), false, payload)
	token.Wait()
	return token.Error()
}

// Notify publishes a handler callback payload on the notify topic.
func (c *Consumer) Notify(_ context.Context, n notify.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	token := c.cli.Publish(c.notifyTopic, c.cfg.qosFor("notify"), false, payload)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker.
func (c *Consumer) Close() {
	if c.cli != nil && c.cli.IsConnected() {
		c.cli.Disconnect(250)
	}
}
