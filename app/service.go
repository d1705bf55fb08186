package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/maelk/cmdworker/config"
	"github.com/maelk/cmdworker/core/command"
	coremetrics "github.com/maelk/cmdworker/core/metrics"
	"github.com/maelk/cmdworker/core/worker"
	"github.com/maelk/cmdworker/handlers"
	"github.com/maelk/cmdworker/infra/logger"
	"github.com/maelk/cmdworker/infra/metrics"
	"github.com/maelk/cmdworker/infra/mqtt"
	"github.com/maelk/cmdworker/internal/eventbus"
	"github.com/maelk/cmdworker/internal/secrets"
)

// Service orchestrates the batch dispatcher and the broker consumer.
type Service struct {
	Dispatcher  *worker.Dispatcher
	consumer    *mqtt.Consumer
	bus         eventbus.EventBus
	log         logger.Logger
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	applyLogLevel(cfg.Logging.Level)
	logg := logger.New("service")

	var sinks []coremetrics.MetricsSink
	promEnabled := cfg.Metrics.PrometheusEnabled
	promPort := cfg.Metrics.PrometheusPort
	if promEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.MetricsSink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	registry := command.NewRegistry()
	handlerTimeout := time.Duration(cfg.Worker.HandlerTimeoutSeconds) * time.Second
	dispatcher, err := worker.NewDispatcher(registry, logger.New("dispatcher"), sink, bus, handlerTimeout)
	if err != nil {
		return nil, fmt.Errorf("dispatcher: %w", err)
	}

	consumer, err := mqtt.NewConsumer(cfg.MQTT, cfg.Worker, dispatcher, logger.New("mqtt_consumer"))
	if err != nil {
		return nil, fmt.Errorf("mqtt consumer: %w", err)
	}

	provider := secrets.Cached(
		secrets.EnvProvider{Prefix: cfg.Secrets.EnvPrefix},
		time.Duration(cfg.Secrets.TTLSeconds)*time.Second,
	)
	deps := handlers.Deps{Log: logger.New("handlers"), Secrets: provider, Notifier: consumer}
	if err := handlers.RegisterAll(registry, deps); err != nil {
		consumer.Close()
		return nil, fmt.Errorf("register handlers: %w", err)
	}
	logg.Infof("registered commands: %v", registry.Commands())

	return &Service{
		Dispatcher:  dispatcher,
		consumer:    consumer,
		bus:         bus,
		log:         logg,
		promEnabled: promEnabled,
		promPort:    promPort,
	}, nil
}

// Run starts consuming batches and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	go s.drainEvents(ctx)
	if err := s.consumer.Start(); err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	<-ctx.Done()
	return nil
}

// drainEvents keeps the bus from backing up and surfaces batch results at
// debug level.
func (s *Service) drainEvents(ctx context.Context) {
	sub := s.bus.Subscribe()
	for {
		select {
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if be, isBatch := ev.(eventbus.BatchEvent); isBatch {
				s.log.Debugf("batch %s done: %d/%d failed", be.BatchID, be.Failed, be.Total)
			}
		case <-ctx.Done():
			s.bus.Unsubscribe(sub)
			return
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.consumer.Close()
	s.bus.Close()
	return nil
}

func applyLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
