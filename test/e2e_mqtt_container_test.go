package test

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/maelk/cmdworker/core/command"
	"github.com/maelk/cmdworker/core/worker"
	"github.com/maelk/cmdworker/handlers"
	"github.com/maelk/cmdworker/infra/logger"
	"github.com/maelk/cmdworker/infra/mqtt"
	"github.com/maelk/cmdworker/internal/secrets"
)

func waitForMQTTReady(broker string, timeout time.Duration) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("probe")
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		lastErr = token.Error()
		time.Sleep(100 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for broker")
	}
	return lastErr
}

func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	conf := `listener 1883
allow_anonymous true
persistence false
log_dest stdout
log_type error
log_type warning
log_type notice
log_type information
connection_messages true
log_timestamp true
`
	dir := t.TempDir()
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		t.Fatalf("write conf: %v", err)
	}

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{
			{
				HostFilePath:      path,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0644,
			},
		},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}
	host, err := cont.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())
	if err := waitForMQTTReady(broker, 5*time.Second); err != nil {
		t.Logf("mosquitto not ready: %v", err)
		t.Skip("Mosquitto not ready after retries")
	}
	return cont, broker
}

func TestBatchRoundTripWithMQTTContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx := context.Background()

	cont, broker := startMosquitto(ctx, t)
	defer func() { _ = cont.Terminate(ctx) }()

	wcfg := worker.Config{
		SourceTopic:  "cmdworker/batches",
		OutcomeTopic: "cmdworker/outcomes",
		NotifyTopic:  "cmdworker/notify",
	}

	registry := command.NewRegistry()
	dispatcher, err := worker.NewDispatcher(registry, logger.NopLogger{}, nil, nil, 0)
	require.NoError(t, err)

	consumer, err := mqtt.NewConsumer(mqtt.Config{Broker: broker, ClientID: "worker-e2e"}, wcfg, dispatcher, logger.NopLogger{})
	require.NoError(t, err)
	defer consumer.Close()

	require.NoError(t, handlers.RegisterAll(registry, handlers.Deps{
		Log:      logger.NopLogger{},
		Secrets:  secrets.StaticProvider{handlers.CostReportAPIKey: "k"},
		Notifier: consumer,
	}))
	require.NoError(t, consumer.Start())

	// Producer side: publish a batch and collect the outcome.
	prodOpts := paho.NewClientOptions().AddBroker(broker).SetClientID("producer-e2e")
	prod := paho.NewClient(prodOpts)
	token := prod.Connect()
	token.Wait()
	require.NoError(t, token.Error())
	defer prod.Disconnect(100)

	outcomes := make(chan []byte, 1)
	token = prod.Subscribe(wcfg.OutcomeTopic, 1, func(_ paho.Client, m paho.Message) {
		outcomes <- m.Payload()
	})
	token.Wait()
	require.NoError(t, token.Error())

	batch := worker.Batch{ID: "e2e-1", Records: []worker.Record{
		{ID: "a", Body: `{"command":"/echo","text":"hello"}`},
		{ID: "b", Body: "not-json"},
		{ID: "c", Body: `{"command":"/unknown"}`},
	}}
	payload, err := json.Marshal(batch)
	require.NoError(t, err)
	token = prod.Publish(wcfg.SourceTopic, 1, false, payload)
	token.Wait()
	require.NoError(t, token.Error())

	select {
	case raw := <-outcomes:
		var out struct {
			BatchID   string   `json:"batchId"`
			FailedIDs []string `json:"failedIds"`
		}
		require.NoError(t, json.Unmarshal(raw, &out))
		require.Equal(t, "e2e-1", out.BatchID)
		require.ElementsMatch(t, []string{"b", "c"}, out.FailedIDs)
	case <-time.After(10 * time.Second):
		t.Fatal("no outcome received")
	}
}
