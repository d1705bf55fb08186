package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `mqtt:
  broker: "tcp://localhost:1883"
  client_id: "worker-1"
  username: "user"
  password: "pass"
  use_tls: false
worker:
  source_topic: "chatops/batches"
  outcome_topic: "chatops/outcomes"
  notify_topic: "chatops/notify"
  handler_timeout_seconds: 10
metrics:
  prometheus_enabled: true
  prometheus_port: ":9100"
logging:
  level: "debug"
secrets:
  ttl_seconds: 60
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "worker-1"},
		{"username", cfg.MQTT.Username, "user"},
		{"use_tls", cfg.MQTT.UseTLS, false},
		{"source_topic", cfg.Worker.SourceTopic, "chatops/batches"},
		{"outcome_topic", cfg.Worker.OutcomeTopic, "chatops/outcomes"},
		{"notify_topic", cfg.Worker.NotifyTopic, "chatops/notify"},
		{"handler_timeout_seconds", cfg.Worker.HandlerTimeoutSeconds, 10},
		{"prometheus_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"prometheus_port", cfg.Metrics.PrometheusPort, ":9100"},
		{"log_level", cfg.Logging.Level, "debug"},
		{"secrets_ttl", cfg.Secrets.TTLSeconds, 60},
		{"secrets_prefix", cfg.Secrets.EnvPrefix, "CMDWORKER_SECRET_"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `mqtt:
  broker: "tcp://localhost:1883"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Worker.SourceTopic == "" || cfg.Worker.OutcomeTopic == "" {
		t.Errorf("topic defaults missing: %#v", cfg.Worker)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level: %s", cfg.Logging.Level)
	}
}

func TestLoadRejectsMissingBroker(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error without broker")
	}
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "mqtt:\n  broker: \"tcp://localhost:1883\"\nlogging:\n  level: \"loud\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for bad log level")
	}
}
