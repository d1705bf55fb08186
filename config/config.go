package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/maelk/cmdworker/core/metrics"
	"github.com/maelk/cmdworker/core/worker"
	"github.com/maelk/cmdworker/infra/mqtt"
)

type Config struct {
	MQTT    mqtt.Config    `json:"mqtt"`
	Worker  worker.Config  `json:"worker"`
	Metrics metrics.Config `json:"metrics"`
	Logging LoggingConfig  `json:"logging"`
	Secrets SecretsConfig  `json:"secrets"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("CW_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "cw_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Worker.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.Secrets.SetDefaults()
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-section requirements.
func (c Config) Validate() error {
	if c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt broker is required")
	}
	if c.Worker.SourceTopic == c.Worker.OutcomeTopic {
		return fmt.Errorf("source and outcome topics must differ")
	}
	return nil
}

// SecretsConfig controls the secret provider used by the report handlers.
type SecretsConfig struct {
	// EnvPrefix is prepended to secret names when reading the environment.
	EnvPrefix string `json:"env_prefix"`
	// TTLSeconds is the secret cache lifetime.
	TTLSeconds int `json:"ttl_seconds"`
}

// SetDefaults applies sane defaults.
func (c *SecretsConfig) SetDefaults() {
	if c.EnvPrefix == "" {
		c.EnvPrefix = "CMDWORKER_SECRET_"
	}
	if c.TTLSeconds == 0 {
		c.TTLSeconds = 300
	}
}
