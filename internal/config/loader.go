package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. file (YAML) if STAGEWISE_CONFIG is set
//  3. env (prefix STAGEWISE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("STAGEWISE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Env keys like STAGEWISE_MAX_METRICS map to max_metrics; underscores
	// are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("STAGEWISE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "stagewise_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DBPath == "":
		return fmt.Errorf("%w: db_path must not be empty", ErrInvalidConfig)
	case c.MaxMetrics < 1:
		return fmt.Errorf("%w: max_metrics must be positive", ErrInvalidConfig)
	case c.SampleQueueSize < 1:
		return fmt.Errorf("%w: sample_queue_size must be positive", ErrInvalidConfig)
	case c.IngestWorkerCount < 1:
		return fmt.Errorf("%w: ingest_worker_count must be positive", ErrInvalidConfig)
	case c.OnTimeWindowDays < 1:
		return fmt.Errorf("%w: on_time_window_days must be positive", ErrInvalidConfig)
	}
	return nil
}
