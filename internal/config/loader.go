package config

import (
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
//  2. file (YAML) if COMPASS_CONFIG is set
//  3. env (prefix COMPASS_), flat keys only
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("COMPASS_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// COMPASS_DATA_FILE -> data_file, COMPASS_WORKER_COUNT -> worker_count, ...
	envProvider := env.Provider("COMPASS_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "compass_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	// A file that declares reports replaces the built-in definitions
	// instead of merging element-wise with them.
	if k.Exists("reports") {
		cfg.Reports = nil
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects obviously broken configurations early. Scheme weights and
// tier mechanics are validated against the population by the engine.
func (c *Config) validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("%w: data_file must not be empty", ErrInvalidConfig)
	}
	if len(c.Reports) == 0 {
		return fmt.Errorf("%w: no reports declared", ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(c.Reports))
	for _, r := range c.Reports {
		if r.ID == "" {
			return fmt.Errorf("%w: report missing id", ErrInvalidConfig)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("%w: duplicate report id %q", ErrInvalidConfig, r.ID)
		}
		seen[r.ID] = struct{}{}
		if len(r.Indicators) == 0 {
			return fmt.Errorf("%w: report %q declares no indicators", ErrInvalidConfig, r.ID)
		}
		if len(r.Schemes) == 0 {
			return fmt.Errorf("%w: report %q declares no schemes", ErrInvalidConfig, r.ID)
		}
	}
	return nil
}
