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

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if FOLIO_CONFIG is set
//  3. env (prefix FOLIO_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv("FOLIO_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: FOLIO_ADDR, FOLIO_CATALOG_URL, ...
	// Keys map flat: FOLIO_QUEUE_SIZE -> queue_size, matching the koanf
	// tags on the struct.
	envProvider := env.Provider("FOLIO_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "folio_")
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
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.CatalogURL == "" {
		return fmt.Errorf("%w: catalog_url must not be empty", ErrInvalidConfig)
	}
	if c.SettlePollMultiplier < 1 {
		return fmt.Errorf("%w: settle_poll_multiplier must be >= 1", ErrInvalidConfig)
	}
	return nil
}
