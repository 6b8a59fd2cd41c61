// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults; Load layers file and
//   env on top.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CatalogURL and CatalogAPIKey point at the acquisition backend.
	CatalogURL    string `koanf:"catalog_url"`
	CatalogAPIKey string `koanf:"catalog_api_key"`

	// MetadataURL overrides the public catalog used for enrichment.
	// Empty keeps the client default; EnrichmentEnabled turns the
	// pre-orchestration enrichment step on.
	MetadataURL       string `koanf:"metadata_url"`
	EnrichmentEnabled bool   `koanf:"enrichment_enabled"`

	// QueueSize bounds the pending-request queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of resolution workers.
	WorkerCount int `koanf:"worker_count"`

	// InflightSize bounds the in-flight author/title guard.
	InflightSize int `koanf:"inflight_size"`

	// OutcomeHistory bounds the in-memory outcome store.
	OutcomeHistory int `koanf:"outcome_history"`

	// MaxRecentLimit caps GET /requests?limit.
	MaxRecentLimit int `koanf:"max_recent_limit"`

	// LookupCacheTTLSeconds and LookupCacheSize tune the catalog lookup
	// cache.
	LookupCacheTTLSeconds int `koanf:"lookup_cache_ttl_seconds"`
	LookupCacheSize       int `koanf:"lookup_cache_size"`

	// SettlePollInitialMS, SettlePollMultiplier and SettlePollMaxAttempts
	// shape the bounded backoff used while waiting for a freshly created
	// record to be indexed by the backend.
	SettlePollInitialMS   int     `koanf:"settle_poll_initial_ms"`
	SettlePollMultiplier  float64 `koanf:"settle_poll_multiplier"`
	SettlePollMaxAttempts int     `koanf:"settle_poll_max_attempts"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9090",
		QueueSize:             1000,
		WorkerCount:           runtime.NumCPU(),
		InflightSize:          10000,
		OutcomeHistory:        5000,
		MaxRecentLimit:        100,
		LookupCacheTTLSeconds: 300,
		LookupCacheSize:       500,
		SettlePollInitialMS:   500,
		SettlePollMultiplier:  2.0,
		SettlePollMaxAttempts: 4,
	}
}
