package config_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/foliolabs/folio/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given a fresh default configuration", t, func() {
		cfg := config.New(context.Background())

		So(cfg.LogLevel, ShouldEqual, "info")
		So(cfg.Addr, ShouldEqual, ":9090")
		So(cfg.QueueSize, ShouldEqual, 1000)
		So(cfg.WorkerCount, ShouldEqual, runtime.NumCPU())
		So(cfg.InflightSize, ShouldEqual, 10000)
		So(cfg.OutcomeHistory, ShouldEqual, 5000)
		So(cfg.MaxRecentLimit, ShouldEqual, 100)
		So(cfg.SettlePollInitialMS, ShouldEqual, 500)
		So(cfg.SettlePollMultiplier, ShouldEqual, 2.0)
		So(cfg.SettlePollMaxAttempts, ShouldEqual, 4)
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FOLIO_CATALOG_URL", "http://readarr:8787")
	t.Setenv("FOLIO_CATALOG_API_KEY", "secret")
	t.Setenv("FOLIO_ADDR", ":7070")
	t.Setenv("FOLIO_LOG_LEVEL", "debug")
	t.Setenv("FOLIO_QUEUE_SIZE", "42")
	t.Setenv("FOLIO_ENRICHMENT_ENABLED", "true")

	Convey("Given environment overrides with the FOLIO_ prefix", t, func() {
		cfg, err := config.Load(context.Background())

		So(err, ShouldBeNil)
		So(cfg.CatalogURL, ShouldEqual, "http://readarr:8787")
		So(cfg.CatalogAPIKey, ShouldEqual, "secret")
		So(cfg.Addr, ShouldEqual, ":7070")
		So(cfg.LogLevel, ShouldEqual, "debug")
		So(cfg.QueueSize, ShouldEqual, 42)
		So(cfg.EnrichmentEnabled, ShouldBeTrue)

		// Untouched fields keep their defaults.
		So(cfg.OutcomeHistory, ShouldEqual, 5000)
	})
}

func TestLoadMissingCatalogURL(t *testing.T) {
	Convey("Given no catalog URL at all", t, func() {
		_, err := config.Load(context.Background())
		So(err, ShouldWrap, config.ErrInvalidConfig)
	})
}

func TestLoadBadMultiplier(t *testing.T) {
	t.Setenv("FOLIO_CATALOG_URL", "http://readarr:8787")
	t.Setenv("FOLIO_SETTLE_POLL_MULTIPLIER", "0.5")

	Convey("Given a settle multiplier below one", t, func() {
		_, err := config.Load(context.Background())
		So(err, ShouldWrap, config.ErrInvalidConfig)
	})
}
