package config_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"github.com/stagewise/stagewise/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			convey.So(cfg.DBPath, convey.ShouldEqual, "stagewise.db")
			convey.So(cfg.MaxMetrics, convey.ShouldEqual, 1000)
			convey.So(cfg.SampleQueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.IngestWorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.OnTimeWindowDays, convey.ShouldEqual, 90)
			convey.So(cfg.SlowQueryMs, convey.ShouldEqual, 100)
			convey.So(cfg.SlowAPIMs, convey.ShouldEqual, 500)
		})

		convey.Convey("And the alert thresholds bundle matches", func() {
			th := cfg.AlertThresholds()
			convey.So(th.AvgAPIMs, convey.ShouldEqual, 1000)
			convey.So(th.P95APIMs, convey.ShouldEqual, 2000)
			convey.So(th.AvgQueryMs, convey.ShouldEqual, 200)
			convey.So(th.MaxJobMs, convey.ShouldEqual, 60_000)
		})
	})
}

func TestConfig_Load(t *testing.T) {
	convey.Convey("Given the environment overrides a value", t, func() {
		t.Setenv("STAGEWISE_ADDR", ":7070")
		t.Setenv("STAGEWISE_MAX_METRICS", "50")

		cfg, err := config.Load(context.Background())

		convey.Convey("Then env layers over the defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			convey.So(cfg.MaxMetrics, convey.ShouldEqual, 50)
			convey.So(cfg.DBPath, convey.ShouldEqual, "stagewise.db")
		})
	})

	convey.Convey("Given a YAML config file", t, func() {
		path := filepath.Join(t.TempDir(), "config.yaml")
		body := "addr: \":6060\"\non_time_window_days: 30\n"
		convey.So(os.WriteFile(path, []byte(body), 0o600), convey.ShouldBeNil)
		t.Setenv("STAGEWISE_CONFIG", path)

		convey.Convey("Then the file layers over the defaults", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
			convey.So(cfg.OnTimeWindowDays, convey.ShouldEqual, 30)
		})

		convey.Convey("And env still wins over the file", func() {
			t.Setenv("STAGEWISE_ADDR", ":5050")
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":5050")
		})
	})

	convey.Convey("Given an invalid override", t, func() {
		t.Setenv("STAGEWISE_MAX_METRICS", "0")

		convey.Convey("Then loading fails with the invalid-config kind", func() {
			_, err := config.Load(context.Background())
			convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
		})
	})

	convey.Convey("Given a missing config file path", t, func() {
		t.Setenv("STAGEWISE_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

		convey.Convey("Then loading fails with the load-config kind", func() {
			_, err := config.Load(context.Background())
			convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
		})
	})
}
