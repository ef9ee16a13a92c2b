package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/edupredict/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.ArtifactPath, convey.ShouldEqual, "models/student_model_v1.json")
			convey.So(cfg.HistoryDSN, convey.ShouldEqual, "history.db")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.MaxHistoryLimit, convey.ShouldEqual, 500)
			convey.So(cfg.HistoryBusyTimeout, convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.ValidateRanges, convey.ShouldBeTrue)
			convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"*"})
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one bad setting", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"empty artifact path", func(c *config.Config) { c.ArtifactPath = "" }},
			{"zero busy timeout", func(c *config.Config) { c.HistoryBusyTimeout = 0 }},
			{"empty history dsn", func(c *config.Config) { c.HistoryDSN = "" }},
			{"zero queue size", func(c *config.Config) { c.QueueSize = 0 }},
			{"zero workers", func(c *config.Config) { c.WorkerCount = 0 }},
			{"zero history limit", func(c *config.Config) { c.MaxHistoryLimit = 0 }},
			{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
		}

		for _, tc := range cases {
			convey.Convey("When the config has "+tc.name, func() {
				cfg := config.New()
				tc.mutate(cfg)
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
