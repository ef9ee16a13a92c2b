package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/edupredict/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"*"})
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("EDUPREDICT_ADDR", ":8080")
			_ = os.Setenv("EDUPREDICT_QUEUE_SIZE", "2000")
			_ = os.Setenv("EDUPREDICT_WORKER_COUNT", "16")
			_ = os.Setenv("EDUPREDICT_ARTIFACT_PATH", "/srv/models/v2.json")
			_ = os.Setenv("EDUPREDICT_VALIDATE_RANGES", "false")
			_ = os.Setenv("EDUPREDICT_HISTORY_BUSY_TIMEOUT", "250ms")
			_ = os.Setenv("EDUPREDICT_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 2000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.ArtifactPath, convey.ShouldEqual, "/srv/models/v2.json")
				convey.So(cfg.ValidateRanges, convey.ShouldBeFalse)
				convey.So(cfg.HistoryBusyTimeout, convey.ShouldEqual, 250*time.Millisecond)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
log_format: json
history_dsn: /var/lib/edupredict/history.db
history_busy_timeout: 2s
queue_size: 300
max_history_limit: 50
cors_allowed_origins:
  - http://localhost:3000
`)
			_ = os.Setenv("EDUPREDICT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.HistoryDSN, convey.ShouldEqual, "/var/lib/edupredict/history.db")
				convey.So(cfg.HistoryBusyTimeout, convey.ShouldEqual, 2*time.Second)
				convey.So(cfg.ValidateRanges, convey.ShouldBeTrue) // From defaults
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.MaxHistoryLimit, convey.ShouldEqual, 50)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"http://localhost:3000"})
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000) // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
queue_size: 300
worker_count: 24
`)
			_ = os.Setenv("EDUPREDICT_CONFIG", tmpFile)
			_ = os.Setenv("EDUPREDICT_ADDR", ":8080")
			_ = os.Setenv("EDUPREDICT_WORKER_COUNT", "32")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")   // Overridden by env
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)  // From file
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32) // Overridden by env
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("EDUPREDICT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("EDUPREDICT_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("EDUPREDICT_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("EDUPREDICT_QUEUE_SIZE", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := config.Load(cctx)
			convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
		})
	})
}

// Helper functions.
func clearConfigEnvVars() {
	for _, name := range []string{
		"EDUPREDICT_CONFIG",
		"EDUPREDICT_ADDR",
		"EDUPREDICT_LOG_LEVEL",
		"EDUPREDICT_LOG_FORMAT",
		"EDUPREDICT_ARTIFACT_PATH",
		"EDUPREDICT_HISTORY_DSN",
		"EDUPREDICT_HISTORY_BUSY_TIMEOUT",
		"EDUPREDICT_QUEUE_SIZE",
		"EDUPREDICT_WORKER_COUNT",
		"EDUPREDICT_DEDUPE_SIZE",
		"EDUPREDICT_MAX_HISTORY_LIMIT",
		"EDUPREDICT_VALIDATE_RANGES",
		"EDUPREDICT_CORS_ALLOWED_ORIGINS",
	} {
		_ = os.Unsetenv(name)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
