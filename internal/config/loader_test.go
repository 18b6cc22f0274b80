package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/chainaudit/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DatasetFile, convey.ShouldEqual, "")
				convey.So(cfg.SessionTTLSeconds, convey.ShouldEqual, 1800)
				convey.So(cfg.SecureCookie, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CHAINAUDIT_ADDR", ":8080")
			_ = os.Setenv("CHAINAUDIT_DEFAULT_BASE_PRICE", "16.5")
			_ = os.Setenv("CHAINAUDIT_DEFAULT_RISK_THRESHOLD", "75")
			_ = os.Setenv("CHAINAUDIT_SESSION_TTL_SECONDS", "300")
			_ = os.Setenv("CHAINAUDIT_LOG_LEVEL", "debug")
			_ = os.Setenv("CHAINAUDIT_SECURE_COOKIE", "true")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DefaultBasePrice, convey.ShouldEqual, 16.5)
				convey.So(cfg.DefaultRiskThreshold, convey.ShouldEqual, 75)
				convey.So(cfg.SessionTTLSeconds, convey.ShouldEqual, 300)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.SecureCookie, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
dataset_file: /etc/chainaudit/dataset.yaml
max_sessions: 50
notice_dedupe_size: 20
`)
			_ = os.Setenv("CHAINAUDIT_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DatasetFile, convey.ShouldEqual, "/etc/chainaudit/dataset.yaml")
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 50)
				convey.So(cfg.NoticeDedupeSize, convey.ShouldEqual, 20)
			})

			convey.Convey("And fields missing from the file should keep defaults", func() {
				convey.So(cfg.SessionSweepSeconds, convey.ShouldEqual, 60)
				convey.So(cfg.DefaultBasePrice, convey.ShouldEqual, 14.2)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
max_sessions: 50
`)
			_ = os.Setenv("CHAINAUDIT_CONFIG", tmpFile)
			_ = os.Setenv("CHAINAUDIT_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("CHAINAUDIT_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("CHAINAUDIT_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("CHAINAUDIT_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})

		convey.Convey("When the default risk threshold is outside the slider", func() {
			_ = os.Setenv("CHAINAUDIT_DEFAULT_RISK_THRESHOLD", "150")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, k := range []string{
		"CHAINAUDIT_CONFIG",
		"CHAINAUDIT_ADDR",
		"CHAINAUDIT_LOG_LEVEL",
		"CHAINAUDIT_LOG_FORMAT",
		"CHAINAUDIT_DATASET_FILE",
		"CHAINAUDIT_DEFAULT_BASE_PRICE",
		"CHAINAUDIT_DEFAULT_RISK_THRESHOLD",
		"CHAINAUDIT_SESSION_TTL_SECONDS",
		"CHAINAUDIT_SESSION_SWEEP_SECONDS",
		"CHAINAUDIT_MAX_SESSIONS",
		"CHAINAUDIT_NOTICE_DEDUPE_SIZE",
		"CHAINAUDIT_SHUTDOWN_TIMEOUT_SECONDS",
		"CHAINAUDIT_SECURE_COOKIE",
	} {
		_ = os.Unsetenv(k)
	}
}
