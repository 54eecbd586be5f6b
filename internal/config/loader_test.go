package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/E1207/bank-transaction-ml/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

var configEnvVars = []string{
	"CREDIT_CONFIG", "CREDIT_ADDR", "CREDIT_THRESHOLD", "CREDIT_WORKER_COUNT",
	"CREDIT_PREDICTOR__BASE_URL", "CREDIT_PREDICTOR__TIMEOUT", "CREDIT_HISTORY__BACKEND",
}

func clearConfigEnvVars() {
	for _, name := range configEnvVars {
		_ = os.Unsetenv(name)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load()

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.Threshold, convey.ShouldEqual, 75)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("CREDIT_ADDR", ":8080")
			_ = os.Setenv("CREDIT_THRESHOLD", "70")
			_ = os.Setenv("CREDIT_WORKER_COUNT", "16")
			_ = os.Setenv("CREDIT_PREDICTOR__BASE_URL", "http://ml:5001")
			_ = os.Setenv("CREDIT_PREDICTOR__TIMEOUT", "15s")
			_ = os.Setenv("CREDIT_HISTORY__BACKEND", "redis")

			cfg, err := config.Load()

			convey.Convey("Then flat and nested keys override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Threshold, convey.ShouldEqual, 70)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.Predictor.BaseURL, convey.ShouldEqual, "http://ml:5001")
				convey.So(cfg.Predictor.Timeout, convey.ShouldEqual, 15*time.Second)
				convey.So(cfg.Predictor.MaxRetries, convey.ShouldEqual, 2)
				convey.So(cfg.History.Backend, convey.ShouldEqual, "redis")
				convey.So(cfg.History.MaxRecords, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with a YAML file and env overrides", func() {
			path := writeConfigFile(t, `
addr: ":9090"
threshold: 80
catalog_path: /etc/credit/catalog.yaml
predictor:
  max_retries: 4
history:
  backend: postgres
  postgres_dsn: postgres://credit@db/credit?sslmode=disable
  max_records: 250
`)
			_ = os.Setenv("CREDIT_CONFIG", path)
			_ = os.Setenv("CREDIT_ADDR", ":8081")

			cfg, err := config.Load()

			convey.Convey("Then env wins over the file and the file over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.Threshold, convey.ShouldEqual, 80)
				convey.So(cfg.CatalogPath, convey.ShouldEqual, "/etc/credit/catalog.yaml")
				convey.So(cfg.Predictor.MaxRetries, convey.ShouldEqual, 4)
				convey.So(cfg.Predictor.Timeout, convey.ShouldEqual, 60*time.Second)
				convey.So(cfg.History.Repository().PostgresDSN, convey.ShouldStartWith, "postgres://")
				convey.So(cfg.History.MaxRecords, convey.ShouldEqual, 250)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			_ = os.Setenv("CREDIT_CONFIG", writeConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load()

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("CREDIT_CONFIG", "/non/existent/config.yaml")

			_, err := config.Load()
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the loaded values are inconsistent", func() {
			_ = os.Setenv("CREDIT_THRESHOLD", "150")

			_, err := config.Load()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
