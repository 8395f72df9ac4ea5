package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/neodb/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		// Point the .env layer at a file that does not exist unless a case sets it.
		chdirTemp(t)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.MaxQueryLimit, convey.ShouldEqual, 1000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("NEODB_ADDR", ":8080")
			_ = os.Setenv("NEODB_NEO_FILE", "/tmp/neos.csv")
			_ = os.Setenv("NEODB_MAX_QUERY_LIMIT", "50")
			_ = os.Setenv("NEODB_RATE_LIMIT_RPS", "2.5")
			_ = os.Setenv("NEODB_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.NEOFile, convey.ShouldEqual, "/tmp/neos.csv")
				convey.So(cfg.MaxQueryLimit, convey.ShouldEqual, 50)
				convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 2.5)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
neo_file: "neos.csv"
cad_file: "cad.json"
max_query_limit: 10
log_format: json
`)
			_ = os.Setenv("NEODB_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from the file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.NEOFile, convey.ShouldEqual, "neos.csv")
				convey.So(cfg.CADFile, convey.ShouldEqual, "cad.json")
				convey.So(cfg.MaxQueryLimit, convey.ShouldEqual, 10)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info") // From defaults
			})
		})

		convey.Convey("When both file and environment variables are set", func() {
			tmpFile := createTempConfigFile(t, "addr: \":9090\"\nmax_query_limit: 10\n")
			_ = os.Setenv("NEODB_CONFIG", tmpFile)
			_ = os.Setenv("NEODB_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxQueryLimit, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When a .env file is present", func() {
			dotenv := filepath.Join(t.TempDir(), "neodb.env")
			convey.So(os.WriteFile(dotenv, []byte("NEODB_CAD_FILE=from-dotenv.json\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("NEODB_DOTENV", dotenv)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then its variables are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CADFile, convey.ShouldEqual, "from-dotenv.json")
			})
		})

		convey.Convey("When an explicit .env file is missing", func() {
			_ = os.Setenv("NEODB_DOTENV", "/non/existent/.env")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid YAML", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("NEODB_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-existent file", func() {
			_ = os.Setenv("NEODB_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("NEODB_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("NEODB_MAX_QUERY_LIMIT", "lots")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When metrics settings come from the environment", func() {
			_ = os.Setenv("NEODB_METRICS_ENABLED", "false")
			_ = os.Setenv("NEODB_METRICS_NAMESPACE", "sky")
			_ = os.Setenv("NEODB_METRICS_SUBSYSTEM", "watch")
			_ = os.Setenv("NEODB_METRICS_BUCKETS", "1, 10,100")
			_ = os.Setenv("NEODB_METRICS_LABELS", "env=prod, region=eu")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then they are parsed into the metrics fields", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "sky")
				convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "watch")
				convey.So(cfg.MetricsBuckets, convey.ShouldResemble, []float64{1, 10, 100})
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"env": "prod", "region": "eu"})
			})
		})

		convey.Convey("When metrics settings come from a YAML file", func() {
			tmpFile := createTempConfigFile(t, `
metrics_namespace: sky
metrics_buckets: [0.5, 5, 50]
metrics_labels:
  env: staging
`)
			_ = os.Setenv("NEODB_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then lists and maps load directly", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "sky")
				convey.So(cfg.MetricsSubsystem, convey.ShouldEqual, "core")
				convey.So(cfg.MetricsBuckets, convey.ShouldResemble, []float64{0.5, 5, 50})
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"env": "staging"})
			})
		})

		convey.Convey("When metrics settings are invalid", func() {
			defer clearConfigEnvVars()

			convey.Convey("Then a namespace with a dash is rejected", func() {
				_ = os.Setenv("NEODB_METRICS_NAMESPACE", "neo-db")
				_, err := config.Load(ctx)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})

			convey.Convey("Then buckets out of order are rejected", func() {
				_ = os.Setenv("NEODB_METRICS_BUCKETS", "10,1")
				_, err := config.Load(ctx)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})

			convey.Convey("Then a label without a value separator is rejected", func() {
				_ = os.Setenv("NEODB_METRICS_LABELS", "env")
				_, err := config.Load(ctx)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})

			convey.Convey("Then a reserved label name is rejected", func() {
				_ = os.Setenv("NEODB_METRICS_LABELS", "__name__=x")
				_, err := config.Load(ctx)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When rate limiting is enabled without burst", func() {
			_ = os.Setenv("NEODB_RATE_LIMIT_BURST", "0")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"NEODB_CONFIG",
		"NEODB_DOTENV",
		"NEODB_ADDR",
		"NEODB_NEO_FILE",
		"NEODB_CAD_FILE",
		"NEODB_MAX_QUERY_LIMIT",
		"NEODB_RATE_LIMIT_RPS",
		"NEODB_RATE_LIMIT_BURST",
		"NEODB_CORS_ALLOWED_ORIGINS",
		"NEODB_METRICS_ENABLED",
		"NEODB_METRICS_NAMESPACE",
		"NEODB_METRICS_SUBSYSTEM",
		"NEODB_METRICS_BUCKETS",
		"NEODB_METRICS_LABELS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "neodb-config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
