// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers defaults, an optional .env file, an optional YAML file and env vars.
// - External errors are wrapped with this package's sentinel kinds.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// NEOFile is the CSV file of near-Earth objects.
	NEOFile string `koanf:"neo_file"`

	// CADFile is the JSON file of close approaches.
	CADFile string `koanf:"cad_file"`

	// MaxQueryLimit caps GET /approaches?limit. 0 disables the cap.
	MaxQueryLimit int `koanf:"max_query_limit"`

	// RateLimitRPS and RateLimitBurst bound per-client HTTP request rates.
	// RateLimitRPS <= 0 disables rate limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// CORSAllowedOrigins lists origins allowed to call the API.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// MetricsEnabled turns Prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name,
	// e.g. neodb_core_queries_total.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsBuckets overrides the latency histogram buckets (milliseconds).
	// Empty keeps the Prometheus defaults.
	MetricsBuckets []float64 `koanf:"metrics_buckets"`

	// MetricsLabels are constant labels attached to every metric.
	// From the environment: NEODB_METRICS_LABELS="env=prod,region=eu".
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		NEOFile:            "data/neos.csv",
		CADFile:            "data/cad.json",
		MaxQueryLimit:      1000,
		RateLimitRPS:       20,
		RateLimitBurst:     40,
		CORSAllowedOrigins: []string{"*"},
		MetricsEnabled:     true,
		MetricsNamespace:   "neodb",
		MetricsSubsystem:   "core",
	}
}
