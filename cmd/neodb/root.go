package main

import (
	"context"
	"fmt"
	"os"

	service "github.com/okian/neodb/internal/app"
	"github.com/okian/neodb/internal/config"
	"github.com/okian/neodb/pkg/logger"
	"github.com/okian/neodb/pkg/metrics"
	"github.com/spf13/cobra"
)

// cli holds state shared by every subcommand.
type cli struct {
	configFile string
	neoFile    string
	cadFile    string
	strict     bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "neodb",
		Short: "Explore near-Earth objects and their close approaches",
		Long: `neodb links a NEO catalogue (CSV) with close-approach data (JSON) and
lets you inspect single objects, query approaches or serve both over HTTP.

Examples:
  neodb inspect --pdes 433
  neodb inspect --name Halley --verbose
  neodb query --date 2020-01-01 --hazardous --limit 5
  neodb query --start-date 2020-01-01 --max-distance 0.05 --outfile results.csv
  neodb serve`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "YAML config file (overrides "+config.EnvConfigFile+")")
	root.PersistentFlags().StringVar(&c.neoFile, "neofile", "", "path to the NEO CSV file")
	root.PersistentFlags().StringVar(&c.cadFile, "cadfile", "", "path to the close-approach JSON file")
	root.PersistentFlags().BoolVar(&c.strict, "strict", false, "fail on malformed source rows instead of skipping them")

	root.AddCommand(newInspectCmd(c), newQueryCmd(c), newServeCmd(c))
	return root
}

// setup loads configuration and initialises logging before any subcommand.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if c.configFile != "" {
		if err := os.Setenv(config.EnvConfigFile, c.configFile); err != nil {
			return fmt.Errorf("set %s: %w", config.EnvConfigFile, err)
		}
	}
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	if c.neoFile != "" {
		cfg.NEOFile = c.neoFile
	}
	if c.cadFile != "" {
		cfg.CADFile = c.cadFile
	}
	c.cfg = cfg

	if err := logger.InitWith(cmd.ErrOrStderr(), cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	metrics.Configure(metricsOptions(cfg)...)
	return nil
}

func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithHistogramBuckets(cfg.MetricsBuckets),
		metrics.WithCustomLabels(cfg.MetricsLabels),
	}
}

// startService loads and links the dataset named by the configuration.
func (c *cli) startService(ctx context.Context, opts ...service.Option) (*service.Service, error) {
	opts = append([]service.Option{
		service.WithLogger(logger.Named("service")),
		service.WithNEOPath(c.cfg.NEOFile),
		service.WithApproachPath(c.cfg.CADFile),
		service.WithStrictLoading(c.strict),
	}, opts...)
	svc := service.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}
