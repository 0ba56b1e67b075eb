package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reliefvalve/prv/internal/config"
	errwrap "github.com/reliefvalve/prv/internal/errors"
	"github.com/reliefvalve/prv/internal/metrics"
	"github.com/reliefvalve/prv/internal/observability"
	"github.com/reliefvalve/prv/internal/relay"
)

func runRelay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := observability.CLILogger

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	relayCfg := cfg.RelayConfig()

	if cfg.Metrics.Enabled {
		if err := observability.InitMetrics(config.AppName, cfg.Metrics.Port); err != nil {
			// The pipeline matters more than its metrics.
			logger.Warn("Failed to start metrics exporter", zap.Error(err))
		} else {
			logger.Debug("Metrics exporter started", zap.Int("metrics_port", observability.GetMetricsPort()))
			metrics.RecordConfig(relayCfg)
			defer func() {
				if err := observability.StopMetrics(); err != nil {
					logger.Warn("Failed to stop metrics exporter", zap.Error(err))
				}
			}()
		}
	}

	logger.Debug("Starting relay",
		zap.String("correlation_id", errwrap.CorrelationID(ctx)),
		zap.Uint64("limit", relayCfg.Limit),
		zap.Uint64("window_seconds", relayCfg.Window),
		zap.String("write_buffer", string(relayCfg.WriteBuffer)),
		zap.Bool("verbose", relayCfg.Verbose))

	r := relay.New(relayCfg, relay.WithObserver(metrics.RelayObserver{}))
	started := time.Now()
	runErr := r.Run(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())

	stats := r.Stats()
	logger.Debug("Relay finished",
		zap.String("correlation_id", errwrap.CorrelationID(ctx)),
		zap.Uint64("lines_read", stats.LinesRead),
		zap.Uint64("lines_admitted", stats.Admitted),
		zap.Uint64("lines_discarded", stats.Discarded),
		zap.Uint64("windows", stats.Windows),
		zap.Duration("elapsed", time.Since(started)))
	_ = logger.Sync()

	if runErr != nil {
		return errwrap.WrapIO(ctx, runErr, "relay aborted")
	}
	return nil
}
