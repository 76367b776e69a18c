package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"arbiter-hq/minos/pkg/cli"
	"arbiter-hq/minos/pkg/ledger"
	"arbiter-hq/minos/pkg/pipeline"
	"arbiter-hq/minos/pkg/policy"
	"arbiter-hq/minos/pkg/retention"
	"arbiter-hq/minos/pkg/spool"
	"arbiter-hq/minos/pkg/telemetry/metrics"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a spool directory for run records",
	Long: `Run as a long-lived governor: watch the configured spool directory for
run record JSON files dropped by external measurement harnesses, govern
each one as it settles, and persist the evidence bundles.

When metrics are enabled with a listen address, /metrics is served over
HTTP. When retention is enabled, aged verdicts and bundles are pruned on
the configured schedule.

Examples:
  minos watch
  MINOS_SPOOL_DIR=/var/spool/minos minos watch`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError(cfgFile, "", fmt.Sprintf("failed to load config: %v", err))
	}
	if cfg.Spool.Dir == "" {
		return cli.NewConfigError(cfgFile, "spool.dir", "no spool directory configured")
	}

	store := policy.NewStore(cfg.Policy.Path)
	if _, err := store.Load(); err != nil {
		return cli.NewCommandError("watch", err)
	}

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
	logger := slog.Default().With("component", "watch")

	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
		if addr := cfg.Telemetry.Metrics.ListenAddress; addr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{}))
			server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("metrics listener failed", "error", err)
				}
			}()
			go func() {
				<-ctx.Done()
				server.Close()
			}()
			logger.Info("metrics listener started", "addr", addr)
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Ledger.Path), 0o755); err != nil {
		return cli.NewCommandError("watch", err)
	}
	history, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer history.Close()

	if cfg.Retention.Enabled {
		pruner := retention.NewPruner(history, &retention.Config{
			RetentionDays: cfg.Retention.Days,
			PruneSchedule: cfg.Retention.Schedule,
			RunsRoot:      cfg.Runs.RootDir,
		})
		scheduler := retention.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("watch", err)
		}
		defer scheduler.Stop()
	}

	opts := []pipeline.Option{pipeline.WithLedger(history)}
	if collector != nil {
		opts = append(opts, pipeline.WithMetrics(collector))
	}
	ingestor := spool.NewIngestor(store, pipeline.New(opts...), cfg.Runs.RootDir, collector)

	watcher, err := spool.NewWatcher(spool.WatcherConfig{
		Dir:      cfg.Spool.Dir,
		Debounce: cfg.Spool.Debounce,
	}, nil)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	logger.Info("governing spool directory",
		"spool_dir", cfg.Spool.Dir,
		"runs_root", cfg.Runs.RootDir,
		"policy_id", store.Current().PolicyID,
	)
	if err := watcher.Watch(ctx, ingestor.Ingest); err != nil {
		return cli.NewCommandError("watch", err)
	}
	return nil
}
