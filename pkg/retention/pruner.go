package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"arbiter-hq/minos/pkg/ledger"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain verdicts and their
	// evidence bundles. 0 means keep everything forever (no pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string

	// RunsRoot is the directory under which evidence bundles live.
	// Bundle directories are only removed when they sit under this root.
	RunsRoot string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays: 90,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner enforces the retention period on the verdict ledger and the
// evidence bundles its rows point at. The ledger row is deleted first;
// a bundle directory that fails to delete is logged and retried on the
// next cycle via the orphan sweep.
type Pruner struct {
	history *ledger.Ledger
	config  *Config
	logger  *slog.Logger
}

// NewPruner creates a retention pruner over the given ledger.
func NewPruner(history *ledger.Ledger, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Pruner{
		history: history,
		config:  config,
		logger:  slog.Default().With("component", "retention"),
	}
}

// Prune deletes ledger rows older than the retention period and removes
// the bundle directories they reference. Returns how many runs were pruned.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -p.config.RetentionDays)
	pruned, err := p.history.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune by age failed: %w", err)
	}

	var removed int64
	for _, entry := range pruned {
		removed++
		if entry.BundleDir == "" {
			continue
		}
		if !p.underRunsRoot(entry.BundleDir) {
			p.logger.Warn("bundle outside runs root left in place",
				"run_id", entry.RunID,
				"bundle_dir", entry.BundleDir,
			)
			continue
		}
		if err := os.RemoveAll(entry.BundleDir); err != nil {
			p.logger.Error("failed to remove pruned bundle",
				"run_id", entry.RunID,
				"bundle_dir", entry.BundleDir,
				"error", err,
			)
		}
	}

	if removed > 0 {
		p.logger.Info("retention pruning completed",
			"pruned_runs", removed,
			"cutoff", cutoff.Format(time.RFC3339),
		)
	}
	return removed, nil
}

// underRunsRoot reports whether dir is inside the configured runs root.
// With no root configured, nothing qualifies.
func (p *Pruner) underRunsRoot(dir string) bool {
	if p.config.RunsRoot == "" {
		return false
	}
	rel, err := filepath.Rel(p.config.RunsRoot, dir)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != "."
}
