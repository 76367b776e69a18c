package spool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"arbiter-hq/minos/pkg/pipeline"
	"arbiter-hq/minos/pkg/policy"
	"arbiter-hq/minos/pkg/runrecord"
	"arbiter-hq/minos/pkg/telemetry/metrics"
)

// Subdirectories a processed spool file is moved into.
const (
	ProcessedDir = "processed"
	MalformedDir = "malformed"
)

// Ingestor turns spooled run record files into governed evidence bundles.
// Successfully governed records are moved to the processed subdirectory,
// unparseable or malformed ones to the malformed subdirectory so they never
// block the spool. Transient errors leave the file in place for retry.
type Ingestor struct {
	store     *policy.Store
	pipe      *pipeline.Pipeline
	runsRoot  string
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewIngestor creates a spool ingestor. The collector may be nil.
func NewIngestor(store *policy.Store, pipe *pipeline.Pipeline, runsRoot string, collector *metrics.Collector) *Ingestor {
	return &Ingestor{
		store:     store,
		pipe:      pipe,
		runsRoot:  runsRoot,
		collector: collector,
		logger:    slog.Default().With("component", "spool"),
	}
}

// Ingest governs one spooled run record file.
func (i *Ingestor) Ingest(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		i.recordResult("error")
		return fmt.Errorf("failed to read spooled record %q: %w", path, err)
	}

	raw, err := runrecord.ParseRawRecord(data)
	if err != nil {
		i.logger.Warn("spooled record rejected", "path", path, "error", err)
		i.recordResult("malformed")
		return i.quarantine(path)
	}

	runDir := filepath.Join(i.runsRoot, raw.RunID)
	if _, err := i.pipe.Govern(ctx, i.store.Current(), raw, runDir); err != nil {
		var malformed *runrecord.MalformedRecordError
		if errors.As(err, &malformed) {
			i.logger.Warn("spooled record rejected", "path", path, "error", err)
			i.recordResult("malformed")
			return i.quarantine(path)
		}
		i.recordResult("error")
		return fmt.Errorf("failed to govern spooled record %q: %w", path, err)
	}

	i.recordResult("governed")
	i.logger.Info("spooled record governed", "path", path, "run_id", raw.RunID, "bundle_dir", runDir)
	return i.archive(path, ProcessedDir)
}

// quarantine moves a rejected record to the malformed subdirectory.
func (i *Ingestor) quarantine(path string) error {
	return i.archive(path, MalformedDir)
}

// archive moves a handled record file into a spool subdirectory.
func (i *Ingestor) archive(path, subdir string) error {
	dest := filepath.Join(filepath.Dir(path), subdir)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create spool subdirectory %q: %w", dest, err)
	}
	target := filepath.Join(dest, filepath.Base(path))
	if err := os.Rename(path, target); err != nil {
		return fmt.Errorf("failed to archive spooled record %q: %w", path, err)
	}
	return nil
}

func (i *Ingestor) recordResult(result string) {
	if i.collector != nil {
		i.collector.RecordSpoolIngest(result)
	}
}
