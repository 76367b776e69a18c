package pipeline

import (
	"context"
	"log/slog"
	"time"

	"arbiter-hq/minos/pkg/bundle"
	"arbiter-hq/minos/pkg/ledger"
	"arbiter-hq/minos/pkg/policy"
	"arbiter-hq/minos/pkg/runrecord"
	"arbiter-hq/minos/pkg/telemetry/logging"
	"arbiter-hq/minos/pkg/telemetry/metrics"
	"arbiter-hq/minos/pkg/verdict"
)

// Result is the outcome of governing one run: the rendered decision plus
// the persisted evidence bundle's manifest.
type Result struct {
	Decision *verdict.Decision
	Manifest *bundle.Manifest

	// BundleDir is the directory the evidence bundle was written to.
	BundleDir string
}

// Pipeline runs the governance sequence for a raw run record: normalize the
// record into metrics, evaluate it against the active policy, and persist
// the evidence bundle. The ledger and metrics collector are optional; a nil
// collector or ledger simply skips that step.
type Pipeline struct {
	collector *metrics.Collector
	history   *ledger.Ledger
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics records verdict and run metrics on the given collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(p *Pipeline) { p.collector = c }
}

// WithLedger appends every rendered verdict to the given ledger.
func WithLedger(l *ledger.Ledger) Option {
	return func(p *Pipeline) { p.history = l }
}

// New creates a governance pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger: slog.Default().With("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Govern takes a raw run record through normalization, evaluation, and
// evidence persistence. A malformed record or a persistence failure aborts
// before any partial decision is recorded; the error carries the cause.
//
// Normalization, evaluation, and persistence are synchronous. The ledger
// append happens after the bundle is durable, so a ledger failure is logged
// but does not invalidate the verdict: the bundle on disk remains the
// authoritative record.
func (p *Pipeline) Govern(ctx context.Context, pol *policy.Policy, raw *runrecord.RawRecord, runDir string) (*Result, error) {
	logger := p.logger.With(logging.ContextFields(ctx)...).With("run_id", raw.RunID, "policy_id", pol.PolicyID)

	m, err := runrecord.Normalize(raw)
	if err != nil {
		logger.Error("run record rejected", "error", err)
		return nil, err
	}

	start := time.Now()
	d := verdict.Evaluate(m, pol)
	elapsed := time.Since(start)

	logger.Info("verdict rendered",
		"verdict", string(d.Verdict),
		"violations", len(d.Violations),
		"exceedances", len(d.Exceedances()),
	)

	manifest, err := bundle.Persist(runDir, pol, m, d, raw.RawLogRefs)
	if err != nil {
		logger.Error("evidence bundle persistence failed", "error", err, "run_dir", runDir)
		return nil, err
	}

	if p.collector != nil {
		p.collector.RecordVerdict(string(d.Verdict), pol.PolicyID, elapsed, len(d.Exceedances()))
		p.collector.RecordRun(string(m.ExitStatus), raw.DurationS, float64(raw.RestartCount), raw.ChurnSignal)
		p.collector.RecordBundle(manifestBytes(manifest))
	}

	if p.history != nil {
		entry := &ledger.Entry{
			RunID:       d.RunID,
			PolicyID:    d.PolicyID,
			Verdict:     string(d.Verdict),
			ExitStatus:  string(m.ExitStatus),
			EvaluatedAt: d.EvaluatedAt,
			BundleDir:   runDir,
			Violations:  d.Violations,
		}
		if err := p.history.Append(ctx, entry); err != nil {
			logger.Error("ledger append failed", "error", err)
		}
	}

	return &Result{Decision: d, Manifest: manifest, BundleDir: runDir}, nil
}

// manifestBytes sums the sizes of all files the manifest lists.
func manifestBytes(m *bundle.Manifest) int64 {
	var total int64
	for _, f := range m.Files {
		total += f.Size
	}
	return total
}
