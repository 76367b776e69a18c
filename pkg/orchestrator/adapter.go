package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"arbiter-hq/minos/pkg/policy"
	"arbiter-hq/minos/pkg/runrecord"
)

// Captured stream and invocation artifact names inside a run directory.
const (
	StdoutLog      = "orchestrator_stdout.log"
	StderrLog      = "orchestrator_stderr.log"
	InvocationFile = "invocation.json"
)

// DefaultGrace is added to the policy's orchestrator budget before the
// process group is killed, so the orchestrator's own timeout handling gets
// a chance to exit cleanly first.
const DefaultGrace = 30 * time.Second

// Config describes how to invoke the external orchestrator.
type Config struct {
	// Command is the orchestrator executable.
	Command string

	// BaseArgs are prepended to every invocation.
	BaseArgs []string

	// TimeoutFlag, when non-empty, passes the policy's orchestrator budget
	// to the command (e.g. "--orchestrator-timeout").
	TimeoutFlag string

	// ConfigFlag, when non-empty, passes the policy's config_path to the
	// command (e.g. "--config").
	ConfigFlag string

	// RestartMarker and RevisionMarker override the structural log marker
	// patterns. Empty values use the runrecord defaults.
	RestartMarker  string
	RevisionMarker string

	// Grace extends the kill deadline beyond the policy budget.
	// Zero means DefaultGrace.
	Grace time.Duration
}

// Adapter invokes the external orchestration process and produces raw run
// records. It never interprets agent output.
type Adapter struct {
	cfg     Config
	scanner *runrecord.Scanner
	logger  *slog.Logger
}

// invocationRecord is the invocation.json artifact: sanitized launch
// metadata for the bundle.
type invocationRecord struct {
	Schema     string   `json:"schema"`
	RunID      string   `json:"run_id"`
	Cmd        []string `json:"cmd"`
	Dir        string   `json:"cwd"`
	ReturnCode int      `json:"returncode"`
	OK         bool     `json:"ok"`
	WallS      float64  `json:"wall_s"`
	EnvMeta
}

// New creates an adapter. The command is required; marker patterns are
// compiled up front so a bad pattern fails before any run starts.
func New(cfg Config) (*Adapter, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("orchestrator command is required")
	}
	if cfg.Grace <= 0 {
		cfg.Grace = DefaultGrace
	}

	scanner, err := runrecord.NewScanner(cfg.RestartMarker, cfg.RevisionMarker)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		cfg:     cfg,
		scanner: scanner,
		logger:  slog.Default().With("component", "orchestrator"),
	}, nil
}

// NewRunID mints a run identifier.
func NewRunID() string {
	return "run-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Execute invokes the orchestrator with the given prompt under the policy's
// wall-clock budget and returns the raw run record. The record is created
// exactly once, at process completion, and carries references to the
// captured streams inside runDir.
//
// On budget expiry the process group is killed and the record's exit
// status is timeout; the expiry itself is a valid run outcome, not an
// adapter error. Errors are reserved for failures to launch or capture.
func (a *Adapter) Execute(ctx context.Context, prompt string, p *policy.Policy, runDir string) (*runrecord.RawRecord, error) {
	runID := NewRunID()

	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating run dir %s: %w", runDir, err)
	}

	args := append([]string{}, a.cfg.BaseArgs...)
	args = append(args, p.OrchestratorArgs...)
	if a.cfg.TimeoutFlag != "" && p.OrchestratorTimeoutS > 0 {
		args = append(args, a.cfg.TimeoutFlag, strconv.Itoa(p.OrchestratorTimeoutS))
	}
	if a.cfg.ConfigFlag != "" && p.ConfigPath != "" {
		args = append(args, a.cfg.ConfigFlag, p.ConfigPath)
	}
	args = append(args, prompt)

	env, envMeta, err := sanitizeEnv(os.Environ(), p)
	if err != nil {
		return nil, err
	}

	stdoutPath := filepath.Join(runDir, StdoutLog)
	stderrPath := filepath.Join(runDir, StderrLog)
	stdout, err := os.Create(stdoutPath)
	if err != nil {
		return nil, fmt.Errorf("creating stdout capture: %w", err)
	}
	defer stdout.Close()
	stderr, err := os.Create(stderrPath)
	if err != nil {
		return nil, fmt.Errorf("creating stderr capture: %w", err)
	}
	defer stderr.Close()

	// The invocation is always bounded: with no policy budget the grace
	// window alone is the deadline.
	budget := p.OrchestratorTimeout()
	deadline := budget + a.cfg.Grace
	runCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	cmd := exec.CommandContext(runCtx, a.cfg.Command, args...)
	cmd.Dir = runDir
	cmd.Env = env
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	configureCommandProcess(cmd)
	cmd.Cancel = func() error {
		terminateCommandProcess(cmd)
		return nil
	}

	a.logger.Info("invoking orchestrator",
		"run_id", runID,
		"command", a.cfg.Command,
		"budget_s", p.OrchestratorTimeoutS,
	)

	start := time.Now()
	runErr := cmd.Run()
	wall := time.Since(start)

	status := runrecord.ExitCompleted
	returnCode := 0
	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		status = runrecord.ExitTimeout
		returnCode = 124
		fmt.Fprintf(stderr, "\n[minos] orchestrator killed after %s (budget %s + grace %s)\n",
			wall.Round(time.Millisecond), budget, a.cfg.Grace)
	case runErr != nil:
		status = runrecord.ExitFailed
		returnCode = 1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			returnCode = exitErr.ExitCode()
		} else {
			fmt.Fprintf(stderr, "\n[minos] launch failed: %v\n", runErr)
		}
	}

	if err := stdout.Sync(); err != nil {
		return nil, fmt.Errorf("flushing stdout capture: %w", err)
	}
	if err := stderr.Sync(); err != nil {
		return nil, fmt.Errorf("flushing stderr capture: %w", err)
	}

	counts, err := a.scanner.ScanFile(stdoutPath)
	if err != nil {
		return nil, fmt.Errorf("scanning captured output: %w", err)
	}

	durationS := wall.Seconds()
	inv := &invocationRecord{
		Schema:     "minos.invocation.v1",
		RunID:      runID,
		Cmd:        append([]string{a.cfg.Command}, args...),
		Dir:        runDir,
		ReturnCode: returnCode,
		OK:         status == runrecord.ExitCompleted,
		WallS:      durationS,
		EnvMeta:    *envMeta,
	}
	invPath := filepath.Join(runDir, InvocationFile)
	if err := writeInvocation(invPath, inv); err != nil {
		return nil, err
	}

	a.logger.Info("orchestrator finished",
		"run_id", runID,
		"exit_status", string(status),
		"returncode", returnCode,
		"wall_s", durationS,
		"restarts", counts.Restarts,
		"revisions", counts.Revisions,
	)

	return &runrecord.RawRecord{
		RunID:        runID,
		ExitStatus:   status,
		RestartCount: counts.Restarts,
		DurationS:    durationS,
		ChurnSignal:  runrecord.ComputeChurn(counts.Revisions, durationS),
		RawLogRefs:   []string{stdoutPath, stderrPath, invPath},
	}, nil
}

func writeInvocation(path string, inv *invocationRecord) error {
	data, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling invocation record: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing invocation record: %w", err)
	}
	return nil
}
