// Package runner drives the sync test pipeline: environment reset and
// provisioning, dependency install, import sanity check, the external
// sync test program and the external result writer. Steps run strictly
// in sequence and the first failure aborts the remainder.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/cardano-community/node-sync-runner/exitcodes"
	"github.com/cardano-community/node-sync-runner/metrics"
	"github.com/cardano-community/node-sync-runner/types"
	"github.com/cardano-community/node-sync-runner/venv"
)

// Pipeline step identifiers
const (
	StepReset       = "reset"
	StepVenv        = "venv"
	StepInstall     = "install"
	StepImportCheck = "import-check"
	StepSyncTest    = "sync-test"
	StepDBWrite     = "db-write"
)

// Provisioner is the environment the pipeline provisions and runs in.
// venv.Environment is the production implementation.
type Provisioner interface {
	Reset(ctx context.Context) error
	Create(ctx context.Context) error
	Install(ctx context.Context, packages []string) error
	Verify(ctx context.Context, modules []string) error
	Python() string
	Environ() []string
}

// StepRunner defines the interface for running the sync test pipeline
type StepRunner interface {
	RunAll(ctx context.Context) (*RunResult, error)
}

// Config holds configuration for creating a new runner
type Config struct {
	Env                Provisioner
	Log                log.Logger
	WorkDir            string // Directory the external programs are run from
	SyncScript         string // Path to the sync test program
	WriteScript        string // Path to the result writer program
	Network            string
	Tag1               string
	Tag2               string
	HydraEval1         string
	HydraEval2         string
	Manifest           venv.Manifest
	SkipImportCheck    bool
	OutputRealtimeLogs bool // If enabled, external program output is mirrored to stdout
}

type runner struct {
	env                Provisioner
	log                log.Logger
	workDir            string
	syncScript         string
	writeScript        string
	network            string
	tag1               string
	tag2               string
	hydraEval1         string
	hydraEval2         string
	manifest           venv.Manifest
	skipImportCheck    bool
	outputRealtimeLogs bool
	tracer             trace.Tracer
}

// NewStepRunner creates a new pipeline runner instance
func NewStepRunner(cfg Config) (StepRunner, error) {
	if cfg.Env == nil {
		return nil, fmt.Errorf("environment is required")
	}
	if cfg.SyncScript == "" {
		return nil, fmt.Errorf("sync test program is required")
	}
	if cfg.WriteScript == "" {
		return nil, fmt.Errorf("result writer program is required")
	}
	if cfg.Network == "" {
		return nil, fmt.Errorf("network is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	return &runner{
		env:                cfg.Env,
		log:                cfg.Log,
		workDir:            cfg.WorkDir,
		syncScript:         cfg.SyncScript,
		writeScript:        cfg.WriteScript,
		network:            cfg.Network,
		tag1:               cfg.Tag1,
		tag2:               cfg.Tag2,
		hydraEval1:         cfg.HydraEval1,
		hydraEval2:         cfg.HydraEval2,
		manifest:           cfg.Manifest,
		skipImportCheck:    cfg.SkipImportCheck,
		outputRealtimeLogs: cfg.OutputRealtimeLogs,
		tracer:             otel.Tracer("node-sync-runner/runner"),
	}, nil
}

type step struct {
	id          string
	description string
	run         func(ctx context.Context) (string, error)
}

func (r *runner) steps() []step {
	steps := []step{
		{
			id:          StepReset,
			description: "recreate environment directory",
			run: func(ctx context.Context) (string, error) {
				return "", r.env.Reset(ctx)
			},
		},
		{
			id:          StepVenv,
			description: "create isolated Python environment",
			run: func(ctx context.Context) (string, error) {
				return "", r.env.Create(ctx)
			},
		},
		{
			id:          StepInstall,
			description: fmt.Sprintf("install %d packages", len(r.manifest.Packages)),
			run: func(ctx context.Context) (string, error) {
				return "", r.env.Install(ctx, r.manifest.Packages)
			},
		},
	}

	if !r.skipImportCheck && len(r.manifest.Imports) > 0 {
		steps = append(steps, step{
			id:          StepImportCheck,
			description: "sanity-check imports",
			run: func(ctx context.Context) (string, error) {
				return "", r.env.Verify(ctx, r.manifest.Imports)
			},
		})
	}

	steps = append(steps,
		step{
			id:          StepSyncTest,
			description: "run node sync test",
			run: func(ctx context.Context) (string, error) {
				return r.runScript(ctx, r.syncScript,
					"-t1", r.tag1,
					"-t2", r.tag2,
					"-e", r.network,
					"-e1", r.hydraEval1,
					"-e2", r.hydraEval2,
				)
			},
		},
		step{
			id:          StepDBWrite,
			description: "write sync values to database",
			run: func(ctx context.Context) (string, error) {
				return r.runScript(ctx, r.writeScript, "-e", r.network)
			},
		},
	)

	return steps
}

// RunAll runs every pipeline step in order, fail-fast: once a step fails
// the remaining steps are reported as skipped and never executed.
func (r *runner) RunAll(ctx context.Context) (*RunResult, error) {
	result := &RunResult{
		RunID:      uuid.New().String(),
		Network:    r.network,
		Tag1:       r.tag1,
		Tag2:       r.tag2,
		HydraEval1: r.hydraEval1,
		HydraEval2: r.hydraEval2,
	}
	result.Stats.StartTime = time.Now()

	r.log.Info("Starting sync test pipeline",
		"run_id", result.RunID,
		"network", r.network,
		"tag1", r.tag1,
		"tag2", r.tag2,
		"hydra_eval1", r.hydraEval1,
		"hydra_eval2", r.hydraEval2)

	failed := false
	for _, s := range r.steps() {
		var res *types.StepResult
		if failed {
			res = &types.StepResult{
				ID:          s.id,
				Description: s.description,
				Status:      types.StepStatusSkip,
			}
			r.log.Warn("Skipping step after earlier failure", "step", s.id)
		} else {
			res = r.runStep(ctx, s)
			if res.Status == types.StepStatusFail {
				failed = true
			}
		}
		result.Steps = append(result.Steps, res)
		result.Stats.Record(res)
		metrics.RecordStep(r.network, result.RunID, res.ID, res.Status, res.Duration)
	}

	result.Stats.EndTime = time.Now()
	result.Duration = result.Stats.EndTime.Sub(result.Stats.StartTime)
	result.Status = types.StepStatusPass
	if failed {
		result.Status = types.StepStatusFail
	}
	metrics.RecordRunResult(r.network, result.RunID, result.Status, result.Duration)

	r.log.Info("Sync test pipeline completed",
		"run_id", result.RunID,
		"status", result.Status,
		"duration", result.Duration)
	return result, nil
}

func (r *runner) runStep(ctx context.Context, s step) *types.StepResult {
	ctx, span := r.tracer.Start(ctx, "step."+s.id)
	defer span.End()

	r.log.Info("Running step", "step", s.id, "description", s.description)
	start := time.Now()
	output, err := s.run(ctx)

	res := &types.StepResult{
		ID:          s.id,
		Description: s.description,
		Status:      types.StepStatusPass,
		Duration:    time.Since(start),
		Output:      output,
	}
	if err != nil {
		res.Status = types.StepStatusFail
		res.Error = err
		res.ExitCode = exitCodeOf(err)

		var cmdErr *venv.CommandError
		if errors.As(err, &cmdErr) && res.Output == "" {
			res.Output = cmdErr.Output
		}

		metrics.RecordErrorDetails("step "+s.id, err)
		r.log.Error("Step failed", "step", s.id, "exit_code", res.ExitCode, "error", err)
		return res
	}

	r.log.Info("Step passed", "step", s.id, "duration", res.Duration)
	return res
}

// runScript runs an external program with the environment's interpreter,
// capturing combined output. The pipeline relies on the host CI for
// timeouts; the command only dies with the passed context.
func (r *runner) runScript(ctx context.Context, script string, args ...string) (string, error) {
	cmdArgs := append([]string{script}, args...)
	cmd := exec.CommandContext(ctx, r.env.Python(), cmdArgs...)
	cmd.Dir = r.workDir
	cmd.Env = r.env.Environ()

	var buf bytes.Buffer
	if r.outputRealtimeLogs {
		w := io.MultiWriter(&buf, os.Stdout)
		cmd.Stdout = w
		cmd.Stderr = w
	} else {
		cmd.Stdout = &buf
		cmd.Stderr = &buf
	}

	r.log.Debug("Running external program", "program", script, "args", args)
	err := cmd.Run()
	output := stripansi.Strip(buf.String())
	if err != nil {
		return output, fmt.Errorf("%s failed: %w", script, err)
	}
	return output, nil
}

func exitCodeOf(err error) int {
	var cmdErr *venv.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}
	return exitcodes.RuntimeErr
}

// Make sure the runner type implements the interface
var _ StepRunner = &runner{}
