// Package syncrunner wires the sync test pipeline together: it provisions
// the Python environment, drives the external sync test and result writer
// programs, reports the outcome and optionally records run history.
package syncrunner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cardano-community/node-sync-runner/metrics"
	"github.com/cardano-community/node-sync-runner/results"
	"github.com/cardano-community/node-sync-runner/runner"
	"github.com/cardano-community/node-sync-runner/venv"
)

// SyncRunner is the wrapper around the external node sync test programs.
type SyncRunner struct {
	config  *Config
	version string
	env     *venv.Environment
	runner  runner.StepRunner
	store   results.Connection // nil when run bookkeeping is disabled
	result  *runner.RunResult
}

func New(ctx context.Context, config *Config, version string) (*SyncRunner, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating sync runner with config",
		"tag1", config.Tag1,
		"tag2", config.Tag2,
		"hydraEval1", config.HydraEval1,
		"hydraEval2", config.HydraEval2,
		"network", config.Network,
		"venvDir", config.VenvDir,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce)

	manifest := venv.DefaultManifest()
	if config.RequirementsFile != "" {
		var err error
		manifest, err = venv.LoadManifest(config.RequirementsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load requirements manifest: %w", err)
		}
	}

	env, err := venv.New(venv.Config{
		Dir:    config.VenvDir,
		Python: config.PythonBinary,
		Log:    config.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create environment: %w", err)
	}

	stepRunner, err := runner.NewStepRunner(runner.Config{
		Env:                env,
		Log:                config.Log,
		WorkDir:            config.ScriptsDir,
		SyncScript:         config.SyncScript,
		WriteScript:        config.WriteScript,
		Network:            config.Network,
		Tag1:               config.Tag1,
		Tag2:               config.Tag2,
		HydraEval1:         config.HydraEval1,
		HydraEval2:         config.HydraEval2,
		Manifest:           manifest,
		SkipImportCheck:    config.SkipImportCheck,
		OutputRealtimeLogs: config.OutputRealtimeLogs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create step runner: %w", err)
	}

	var store results.Connection
	if config.DBUri != "" {
		store, err = results.New(ctx, config.DBUri)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to run history db: %w", err)
		}
	}

	return &SyncRunner{
		config:  config,
		version: version,
		env:     env,
		runner:  stepRunner,
		store:   store,
	}, nil
}

// Run executes the pipeline. In run-once mode the first run's error
// (carrying the failing step's exit status) is returned directly. In
// continuous mode the wrapper keeps re-running at the configured interval
// until the context is canceled; only the first run can abort startup.
func (s *SyncRunner) Run(ctx context.Context) error {
	defer s.close()

	if s.config.RunOnce {
		s.config.Log.Info("Starting node-sync-runner in run-once mode")
		return s.runOnce(ctx)
	}

	s.config.Log.Info("Starting node-sync-runner in continuous mode", "interval", s.config.RunInterval)
	if err := s.runOnce(ctx); err != nil {
		if IsRuntimeError(err) {
			return err
		}
		s.config.Log.Error("Sync test run completed with failures", "error", err)
	}

	for {
		select {
		case <-time.After(s.config.RunInterval):
			s.config.Log.Info("Running periodic sync test")
			if err := s.runOnce(ctx); err != nil {
				s.config.Log.Error("Error running periodic sync test", "error", err)
			}
		case <-ctx.Done():
			s.config.Log.Debug("Context canceled, stopping periodic runs")
			return nil
		}
	}
}

// runOnce runs the whole pipeline and processes the results
func (s *SyncRunner) runOnce(ctx context.Context) error {
	result, err := s.runner.RunAll(ctx)
	if err != nil {
		s.config.Log.Error("Runtime error running pipeline", "error", err)
		metrics.RecordErrorDetails("pipeline runtime error", err)
		return NewRuntimeError(err)
	}
	s.result = result

	s.printResultsTable(result)
	fmt.Println(result.String())

	if s.store != nil {
		if err := results.Record(ctx, s.store, result); err != nil {
			// Bookkeeping is best-effort; the run's own status wins.
			s.config.Log.Error("Failed to record run history", "error", err)
			metrics.RecordErrorDetails("failed to record run history", err)
		}
	}

	if failure := result.FirstFailure(); failure != nil {
		s.config.Log.Warn("Sync test run failed",
			"run_id", result.RunID,
			"step", failure.ID,
			"exit_code", failure.ExitCode)
		return NewStepError(failure.ID, failure.ExitCode, failure.Error)
	}

	s.config.Log.Info("Sync test run completed", "run_id", result.RunID, "status", result.Status)
	return nil
}

// close releases the environment and the run history connection on every
// exit path, so a failed run does not leave a half-built environment
// behind.
func (s *SyncRunner) close() {
	if !s.config.PreserveEnv {
		if err := s.env.Close(); err != nil {
			s.config.Log.Error("Failed to release environment", "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.config.Log.Error("Failed to close run history db", "error", err)
		}
	}
}

// Result returns the most recent run result.
func (s *SyncRunner) Result() *runner.RunResult {
	return s.result
}
