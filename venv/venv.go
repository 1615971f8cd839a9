// Package venv provisions the ephemeral Python virtual environment the
// external sync test programs run in. The environment lives at a fixed
// path and is recreated destructively before each run.
package venv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"

	"github.com/cardano-community/node-sync-runner/exitcodes"
)

// Config holds configuration for creating a new environment
type Config struct {
	Dir    string // Directory the virtual environment is created at
	Python string // Base interpreter used to create the environment
	Log    log.Logger
}

// Environment is an isolated Python interpreter environment with scoped
// acquire/release semantics: Reset/Create acquire it, Close releases it.
type Environment struct {
	dir    string
	python string
	log    log.Logger
}

// New creates a new environment handle. Nothing is touched on disk until
// Reset is called.
func New(cfg Config) (*Environment, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("environment directory is required")
	}
	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for environment directory '%s': %w", cfg.Dir, err)
	}
	if cfg.Python == "" {
		cfg.Python = "python3"
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}

	return &Environment{
		dir:    dir,
		python: cfg.Python,
		log:    cfg.Log,
	}, nil
}

// Dir returns the environment directory.
func (e *Environment) Dir() string {
	return e.dir
}

// Python returns the path to the environment's interpreter. Only valid
// after Create has succeeded.
func (e *Environment) Python() string {
	return filepath.Join(e.dir, "bin", "python")
}

// Environ returns the process environment with the virtual environment
// activated: VIRTUAL_ENV set and the environment's bin directory first
// on PATH. Later entries win in os/exec, so the overrides are appended.
func (e *Environment) Environ() []string {
	bin := filepath.Join(e.dir, "bin")
	return append(os.Environ(),
		"VIRTUAL_ENV="+e.dir,
		"PATH="+bin+string(os.PathListSeparator)+os.Getenv("PATH"),
	)
}

// Reset destructively recreates the environment directory. Any prior
// contents at the path are removed. Running Reset twice yields the same
// end state.
func (e *Environment) Reset(ctx context.Context) error {
	e.log.Info("Resetting environment directory", "dir", e.dir)
	if err := os.RemoveAll(e.dir); err != nil {
		return fmt.Errorf("failed to remove environment directory '%s': %w", e.dir, err)
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create environment directory '%s': %w", e.dir, err)
	}
	return nil
}

// Create builds the virtual environment with the base interpreter.
func (e *Environment) Create(ctx context.Context) error {
	return e.run(ctx, e.python, "-m", "venv", e.dir)
}

// Install installs the given packages into the environment. pip itself is
// upgraded first, matching how the CI environment has always been built.
func (e *Environment) Install(ctx context.Context, packages []string) error {
	if len(packages) == 0 {
		return fmt.Errorf("no packages to install")
	}
	if err := e.run(ctx, e.Python(), "-m", "pip", "install", "--upgrade", "pip"); err != nil {
		return err
	}
	args := append([]string{"-m", "pip", "install"}, packages...)
	return e.run(ctx, e.Python(), args...)
}

// Verify sanity-checks the environment by importing the given modules.
func (e *Environment) Verify(ctx context.Context, modules []string) error {
	if len(modules) == 0 {
		return nil
	}
	stmts := make([]string, 0, len(modules))
	for _, m := range modules {
		stmts = append(stmts, "import "+m)
	}
	return e.run(ctx, e.Python(), "-c", strings.Join(stmts, "; "))
}

// Close releases the environment by removing its directory. Safe to call
// on an environment that was never created.
func (e *Environment) Close() error {
	return os.RemoveAll(e.dir)
}

func (e *Environment) run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = e.Environ()
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	e.log.Debug("Running command", "cmd", name, "args", args)
	if err := cmd.Run(); err != nil {
		return newCommandError(name, args, buf.String(), err)
	}
	return nil
}

// CommandError captures a failed command invocation, including the exit
// status the wrapper propagates and the command's combined output.
type CommandError struct {
	Command  string
	Args     []string
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s exited with code %d: %v", e.Command, e.ExitCode, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *CommandError) Unwrap() error {
	return e.Err
}

func newCommandError(name string, args []string, output string, err error) *CommandError {
	code := exitcodes.RuntimeErr
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		code = exitErr.ExitCode()
	}
	return &CommandError{
		Command:  name,
		Args:     args,
		ExitCode: code,
		Output:   stripansi.Strip(output),
		Err:      err,
	}
}
