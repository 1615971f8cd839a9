package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	syncrunner "github.com/cardano-community/node-sync-runner"
	"github.com/cardano-community/node-sync-runner/exitcodes"
	"github.com/cardano-community/node-sync-runner/flags"
	"github.com/cardano-community/node-sync-runner/service"
)

var (
	Version   = "v0.4.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "node-sync-runner"
	app.Usage = "Cardano Node Sync Test Runner"
	app.Description = "node-sync-runner provisions an isolated Python environment and drives the node sync test and its result writer"
	app.ArgsUsage = "<tag_no1> <tag_no2> <hydra_eval_no1> <hydra_eval_no2>"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			// Use the exit code from the ExitCoder
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			cli.HandleExitCoder(cli.Exit(err.Error(), exitCodeForError(err)))
		}
	}

	// Start telemetry when an OTLP endpoint is configured
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		shutdown, err := otelconfig.ConfigureOpenTelemetry(
			otelconfig.WithServiceName(app.Name),
			otelconfig.WithServiceVersion(app.Version),
		)
		if err != nil {
			log.Crit("Failed to setup open telemetry", "message", err)
		}
		defer shutdown()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}

// exitCodeForError maps the error taxonomy to the wrapper's exit status:
// a failed step propagates its command's exit status, wrapper-internal
// errors exit 2, anything else defaults to 1.
func exitCodeForError(err error) int {
	if code, ok := syncrunner.StepExitCode(err); ok {
		return code
	}
	if syncrunner.IsRuntimeError(err) {
		return exitcodes.RuntimeErr
	}
	return exitcodes.StepFailure
}

func run(cliCtx *cli.Context) error {
	logger := setupLogger(cliCtx)

	cfg, err := syncrunner.NewConfig(cliCtx, logger)
	if err != nil {
		// Wrap in RuntimeError to signal this should exit with code 2
		return syncrunner.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}
	logger.Debug("Config", "config", cfg)

	svc := service.New(service.Config{
		HealthzEnabled: cliCtx.Bool(flags.HealthzEnabled.Name),
		HealthzHost:    "0.0.0.0",
		HealthzPort:    cliCtx.String(flags.HealthzPort.Name),
		MetricsEnabled: cliCtx.Bool(flags.MetricsEnabled.Name),
		MetricsHost:    "0.0.0.0",
		MetricsPort:    cliCtx.String(flags.MetricsPort.Name),
	})
	svc.Start(cliCtx.Context)
	defer svc.Shutdown()

	sr, err := syncrunner.New(cliCtx.Context, cfg, Version)
	if err != nil {
		return syncrunner.NewRuntimeError(fmt.Errorf("failed to create sync runner: %w", err))
	}

	return sr.Run(cliCtx.Context)
}

func setupLogger(cliCtx *cli.Context) log.Logger {
	lvl := parseLogLevel(cliCtx.String(flags.LogLevel.Name))

	var handler slog.Handler
	if cliCtx.String(flags.LogFormat.Name) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	} else {
		handler = log.NewTerminalHandlerWithLevel(os.Stdout, lvl, false)
	}

	logger := log.NewLogger(handler)
	log.SetDefault(logger)
	return logger
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	case "crit":
		return log.LevelCrit
	default:
		return log.LevelInfo
	}
}
