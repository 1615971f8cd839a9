package flags

import (
	"strings"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "SYNC_RUNNER"

// prefixEnvVars mirrors a flag into a SYNC_RUNNER_* environment variable.
func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

// FlagNameToEnvVarName derives the environment variable mirror for a flag
// name ("log.level" -> "SYNC_RUNNER_LOG_LEVEL").
func FlagNameToEnvVarName(name string) string {
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, ".", "_")
	return EnvVarPrefix + "_" + strings.ToUpper(name)
}

var (
	VenvDir = &cli.StringFlag{
		Name:    "venv-dir",
		Value:   "venv",
		EnvVars: prefixEnvVars("VENV_DIR"),
		Usage:   "Path to the ephemeral Python virtual environment (destructively recreated each run)",
	}
	PythonBinary = &cli.StringFlag{
		Name:    "python-binary",
		Value:   "python3",
		EnvVars: prefixEnvVars("PYTHON_BINARY"),
		Usage:   "Base Python interpreter used to create the virtual environment",
	}
	ScriptsDir = &cli.StringFlag{
		Name:    "scripts-dir",
		Value:   "sync_tests",
		EnvVars: prefixEnvVars("SCRIPTS_DIR"),
		Usage:   "Directory containing the external sync test programs",
	}
	SyncScript = &cli.StringFlag{
		Name:    "sync-script",
		Value:   "node_sync_test.py",
		EnvVars: prefixEnvVars("SYNC_SCRIPT"),
		Usage:   "Name of the sync test program within the scripts directory",
	}
	WriteScript = &cli.StringFlag{
		Name:    "write-script",
		Value:   "node_write_sync_values_to_db.py",
		EnvVars: prefixEnvVars("WRITE_SCRIPT"),
		Usage:   "Name of the result writer program within the scripts directory",
	}
	Requirements = &cli.StringFlag{
		Name:    "requirements",
		Value:   "",
		EnvVars: prefixEnvVars("REQUIREMENTS"),
		Usage:   "Optional YAML manifest overriding the default Python package set (eg. 'requirements.yaml')",
	}
	SkipImportCheck = &cli.BoolFlag{
		Name:    "skip-import-check",
		Value:   false,
		EnvVars: prefixEnvVars("SKIP_IMPORT_CHECK"),
		Usage:   "Skip the import sanity check after dependency installation",
	}
	PreserveEnv = &cli.BoolFlag{
		Name:    "preserve-env",
		Value:   false,
		EnvVars: prefixEnvVars("PRESERVE_ENV"),
		Usage:   "Keep the virtual environment directory after the run instead of releasing it",
	}
	OutputRealtimeLogs = &cli.BoolFlag{
		Name:    "output-realtime-logs",
		Value:   false,
		EnvVars: prefixEnvVars("OUTPUT_REALTIME_LOGS"),
		Usage:   "Mirror the external programs' output to stdout in realtime",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVars("RUN_INTERVAL"),
		Usage:   "Interval between sync test runs (e.g. '24h'). Set to 0 or omit for run-once mode.",
	}
	DBUri = &cli.StringFlag{
		Name:    "db-uri",
		Value:   "",
		EnvVars: prefixEnvVars("DB_URI"),
		Usage:   "Postgres URI for recording wrapper run history (disabled when empty)",
	}
	MetricsEnabled = &cli.BoolFlag{
		Name:    "metrics.enabled",
		Value:   false,
		EnvVars: prefixEnvVars("METRICS_ENABLED"),
		Usage:   "Serve Prometheus metrics while the run is in flight",
	}
	MetricsPort = &cli.StringFlag{
		Name:    "metrics.port",
		Value:   "7300",
		EnvVars: prefixEnvVars("METRICS_PORT"),
		Usage:   "Port for the Prometheus metrics server",
	}
	HealthzEnabled = &cli.BoolFlag{
		Name:    "healthz.enabled",
		Value:   false,
		EnvVars: prefixEnvVars("HEALTHZ_ENABLED"),
		Usage:   "Serve the healthz endpoint while the run is in flight",
	}
	HealthzPort = &cli.StringFlag{
		Name:    "healthz.port",
		Value:   "8080",
		EnvVars: prefixEnvVars("HEALTHZ_PORT"),
		Usage:   "Port for the healthz server",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log.level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "The lowest log level that will be output (trace|debug|info|warn|error|crit)",
	}
	LogFormat = &cli.StringFlag{
		Name:    "log.format",
		Value:   "logfmt",
		EnvVars: prefixEnvVars("LOG_FORMAT"),
		Usage:   "Format the log output (logfmt|json)",
	}
)

var requiredFlags = []cli.Flag{}

var optionalFlags = []cli.Flag{
	VenvDir,
	PythonBinary,
	ScriptsDir,
	SyncScript,
	WriteScript,
	Requirements,
	SkipImportCheck,
	PreserveEnv,
	OutputRealtimeLogs,
	RunInterval,
	DBUri,
	MetricsEnabled,
	MetricsPort,
	HealthzEnabled,
	HealthzPort,
	LogLevel,
	LogFormat,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}
