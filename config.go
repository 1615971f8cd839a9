package syncrunner

import (
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/cardano-community/node-sync-runner/flags"
)

// DefaultNetwork is the network both external programs are run against.
// The result writer is always invoked with it, whatever the tags are.
const DefaultNetwork = "mainnet"

// Config holds the application configuration
type Config struct {
	Tag1       string // First node build tag under test
	Tag2       string // Second node build tag under test
	HydraEval1 string // Hydra evaluation id for the first tag, passed through opaquely
	HydraEval2 string // Hydra evaluation id for the second tag, passed through opaquely
	Network    string

	VenvDir            string // Fixed path the virtual environment is recreated at
	PythonBinary       string
	ScriptsDir         string
	SyncScript         string // Resolved path of the sync test program
	WriteScript        string // Resolved path of the result writer program
	RequirementsFile   string // Optional manifest overriding the default package set
	SkipImportCheck    bool
	PreserveEnv        bool          // Keep the environment directory after the run
	OutputRealtimeLogs bool          // If enabled, external program output is mirrored to stdout
	RunInterval        time.Duration // Interval between runs
	RunOnce            bool          // Indicates if the wrapper should exit after one run
	DBUri              string        // Postgres URI for run bookkeeping, empty disables it

	Log log.Logger
}

// NewConfig creates a new Config from cli context. The four positional
// arguments are required; the original lenient scripts forwarded missing
// arguments as empty strings, which only masked broken CI invocations.
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	args := ctx.Args()
	if args.Len() != 4 {
		return nil, errors.Errorf("expected 4 positional arguments <tag_no1> <tag_no2> <hydra_eval_no1> <hydra_eval_no2>, got %d", args.Len())
	}
	names := []string{"tag_no1", "tag_no2", "hydra_eval_no1", "hydra_eval_no2"}
	for i, name := range names {
		if args.Get(i) == "" {
			return nil, errors.Errorf("argument %s must not be empty", name)
		}
	}

	venvDir, err := filepath.Abs(ctx.String(flags.VenvDir.Name))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve absolute path for environment directory '%s'", ctx.String(flags.VenvDir.Name))
	}
	scriptsDir, err := filepath.Abs(ctx.String(flags.ScriptsDir.Name))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve absolute path for scripts directory '%s'", ctx.String(flags.ScriptsDir.Name))
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	runOnce := runInterval == 0

	return &Config{
		Tag1:       args.Get(0),
		Tag2:       args.Get(1),
		HydraEval1: args.Get(2),
		HydraEval2: args.Get(3),
		Network:    DefaultNetwork,

		VenvDir:            venvDir,
		PythonBinary:       ctx.String(flags.PythonBinary.Name),
		ScriptsDir:         scriptsDir,
		SyncScript:         filepath.Join(scriptsDir, ctx.String(flags.SyncScript.Name)),
		WriteScript:        filepath.Join(scriptsDir, ctx.String(flags.WriteScript.Name)),
		RequirementsFile:   ctx.String(flags.Requirements.Name),
		SkipImportCheck:    ctx.Bool(flags.SkipImportCheck.Name),
		PreserveEnv:        ctx.Bool(flags.PreserveEnv.Name),
		OutputRealtimeLogs: ctx.Bool(flags.OutputRealtimeLogs.Name),
		RunInterval:        runInterval,
		RunOnce:            runOnce,
		DBUri:              ctx.String(flags.DBUri.Name),

		Log: log,
	}, nil
}
