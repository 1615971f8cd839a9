// Package exitcodes defines the standard exit codes used by node-sync-runner.
package exitcodes

// Exit code constants used by node-sync-runner
// These constants define the exit codes that the application uses to indicate
// various states when it exits:
//
// * Success (0): Used when every pipeline step succeeds
// * StepFailure (1): Default when a pipeline step fails without a usable exit status
// * RuntimeErr (2): Used for runtime errors such as bad configuration or filesystem failures
//
// When a step's underlying command exits non-zero, that exit status is
// propagated as-is instead of StepFailure.
const (
	Success     = 0
	StepFailure = 1
	RuntimeErr  = 2
)
