package runner

import (
	"fmt"
	"time"

	"github.com/cardano-community/node-sync-runner/types"
)

// RunResult captures the complete pipeline run results
type RunResult struct {
	RunID      string
	Network    string
	Tag1       string
	Tag2       string
	HydraEval1 string
	HydraEval2 string
	Steps      []*types.StepResult
	Status     types.StepStatus
	Duration   time.Duration
	Stats      types.RunStats
}

// FirstFailure returns the first failed step, or nil when every executed
// step passed.
func (r *RunResult) FirstFailure() *types.StepResult {
	for _, s := range r.Steps {
		if s.Status == types.StepStatusFail {
			return s
		}
	}
	return nil
}

// Step returns the result for the given step id, or nil.
func (r *RunResult) Step(id string) *types.StepResult {
	for _, s := range r.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (r *RunResult) String() string {
	return fmt.Sprintf("RunID: %s\nNetwork: %s\nStatus: %s\nDuration: %s\nSteps: %d passed, %d failed, %d skipped",
		r.RunID, r.Network, r.Status, r.Duration.Round(time.Millisecond),
		r.Stats.Passed, r.Stats.Failed, r.Stats.Skipped)
}
