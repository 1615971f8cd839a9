package syncrunner

import (
	"time"

	"github.com/cardano-community/node-sync-runner/types"
)

// getResultString returns a string representing the step result
func getResultString(status types.StepStatus) string {
	switch status {
	case types.StepStatusPass:
		return "✓ pass"
	case types.StepStatusSkip:
		return "- skip"
	default:
		return "✗ fail"
	}
}

// formatDuration rounds a duration for display
func formatDuration(d time.Duration) string {
	if d >= time.Second {
		return d.Round(10 * time.Millisecond).String()
	}
	return d.Round(time.Millisecond).String()
}
