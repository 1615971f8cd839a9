package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunStatsRecord(t *testing.T) {
	var stats RunStats

	stats.Record(&StepResult{ID: "reset", Status: StepStatusPass})
	stats.Record(&StepResult{ID: "venv", Status: StepStatusPass})
	stats.Record(&StepResult{ID: "install", Status: StepStatusFail})
	stats.Record(&StepResult{ID: "sync-test", Status: StepStatusSkip})
	stats.Record(&StepResult{ID: "db-write", Status: StepStatusSkip})

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.Passed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 2, stats.Skipped)
}
