package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	syncrunner "github.com/cardano-community/node-sync-runner"
	"github.com/cardano-community/node-sync-runner/runner"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "step error propagates exit code",
			err:      syncrunner.NewStepError(runner.StepSyncTest, 3, errors.New("sync diverged")),
			expected: 3,
		},
		{
			name:     "wrapped step error propagates exit code",
			err:      fmt.Errorf("run failed: %w", syncrunner.NewStepError(runner.StepInstall, 9, errors.New("pip failed"))),
			expected: 9,
		},
		{
			name:     "runtime error exits 2",
			err:      syncrunner.NewRuntimeError(errors.New("bad config")),
			expected: 2,
		},
		{
			name:     "unknown error defaults to 1",
			err:      errors.New("boom"),
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, exitCodeForError(tt.err))
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, parseLogLevel("debug").String(), "DEBUG")
	assert.Equal(t, parseLogLevel("info").String(), "INFO")
	assert.Equal(t, parseLogLevel("nonsense").String(), "INFO")
}
