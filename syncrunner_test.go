package syncrunner

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cardano-community/node-sync-runner/runner"
	"github.com/cardano-community/node-sync-runner/types"
	"github.com/cardano-community/node-sync-runner/venv"
)

type mockStepRunner struct {
	mock.Mock
}

func (m *mockStepRunner) RunAll(ctx context.Context) (*runner.RunResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*runner.RunResult), args.Error(1)
}

func passingResult() *runner.RunResult {
	result := &runner.RunResult{
		RunID:   "run-1",
		Network: "mainnet",
		Status:  types.StepStatusPass,
		Steps: []*types.StepResult{
			{ID: runner.StepReset, Status: types.StepStatusPass},
			{ID: runner.StepSyncTest, Status: types.StepStatusPass},
			{ID: runner.StepDBWrite, Status: types.StepStatusPass},
		},
	}
	result.Stats.StartTime = time.Now()
	result.Stats.EndTime = time.Now()
	return result
}

func failingResult() *runner.RunResult {
	result := passingResult()
	result.Status = types.StepStatusFail
	result.Steps[1].Status = types.StepStatusFail
	result.Steps[1].ExitCode = 3
	result.Steps[1].Error = errors.New("sync diverged")
	result.Steps[2].Status = types.StepStatusSkip
	return result
}

func newTestSyncRunner(t *testing.T, r runner.StepRunner) *SyncRunner {
	t.Helper()
	env, err := venv.New(venv.Config{
		Dir: filepath.Join(t.TempDir(), "venv"),
		Log: log.New(),
	})
	require.NoError(t, err)

	return &SyncRunner{
		config: &Config{
			Network: DefaultNetwork,
			RunOnce: true,
			Log:     log.New(),
		},
		version: "test",
		env:     env,
		runner:  r,
	}
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(context.Background(), nil, "test")
	require.Error(t, err)
}

func TestRunOncePassing(t *testing.T) {
	m := new(mockStepRunner)
	m.On("RunAll", mock.Anything).Return(passingResult(), nil).Once()

	sr := newTestSyncRunner(t, m)
	require.NoError(t, sr.Run(context.Background()))

	require.NotNil(t, sr.Result())
	assert.Equal(t, types.StepStatusPass, sr.Result().Status)
	m.AssertExpectations(t)
}

func TestRunOnceFailingStepPropagatesExitCode(t *testing.T) {
	m := new(mockStepRunner)
	m.On("RunAll", mock.Anything).Return(failingResult(), nil).Once()

	sr := newTestSyncRunner(t, m)
	err := sr.Run(context.Background())
	require.Error(t, err)

	assert.True(t, IsStepError(err))
	code, ok := StepExitCode(err)
	require.True(t, ok)
	assert.Equal(t, 3, code)
	m.AssertExpectations(t)
}

func TestRunOnceRuntimeError(t *testing.T) {
	m := new(mockStepRunner)
	m.On("RunAll", mock.Anything).Return(nil, errors.New("workdir vanished")).Once()

	sr := newTestSyncRunner(t, m)
	err := sr.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
	m.AssertExpectations(t)
}

func TestContinuousModeRunsUntilCanceled(t *testing.T) {
	var runs atomic.Int32
	m := new(mockStepRunner)
	m.On("RunAll", mock.Anything).Run(func(mock.Arguments) {
		runs.Add(1)
	}).Return(passingResult(), nil)

	sr := newTestSyncRunner(t, m)
	sr.config.RunOnce = false
	sr.config.RunInterval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- sr.Run(ctx)
	}()

	// Give the loop time for the initial run plus at least one periodic run.
	require.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("continuous mode did not stop on context cancellation")
	}
}
