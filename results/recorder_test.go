package results

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardano-community/node-sync-runner/runner"
	"github.com/cardano-community/node-sync-runner/types"
)

type fakeTransactor struct {
	mtx        sync.Mutex
	runs       []Run
	steps      []Step
	insertErr  error
	committed  bool
	rolledBack bool
}

func (f *fakeTransactor) InsertRun(ctx context.Context, r Run) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.runs = append(f.runs, r)
	return nil
}

func (f *fakeTransactor) InsertStep(ctx context.Context, s Step) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.steps = append(f.steps, s)
	return nil
}

func (f *fakeTransactor) Commit(ctx context.Context) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.committed = true
	return nil
}

func (f *fakeTransactor) Rollback(ctx context.Context) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.rolledBack = true
}

type fakeConnection struct {
	tx       *fakeTransactor
	beginErr error
}

func (f *fakeConnection) LastRun(ctx context.Context) (*Run, error) { return nil, nil }
func (f *fakeConnection) Close() error                              { return nil }

func (f *fakeConnection) Begin() (Transactor, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f.tx, nil
}

func testResult() *runner.RunResult {
	result := &runner.RunResult{
		RunID:      "run-1",
		Network:    "mainnet",
		Tag1:       "1.35.0",
		Tag2:       "1.35.1",
		HydraEval1: "12345",
		HydraEval2: "12346",
		Status:     types.StepStatusFail,
		Steps: []*types.StepResult{
			{ID: runner.StepReset, Status: types.StepStatusPass, Duration: time.Second},
			{ID: runner.StepSyncTest, Status: types.StepStatusFail, ExitCode: 3, Error: errors.New("sync test failed")},
			{ID: runner.StepDBWrite, Status: types.StepStatusSkip},
		},
	}
	result.Stats.StartTime = time.Now().Add(-time.Minute)
	result.Stats.EndTime = time.Now()
	return result
}

func TestRecord(t *testing.T) {
	tx := &fakeTransactor{}
	conn := &fakeConnection{tx: tx}

	require.NoError(t, Record(context.Background(), conn, testResult()))

	require.Len(t, tx.runs, 1)
	run := tx.runs[0]
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, "mainnet", run.Network)
	assert.Equal(t, "1.35.0", run.Tag1)
	assert.Equal(t, "1.35.1", run.Tag2)
	assert.Equal(t, "12345", run.HydraEval1)
	assert.Equal(t, "12346", run.HydraEval2)
	assert.Equal(t, "fail", run.Status)

	require.Len(t, tx.steps, 3)
	byName := make(map[string]Step)
	for _, s := range tx.steps {
		byName[s.Name] = s
	}
	assert.Equal(t, 3, byName[runner.StepSyncTest].ExitCode)
	assert.Equal(t, "sync test failed", byName[runner.StepSyncTest].Message)
	assert.Equal(t, "skip", byName[runner.StepDBWrite].Status)

	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)
}

func TestRecordStepInsertFailureRollsBack(t *testing.T) {
	tx := &fakeTransactor{insertErr: errors.New("disk full")}
	conn := &fakeConnection{tx: tx}

	err := Record(context.Background(), conn, testResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert steps")

	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestRecordBeginFailure(t *testing.T) {
	conn := &fakeConnection{beginErr: errors.New("connection refused")}

	err := Record(context.Background(), conn, testResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")
}
