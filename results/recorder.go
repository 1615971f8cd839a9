package results

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/cardano-community/node-sync-runner/runner"
)

// Record persists a completed pipeline run and its step results in a
// single transaction. Step rows are inserted concurrently; the
// transactor serializes access to the underlying transaction.
func Record(ctx context.Context, conn Connection, result *runner.RunResult) error {
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	run := Run{
		ID:         result.RunID,
		Network:    result.Network,
		Tag1:       result.Tag1,
		Tag2:       result.Tag2,
		HydraEval1: result.HydraEval1,
		HydraEval2: result.HydraEval2,
		Status:     string(result.Status),
		StartedAt:  result.Stats.StartTime,
		FinishedAt: result.Stats.EndTime,
	}
	if err := tx.InsertRun(ctx, run); err != nil {
		tx.Rollback(ctx)
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stepPool := pool.New().
		WithErrors().
		WithFirstError().
		WithContext(ctx)
	for _, stepResult := range result.Steps {
		stepResult := stepResult
		stepPool.Go(func(ctx context.Context) error {
			step := Step{
				RunID:    run.ID,
				Name:     stepResult.ID,
				Status:   string(stepResult.Status),
				ExitCode: stepResult.ExitCode,
				Runtime:  stepResult.Duration.Seconds(),
			}
			if stepResult.Error != nil {
				step.Message = stepResult.Error.Error()
			}
			return tx.InsertStep(ctx, step)
		})
	}
	if err := stepPool.Wait(); err != nil {
		tx.Rollback(ctx)
		return fmt.Errorf("failed to insert steps: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit run record: %w", err)
	}
	return nil
}
