package metrics

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/cardano-community/node-sync-runner/types"
)

func TestErrToLabel(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{
			name: "nil error",
			err:  nil,
		},
		{
			name: "simple error",
			err:  errors.New("test error"),
		},
		{
			name: "error with special chars",
			err:  errors.New("pip@error#123"),
		},
		{
			name: "error with multiple spaces",
			err:  errors.New("pip   error"),
		},
		{
			name: "error with multiple underscores",
			err:  errors.New("pip__error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := errToLabel(tt.err)
			validLabelRegex := regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_]*`)
			if !validLabelRegex.MatchString(result) {
				t.Errorf("errToLabel() = %v, is not a valid Prometheus label", result)
			}
		})
	}
}

func TestRecordError(t *testing.T) {
	// just test that it doesn't panic
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("RecordError panic'd")
		}
	}()

	RecordError("test_error")
}

func TestRecordErrorDetails(t *testing.T) {
	// Test with nil error
	RecordErrorDetails("test", nil)

	// Test with actual error
	RecordErrorDetails("test", errors.New("sample error"))
}

func TestRecordStep(t *testing.T) {
	RecordStep("mainnet", "run1", "install", types.StepStatusPass, time.Second)
	RecordStep("mainnet", "run1", "sync-test", types.StepStatusFail, time.Minute)
	RecordStep("mainnet", "run1", "db-write", types.StepStatusSkip, 0)
}

func TestRecordRunResult(t *testing.T) {
	RecordRunResult("mainnet", "run1", types.StepStatusPass, time.Minute)
	RecordRunResult("mainnet", "run2", types.StepStatusFail, time.Minute)
}
