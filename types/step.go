package types

import (
	"time"
)

// StepStatus represents the possible states of a pipeline step execution
type StepStatus string

const (
	StepStatusPass StepStatus = "pass"
	StepStatusFail StepStatus = "fail"
	StepStatusSkip StepStatus = "skip"
)

// StepResult captures the outcome of a single pipeline step
type StepResult struct {
	ID          string
	Description string
	Status      StepStatus
	ExitCode    int           // Exit status of the underlying command, 0 on success
	Duration    time.Duration // Track step execution time
	Output      string        // Captured combined stdout/stderr, ANSI-stripped
	Error       error
}

// RunStats tracks step statistics for a run
type RunStats struct {
	Total     int
	Passed    int
	Failed    int
	Skipped   int
	StartTime time.Time
	EndTime   time.Time
}

// Record updates the stats with a completed step result
func (s *RunStats) Record(r *StepResult) {
	s.Total++
	switch r.Status {
	case StepStatusPass:
		s.Passed++
	case StepStatusFail:
		s.Failed++
	case StepStatusSkip:
		s.Skipped++
	}
}
