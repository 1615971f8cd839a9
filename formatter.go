package syncrunner

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/cardano-community/node-sync-runner/runner"
	"github.com/cardano-community/node-sync-runner/types"
)

// printResultsTable prints the results of the pipeline run to the console.
func (s *SyncRunner) printResultsTable(result *runner.RunResult) {
	s.config.Log.Info("Printing results...")
	writeResultsTable(os.Stdout, result)
}

func writeResultsTable(w io.Writer, result *runner.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Node Sync Test Run %s (%s)", result.RunID, formatDuration(result.Duration)))

	t.AppendHeader(table.Row{
		"Step", "Description", "Duration", "Exit Code", "Status", "Error",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Step", WidthMax: 20},
		{Name: "Description", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Exit Code", Align: text.AlignRight},
		{Name: "Error", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, step := range result.Steps {
		duration := formatDuration(step.Duration)
		exitCode := fmt.Sprintf("%d", step.ExitCode)
		if step.Status == types.StepStatusSkip {
			duration = "-"
			exitCode = "-"
		}
		errorMsg := ""
		if step.Error != nil {
			errorMsg = step.Error.Error()
		}
		t.AppendRow(table.Row{
			step.ID,
			step.Description,
			duration,
			exitCode,
			getResultString(step.Status),
			errorMsg,
		})
	}

	t.AppendFooter(table.Row{
		"", fmt.Sprintf("%s vs %s on %s", result.Tag1, result.Tag2, result.Network),
		formatDuration(result.Duration), "", getResultString(result.Status), "",
	})

	t.Render()
}
