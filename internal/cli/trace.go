package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1njure/mpit25-NetJaggers/internal/harness"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Op string // only show journal entries of this op
}

// TraceResult is one scenario run as reported by the trace command.
type TraceResult struct {
	Scenario  string               `json:"scenario"`
	SessionID string               `json:"session_id"`
	Pass      bool                 `json:"pass"`
	Errors    []string             `json:"errors,omitempty"`
	Trace     []harness.TraceEvent `json:"trace"`
	Stats     TraceStats           `json:"stats"`
}

// TraceStats counts journal entries by outcome.
type TraceStats struct {
	TotalEvents int            `json:"total_events"`
	Outcomes    map[string]int `json:"outcomes"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <scenario.yaml>",
		Short: "Run a scenario and show its journal",
		Long: `Run one scenario and print the session journal: every fetch, edit,
reset, copy and publish in order, with its outcome.

Examples:
  postsync trace ./testdata/scenarios/generation_guard.yaml
  postsync trace ./testdata/scenarios/end_to_end.yaml --op edit_serialized
  postsync trace ./testdata/scenarios/end_to_end.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Op, "op", "", "filter journal entries by op")

	return cmd
}

func runTrace(opts *TraceOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeReadFile, "failed to load scenario", err)
	}

	f.VerboseLog("Running scenario %s (%d steps)", scenario.Name, len(scenario.Steps))
	run, err := harness.Run(scenario)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeGeneric, "scenario execution failed", err)
	}

	result := TraceResult{
		Scenario:  scenario.Name,
		SessionID: run.SessionID,
		Pass:      run.Pass,
		Errors:    run.Errors,
		Trace:     filterTrace(run.Trace, opts.Op),
	}
	result.Stats = traceStats(result.Trace)

	if f.Format == "json" {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		outputTraceText(f.Writer, result, opts.Verbose)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}

func filterTrace(trace []harness.TraceEvent, op string) []harness.TraceEvent {
	if op == "" {
		return trace
	}
	out := []harness.TraceEvent{}
	for _, ev := range trace {
		if ev.Op == op {
			out = append(out, ev)
		}
	}
	return out
}

func traceStats(trace []harness.TraceEvent) TraceStats {
	stats := TraceStats{TotalEvents: len(trace), Outcomes: make(map[string]int)}
	for _, ev := range trace {
		stats.Outcomes[ev.Outcome]++
	}
	return stats
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult, verbose bool) {
	status := "PASS"
	if !result.Pass {
		status = "FAIL"
	}
	fmt.Fprintf(w, "Trace for scenario: %s\n", result.Scenario)
	fmt.Fprintf(w, "Session: %s\n", result.SessionID)
	fmt.Fprintf(w, "Status: %s\n", status)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Journal ===")
	if len(result.Trace) == 0 {
		fmt.Fprintln(w, "  (no events)")
	}
	for _, ev := range result.Trace {
		formatTraceEvent(w, ev, verbose)
	}
	fmt.Fprintln(w)

	if len(result.Errors) > 0 {
		fmt.Fprintln(w, "=== Failures ===")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Events: %d\n", result.Stats.TotalEvents)
	outcomes := make([]string, 0, len(result.Stats.Outcomes))
	for o := range result.Stats.Outcomes {
		outcomes = append(outcomes, o)
	}
	sort.Strings(outcomes)
	for _, o := range outcomes {
		fmt.Fprintf(w, "  %-12s %d\n", o+":", result.Stats.Outcomes[o])
	}
}

// formatTraceEvent formats a single journal entry for text output.
func formatTraceEvent(w io.Writer, ev harness.TraceEvent, verbose bool) {
	record := "-"
	if ev.Record != nil {
		record = strconv.Itoa(*ev.Record)
	}

	line := fmt.Sprintf("  [%d] %-15s record=%s %s", ev.Seq, ev.Op, record, ev.Outcome)
	if ev.Generation > 0 {
		line += fmt.Sprintf(" gen=%d", ev.Generation)
	}
	fmt.Fprintln(w, line)

	if verbose && len(ev.Detail) > 0 {
		fmt.Fprintf(w, "       %s\n", formatDetail(ev.Detail))
	}
}

// formatDetail formats entry details with sorted keys for deterministic
// output.
func formatDetail(detail map[string]string) string {
	keys := make([]string, 0, len(detail))
	for k := range detail {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, detail[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
