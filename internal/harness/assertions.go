package harness

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/1njure/mpit25-NetJaggers/internal/engine"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			record := "-"
			if ev.Record != nil {
				record = strconv.Itoa(*ev.Record)
			}
			fmt.Fprintf(&buf, "  [%d] %s record=%s %s\n", ev.Seq, ev.Op, record, ev.Outcome)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against a finished result and
// returns one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertJournalContains:
			err = assertJournalContains(result.Trace, a)
		case AssertJournalOrder:
			err = assertJournalOrder(result.Trace, a)
		case AssertJournalCount:
			err = assertJournalCount(result.Trace, a)
		case AssertFinalState:
			err = assertFinalState(result.Final, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

// matches reports whether ev has op and, if set, outcome.
func matches(ev TraceEvent, op, outcome string) bool {
	return ev.Op == op && (outcome == "" || ev.Outcome == outcome)
}

func describe(op, outcome string) string {
	if outcome == "" {
		return op
	}
	return op + " with outcome " + outcome
}

// assertJournalContains checks that some entry has the op (and outcome).
func assertJournalContains(trace []TraceEvent, a Assertion) error {
	for _, ev := range trace {
		if matches(ev, a.Op, a.Outcome) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertJournalContains,
		Expected: describe(a.Op, a.Outcome),
		Actual:   "not found in journal",
		Trace:    trace,
	}
}

// assertJournalOrder checks that the ops appear in order. Ops need not be
// consecutive; each op matches the first entry after the previous match.
func assertJournalOrder(trace []TraceEvent, a Assertion) error {
	pos := 0
	for _, op := range a.Ops {
		found := false
		for pos < len(trace) {
			ev := trace[pos]
			pos++
			if ev.Op == op {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertJournalOrder,
				Expected: fmt.Sprintf("ops in order: %v", a.Ops),
				Actual:   fmt.Sprintf("%s missing or out of order", op),
				Trace:    trace,
			}
		}
	}
	return nil
}

// assertJournalCount checks the exact number of entries with the op (and
// outcome).
func assertJournalCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if matches(ev, a.Op, a.Outcome) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertJournalCount,
			Expected: fmt.Sprintf("%d entries of %s", a.Count, describe(a.Op, a.Outcome)),
			Actual:   fmt.Sprintf("%d entries", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState checks a record's final projection. Expected values are
// compared as strings; booleans are "true" or "false".
func assertFinalState(view engine.View, a Assertion) error {
	id := *a.Record
	if id < 0 || id >= len(view.Records) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("record %d", id),
			Actual:   fmt.Sprintf("batch has %d records", len(view.Records)),
		}
	}

	fields := projectionFields(view.Records[id])

	keys := make([]string, 0, len(a.Expect))
	for k := range a.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var mismatches []string
	for _, k := range keys {
		got, ok := fields[k]
		if !ok {
			return fmt.Errorf("final_state: unknown field %q", k)
		}
		if got != a.Expect[k] {
			mismatches = append(mismatches, fmt.Sprintf("%s=%q (want %q)", k, got, a.Expect[k]))
		}
	}
	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("record %d matches %v", id, a.Expect),
			Actual:   strings.Join(mismatches, ", "),
		}
	}
	return nil
}

func projectionFields(p engine.Projection) map[string]string {
	return map[string]string{
		"platform":   string(p.Platform),
		"title":      p.Title,
		"body":       p.Body,
		"tags":       p.Tags,
		"link":       p.Link,
		"emoji":      p.Emoji,
		"serialized": p.Serialized,
		"preview":    p.Preview,
		"dirty":      strconv.FormatBool(p.Dirty),
		"modified":   strconv.FormatBool(p.Modified),
		"copied":     strconv.FormatBool(p.Copied),
		"active":     strconv.FormatBool(p.Active),
	}
}
