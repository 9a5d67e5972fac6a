package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1njure/mpit25-NetJaggers/internal/engine"
	"github.com/1njure/mpit25-NetJaggers/internal/post"
)

func intPtr(i int) *int { return &i }

func sampleResult() *Result {
	r := NewResult()
	r.Trace = []TraceEvent{
		{Seq: 1, Op: "fetch", Outcome: "applied", Generation: 1},
		{Seq: 2, Op: "edit_body", Record: intPtr(0), Outcome: "ok"},
		{Seq: 3, Op: "edit_serialized", Record: intPtr(0), Outcome: "dirty"},
		{Seq: 4, Op: "reset", Record: intPtr(0), Outcome: "ok"},
		{Seq: 5, Op: "reset", Record: intPtr(0), Outcome: "ok"},
	}
	r.Final = engine.View{
		Records: []engine.Projection{
			{ID: 0, Platform: post.PlatformVK, Body: "b", Tags: "#a #b", Active: true},
		},
	}
	return r
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertJournalContains, Op: "edit_serialized", Outcome: "dirty"},
		{Type: AssertJournalContains, Op: "fetch"},
		{Type: AssertJournalOrder, Ops: []string{"fetch", "reset"}},
		{Type: AssertJournalOrder, Ops: []string{"reset", "reset"}},
		{Type: AssertJournalCount, Op: "reset", Count: 2},
		{Type: AssertJournalCount, Op: "publish", Count: 0},
		{Type: AssertFinalState, Record: intPtr(0), Expect: map[string]string{
			"body": "b", "tags": "#a #b", "platform": "vk", "active": "true", "dirty": "false",
		}},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{
			name:      "contains missing",
			assertion: Assertion{Type: AssertJournalContains, Op: "publish"},
			want:      "Assertion failed: journal_contains",
		},
		{
			name:      "contains wrong outcome",
			assertion: Assertion{Type: AssertJournalContains, Op: "reset", Outcome: "NOT_FOUND"},
			want:      "reset with outcome NOT_FOUND",
		},
		{
			name:      "order reversed",
			assertion: Assertion{Type: AssertJournalOrder, Ops: []string{"reset", "fetch"}},
			want:      "fetch missing or out of order",
		},
		{
			name:      "order three resets",
			assertion: Assertion{Type: AssertJournalOrder, Ops: []string{"reset", "reset", "reset"}},
			want:      "reset missing or out of order",
		},
		{
			name:      "count",
			assertion: Assertion{Type: AssertJournalCount, Op: "reset", Count: 1},
			want:      "Actual: 2 entries",
		},
		{
			name:      "final state mismatch",
			assertion: Assertion{Type: AssertFinalState, Record: intPtr(0), Expect: map[string]string{"body": "other"}},
			want:      `body="b" (want "other")`,
		},
		{
			name:      "final state missing record",
			assertion: Assertion{Type: AssertFinalState, Record: intPtr(3), Expect: map[string]string{"body": "b"}},
			want:      "batch has 1 records",
		},
		{
			name:      "final state unknown field",
			assertion: Assertion{Type: AssertFinalState, Record: intPtr(0), Expect: map[string]string{"likes": "3"}},
			want:      `unknown field "likes"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.True(t, strings.HasPrefix(errs[0], "assertions[0]: "))
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertJournalCount,
		Expected: "1",
		Actual:   "2",
		Trace:    sampleResult().Trace[:2],
	}
	msg := err.Error()
	assert.Contains(t, msg, "[1] fetch record=- applied")
	assert.Contains(t, msg, "[2] edit_body record=0 ok")
}
