package harness

import (
	"github.com/1njure/mpit25-NetJaggers/internal/engine"
	"github.com/1njure/mpit25-NetJaggers/internal/journal"
)

// TraceEvent is one journal entry as it appears in a scenario trace.
type TraceEvent struct {
	Seq        int64             `json:"seq"`
	Op         string            `json:"op"`
	Record     *int              `json:"record,omitempty"`
	Outcome    string            `json:"outcome"`
	Generation int64             `json:"generation,omitempty"`
	Detail     map[string]string `json:"detail,omitempty"`
}

// newTraceEvent converts a journal entry. Entries that address no record
// carry no record field.
func newTraceEvent(e journal.Entry) TraceEvent {
	ev := TraceEvent{
		Seq:        e.Seq,
		Op:         string(e.Op),
		Outcome:    e.Outcome,
		Generation: e.Generation,
		Detail:     e.Detail,
	}
	if e.HasRecord() {
		id := int(e.RecordID)
		ev.Record = &id
	}
	return ev
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every expectation and assertion held.
	Pass bool `json:"pass"`

	// SessionID is the ID stamped on every journal entry of the run.
	SessionID string `json:"session_id"`

	// Trace is the session journal in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failed expectations and assertions.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the session view after the last step.
	Final engine.View `json:"final"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
