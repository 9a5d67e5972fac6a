package journal

import "github.com/1njure/mpit25-NetJaggers/internal/post"

// Op names a session operation.
type Op string

const (
	OpFetch          Op = "fetch"
	OpActivate       Op = "activate"
	OpEditBody       Op = "edit_body"
	OpEditTags       Op = "edit_tags"
	OpEditPreview    Op = "edit_preview"
	OpEditSerialized Op = "edit_serialized"
	OpReset          Op = "reset"
	OpCopy           Op = "copy"
	OpCopyAll        Op = "copy_all"
	OpPublish        Op = "publish"
)

// Outcomes recorded alongside an operation. Errors record their post.ErrorKind.
const (
	OutcomeOK         = "ok"
	OutcomeDirty      = "dirty"
	OutcomeApplied    = "applied"
	OutcomeSuperseded = "superseded"
	OutcomeCancelled  = "cancelled"
	OutcomeFailed     = "failed"
)

// NoRecord marks an entry that does not address a single record.
const NoRecord post.ID = -1

// Entry is one journaled operation.
type Entry struct {
	SessionID  string            `json:"session_id"`
	Seq        int64             `json:"seq"`
	Op         Op                `json:"op"`
	RecordID   post.ID           `json:"record_id"`
	Outcome    string            `json:"outcome"`
	Generation int64             `json:"generation,omitempty"`
	Detail     map[string]string `json:"detail,omitempty"`
}

// HasRecord reports whether the entry addresses a single record.
func (e Entry) HasRecord() bool {
	return e.RecordID != NoRecord
}
