package journal

import (
	"context"
	"database/sql"
	"fmt"
)

// Append inserts an entry. (session_id, seq) is the primary key; a duplicate
// is ignored so a retried append cannot fork the log.
func (j *Journal) Append(ctx context.Context, e Entry) error {
	detail, err := marshalDetail(e.Detail)
	if err != nil {
		return fmt.Errorf("append %s: %w", e.Op, err)
	}

	var recordID sql.NullInt64
	if e.HasRecord() {
		recordID = sql.NullInt64{Int64: int64(e.RecordID), Valid: true}
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO operations
		(session_id, seq, op, record_id, outcome, generation, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, seq) DO NOTHING
	`,
		e.SessionID,
		e.Seq,
		string(e.Op),
		recordID,
		e.Outcome,
		e.Generation,
		detail,
	)
	if err != nil {
		return fmt.Errorf("append %s: %w", e.Op, err)
	}
	return nil
}
