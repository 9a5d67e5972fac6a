package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/1njure/mpit25-NetJaggers/internal/post"
)

// Entries returns every entry of a session in seq order.
// Returns an empty slice (not nil) if the session has no entries.
func (j *Journal) Entries(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session_id, seq, op, record_id, outcome, generation, detail
		FROM operations
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// RecordEntries returns the entries of a session that address one record,
// in seq order.
func (j *Journal) RecordEntries(ctx context.Context, sessionID string, id post.ID) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session_id, seq, op, record_id, outcome, generation, detail
		FROM operations
		WHERE session_id = ? AND record_id = ?
		ORDER BY seq ASC
	`, sessionID, int64(id))
	if err != nil {
		return nil, fmt.Errorf("query record entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Count returns the number of entries recorded for a session.
func (j *Journal) Count(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM operations WHERE session_id = ?", sessionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	entries := []Entry{}
	for rows.Next() {
		var (
			e        Entry
			op       string
			recordID sql.NullInt64
			detail   string
		)
		if err := rows.Scan(&e.SessionID, &e.Seq, &op, &recordID, &e.Outcome, &e.Generation, &detail); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		e.Op = Op(op)
		e.RecordID = NoRecord
		if recordID.Valid {
			e.RecordID = post.ID(recordID.Int64)
		}

		d, err := unmarshalDetail(detail)
		if err != nil {
			return nil, fmt.Errorf("entry seq %d: %w", e.Seq, err)
		}
		e.Detail = d

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}
