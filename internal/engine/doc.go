// Package engine keeps the three views of every fetched post draft in sync
// and orchestrates an editing session.
//
// ARCHITECTURE:
//
// Each record is visible three ways: the structured post.Record held by the
// store, its SerializedView (indented JSON text) and its PreviewView (the
// body as plain text). An edit may arrive through any of them:
//
//   - body or preview edit: the record's body changes, both views follow
//   - tags edit: free text is filtered to #-prefixed tokens, the serialized
//     view follows, the preview is untouched
//   - serialized edit: parsed text replaces the record; unparseable text is
//     kept as the view and the record is left alone
//   - reset: the record is restored from its snapshot, both views follow
//
// View state per record is a tagged variant, synced or dirty-unparsed. The
// dirty-unparsed state is the one place the views may disagree with the
// record, and it lasts until the next edit or reset of that record.
//
// The Projector owns the views; the Session owns the active record, copy
// feedback and fetch generations, and forwards edits to the Projector.
//
// CONCURRENCY:
//
// A single editor acts at a time; the Session lock serializes edits. Fetch
// is the only call that waits, and it waits without the lock. Every Fetch
// takes a generation from a monotonic Clock and its result is applied only
// if no later Fetch has started, whatever order the results arrive in.
//
// Logical clocks (never wall time) number fetch generations and journal
// entries, so a replayed scenario produces the same journal.
package engine
