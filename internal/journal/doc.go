// Package journal provides an SQLite-backed log of every operation a post
// sync session performs.
//
// The journal is append-only and normally lives in an in-memory database
// (":memory:"), so it never outlives the process. It records:
//   - Fetches: generation, requested and resolved source, applied or superseded
//   - Edits: body, tags, preview and serialized-view edits with their outcome
//   - Resets, copies, activations and publish attempts
//
// # Ordering
//
// Entries are ordered by seq, a per-session logical clock, never by wall time.
// All reads use ORDER BY seq ASC so traces are reproducible.
//
// # Database configuration
//
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - a single connection, which also keeps an in-memory database alive
//
// WAL is requested only for file-backed databases; SQLite ignores it for
// in-memory ones.
package journal
