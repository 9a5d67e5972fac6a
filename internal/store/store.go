package store

import (
	"sync"

	"github.com/1njure/mpit25-NetJaggers/internal/post"
)

// Store holds the current batch of records and their snapshots.
//
// Thread-safety: all methods are safe for concurrent use. The session
// serializes edits, but projections may be read from other goroutines while
// a fetch completes.
type Store struct {
	mu    sync.RWMutex
	batch *batch
	seq   int64 // number of batches installed so far
}

// batch is replaced as a unit; its snapshots slice is never mutated after
// construction.
type batch struct {
	seq       int64
	records   []post.Record
	snapshots []post.Snapshot
}

// Batch is a consistent read of the store: records and snapshots always come
// from the same fetch.
type Batch struct {
	// Seq numbers installed batches starting at 1; 0 means no batch yet.
	Seq       int64
	Records   []post.Record
	Snapshots []post.Snapshot
}

// New creates an empty store.
func New() *Store {
	return &Store{batch: &batch{}}
}

// ReplaceBatch discards the previous batch and its snapshots and installs
// records as the new batch.
//
// Records are deep-copied and assigned positional IDs (0, 1, ...); any ID the
// caller set is ignored. A snapshot is frozen for each record. Returns the
// sequence number of the installed batch.
func (s *Store) ReplaceBatch(records []post.Record) int64 {
	next := &batch{
		records:   make([]post.Record, len(records)),
		snapshots: make([]post.Snapshot, len(records)),
	}
	for i, r := range records {
		c := r.Clone()
		c.ID = post.ID(i)
		next.records[i] = c
		next.snapshots[i] = post.NewSnapshot(c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	next.seq = s.seq
	s.batch = next
	return next.seq
}

// Batch returns a deep copy of the current records together with their
// snapshots.
func (s *Store) Batch() Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := Batch{
		Seq:       s.batch.seq,
		Records:   make([]post.Record, len(s.batch.records)),
		Snapshots: make([]post.Snapshot, len(s.batch.snapshots)),
	}
	for i, r := range s.batch.records {
		out.Records[i] = r.Clone()
	}
	copy(out.Snapshots, s.batch.snapshots)
	return out
}

// lookup returns the index for id or a NotFound error.
// Caller must hold s.mu.
func (s *Store) lookup(id post.ID) (int, error) {
	if id < 0 || int(id) >= len(s.batch.records) {
		return 0, post.NewNotFound(id)
	}
	return int(id), nil
}
