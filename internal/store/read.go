package store

import "github.com/1njure/mpit25-NetJaggers/internal/post"

// Get returns a copy of the record with the given ID.
// Fails with a NotFound error if id is not in the current batch.
func (s *Store) Get(id post.ID) (post.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, err := s.lookup(id)
	if err != nil {
		return post.Record{}, err
	}
	return s.batch.records[i].Clone(), nil
}

// GetSnapshot returns the snapshot frozen for id when its batch was installed.
// Fails with a NotFound error if id is not in the current batch.
func (s *Store) GetSnapshot(id post.ID) (post.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, err := s.lookup(id)
	if err != nil {
		return post.Snapshot{}, err
	}
	return s.batch.snapshots[i], nil
}

// Records returns copies of all records in ID order.
// Returns an empty slice (not nil) when no batch is installed.
func (s *Store) Records() []post.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]post.Record, len(s.batch.records))
	for i, r := range s.batch.records {
		out[i] = r.Clone()
	}
	return out
}

// Len returns the number of records in the current batch.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.batch.records)
}

// Seq returns the sequence number of the current batch (0 if none).
func (s *Store) Seq() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batch.seq
}
