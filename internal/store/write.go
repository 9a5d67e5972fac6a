package store

import (
	"fmt"

	"github.com/1njure/mpit25-NetJaggers/internal/post"
)

// UpdateField replaces one field of a record in place.
//
// Body takes a string and tags a []string; values are stored as given, with
// no content validation. Fails with NotFound if the record does not exist and
// with InvalidField if the field is unknown, not editable (title, link,
// platform, emoji) or given a value of the wrong type.
func (s *Store) UpdateField(id post.ID, field post.Field, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.lookup(id)
	if err != nil {
		return err
	}

	if !field.Known() {
		return post.NewInvalidField(id, field, "is not a record field")
	}
	if !field.Editable() {
		return post.NewInvalidField(id, field, "is immutable after fetch")
	}

	rec := &s.batch.records[i]
	switch field {
	case post.FieldBody:
		body, ok := value.(string)
		if !ok {
			return post.NewInvalidField(id, field, fmt.Sprintf("expects string, got %T", value))
		}
		rec.Body = body

	case post.FieldTags:
		tags, ok := value.([]string)
		if !ok {
			return post.NewInvalidField(id, field, fmt.Sprintf("expects []string, got %T", value))
		}
		rec.Tags = make([]string, len(tags))
		copy(rec.Tags, tags)
	}

	return nil
}

// Replace overwrites every field of a record with r's values. The record
// keeps its positional ID. Fails with NotFound if id is not in the batch.
func (s *Store) Replace(id post.ID, r post.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.lookup(id)
	if err != nil {
		return err
	}

	c := r.Clone()
	c.ID = id
	s.batch.records[i] = c
	return nil
}

// Restore copies the record's snapshot back over it and returns the
// restored record. Fails with NotFound if id is not in the batch.
func (s *Store) Restore(id post.ID) (post.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, err := s.lookup(id)
	if err != nil {
		return post.Record{}, err
	}

	restored := s.batch.snapshots[i].Record()
	s.batch.records[i] = restored
	return restored.Clone(), nil
}
