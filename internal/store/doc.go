// Package store owns the canonical in-memory batch of post records and the
// snapshots frozen when the batch was fetched.
//
// # Batch replacement
//
// A batch pairs its records with their snapshots. ReplaceBatch builds the new
// pair off to the side and swaps it in under the write lock, so a reader holds
// either the previous records with the previous snapshots or the new records
// with the new snapshots, never a mix and never a partial batch.
//
// # Field updates
//
// Only body and tags are editable through UpdateField. Title and link are fixed
// at fetch time. Platform and emoji change only through Replace, which the
// serialized-view edit path uses for wholesale replacement.
//
// All accessors return deep copies; callers cannot mutate stored records.
package store
