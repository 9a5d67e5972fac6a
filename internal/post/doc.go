// Package post provides the canonical record types shared by every layer of
// the post synchronization engine.
//
// This package contains the Record and Snapshot types, the SerializedView
// codec, the hashtag filter, the canonical fingerprint and the error kinds.
// All other internal packages import post; post imports nothing internal.
//
// Key constraints:
//   - A Record's ID is its position in the batch and is never serialized
//   - Tags are never nil on a normalized Record (empty tags serialize as [])
//   - The SerializedView field order is platform, title, text, hashtags, link
//   - Snapshots are immutable; accessors always return deep copies
package post
