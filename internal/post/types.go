package post

import "slices"

// Platform identifies the channel a post draft targets.
type Platform string

const (
	PlatformTelegram Platform = "telegram"
	PlatformVK       Platform = "vk"
	PlatformDzen     Platform = "dzen"
)

// Platforms is the closed set of platform tags, in display order.
var Platforms = []Platform{PlatformTelegram, PlatformVK, PlatformDzen}

// Valid reports whether p is one of the known platforms.
func (p Platform) Valid() bool {
	return slices.Contains(Platforms, p)
}

// ParsePlatform converts s to a Platform. The match is exact.
func ParsePlatform(s string) (Platform, bool) {
	p := Platform(s)
	return p, p.Valid()
}

// ID is a record's position within its batch.
type ID int

// Record is the canonical structured form of a post draft.
//
// JSON tags define the SerializedView wire names; ID is positional and
// therefore excluded.
type Record struct {
	ID       ID       `json:"-"`
	Platform Platform `json:"platform"`
	Title    string   `json:"title"`
	Body     string   `json:"text"`
	Tags     []string `json:"hashtags"`
	Link     string   `json:"link"`
	Emoji    string   `json:"emoji,omitempty"`
}

// Clone returns a deep copy of r with tags normalized to a non-nil slice.
func (r Record) Clone() Record {
	c := r
	c.Tags = make([]string, len(r.Tags))
	copy(c.Tags, r.Tags)
	return c
}

// Equal reports whether r and o hold the same field values, including ID.
// Nil and empty tag slices compare equal.
func (r Record) Equal(o Record) bool {
	return r.ID == o.ID &&
		r.Platform == o.Platform &&
		r.Title == o.Title &&
		r.Body == o.Body &&
		slices.Equal(r.Tags, o.Tags) &&
		r.Link == o.Link &&
		r.Emoji == o.Emoji
}

// Snapshot is the frozen copy of a Record taken when its batch was fetched.
// The zero value is an empty snapshot of record 0.
type Snapshot struct {
	record Record
}

// NewSnapshot freezes a deep copy of r.
func NewSnapshot(r Record) Snapshot {
	return Snapshot{record: r.Clone()}
}

// ID returns the ID of the snapshotted record.
func (s Snapshot) ID() ID {
	return s.record.ID
}

// Record returns a deep copy of the snapshotted record.
func (s Snapshot) Record() Record {
	return s.record.Clone()
}

// Field names a Record field for targeted updates.
type Field string

const (
	FieldPlatform Field = "platform"
	FieldTitle    Field = "title"
	FieldBody     Field = "body"
	FieldTags     Field = "tags"
	FieldLink     Field = "link"
	FieldEmoji    Field = "emoji"
)

// Known reports whether f names a Record field.
func (f Field) Known() bool {
	switch f {
	case FieldPlatform, FieldTitle, FieldBody, FieldTags, FieldLink, FieldEmoji:
		return true
	}
	return false
}

// Editable reports whether f may be changed through a field update.
// Title and link are fixed at fetch time; platform and emoji only change
// through a wholesale replacement from the SerializedView.
func (f Field) Editable() bool {
	return f == FieldBody || f == FieldTags
}
