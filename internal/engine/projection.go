package engine

import (
	"unicode/utf8"

	"github.com/1njure/mpit25-NetJaggers/internal/post"
)

// PreviewTagLimit is how many tags a card preview shows before collapsing the
// rest into a "+N" counter.
const PreviewTagLimit = 3

// Projection is the read-only per-record output consumed by a presentation
// layer.
type Projection struct {
	ID       post.ID       `json:"id"`
	Platform post.Platform `json:"platform"`
	Title    string        `json:"title"`
	Body     string        `json:"body"`

	// Tags is the record's hashtags joined by single spaces.
	Tags  string `json:"tags"`
	Link  string `json:"link"`
	Emoji string `json:"emoji,omitempty"`

	Serialized string `json:"serialized"`
	Preview    string `json:"preview"`

	// PreviewChars is the preview length in characters (runes).
	PreviewChars int `json:"preview_chars"`

	// PreviewTags holds at most PreviewTagLimit tags; HiddenTags counts the rest.
	PreviewTags []string `json:"preview_tags"`
	HiddenTags  int      `json:"hidden_tags"`

	// Dirty: the serialized view holds text that failed to parse.
	Dirty bool `json:"dirty"`

	// ParseError is the parse failure behind Dirty.
	ParseError string `json:"parse_error,omitempty"`

	// Modified: the record's content differs from its snapshot.
	Modified bool `json:"modified"`

	// Copied: the serialized view was copied within the feedback window.
	Copied bool `json:"copied"`

	Active bool `json:"active"`
}

// View is a consistent read of a whole session.
type View struct {
	Loading    bool         `json:"loading"`
	Generation int64        `json:"generation"`
	Batch      int64        `json:"batch"`
	Source     string       `json:"source"`
	Active     post.ID      `json:"active"`
	Records    []Projection `json:"records"`
}

func project(rv recordView) Projection {
	r := rv.record

	shown := r.Tags
	if len(shown) > PreviewTagLimit {
		shown = shown[:PreviewTagLimit]
	}
	previewTags := make([]string, len(shown))
	copy(previewTags, shown)

	p := Projection{
		ID:           r.ID,
		Platform:     r.Platform,
		Title:        r.Title,
		Body:         r.Body,
		Tags:         post.JoinTags(r.Tags),
		Link:         r.Link,
		Emoji:        r.Emoji,
		Serialized:   rv.view.serialized,
		Preview:      rv.view.preview,
		PreviewChars: utf8.RuneCountInString(rv.view.preview),
		PreviewTags:  previewTags,
		HiddenTags:   len(r.Tags) - len(shown),
		Dirty:        rv.view.dirty(),
		Modified:     post.Fingerprint(r) != post.Fingerprint(rv.snapshot.Record()),
	}
	if rv.view.cause != nil {
		p.ParseError = rv.view.cause.Error()
	}
	return p
}
