package post

import (
	"bytes"
	"encoding/json"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces the canonical JSON form of r used for
// fingerprinting. It differs from Serialize in three ways:
//  1. Keys are sorted (emoji, hashtags, link, platform, text, title)
//  2. No whitespace between tokens
//  3. Strings are NFC normalized
//
// ID is excluded, as in the SerializedView. Emoji is always present so
// that an empty emoji and a missing one hash the same.
func MarshalCanonical(r Record) []byte {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeKey(&buf, "emoji")
	writeCanonicalString(&buf, r.Emoji)
	buf.WriteByte(',')

	writeKey(&buf, "hashtags")
	buf.WriteByte('[')
	for i, tag := range r.Tags {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeCanonicalString(&buf, tag)
	}
	buf.WriteByte(']')
	buf.WriteByte(',')

	writeKey(&buf, "link")
	writeCanonicalString(&buf, r.Link)
	buf.WriteByte(',')

	writeKey(&buf, "platform")
	writeCanonicalString(&buf, string(r.Platform))
	buf.WriteByte(',')

	writeKey(&buf, "text")
	writeCanonicalString(&buf, r.Body)
	buf.WriteByte(',')

	writeKey(&buf, "title")
	writeCanonicalString(&buf, r.Title)

	buf.WriteByte('}')
	return buf.Bytes()
}

func writeKey(buf *bytes.Buffer, key string) {
	writeCanonicalString(buf, key)
	buf.WriteByte(':')
}

// writeCanonicalString writes s as an NFC-normalized JSON string without
// HTML escaping.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(norm.NFC.String(s))
	buf.Write(unescapeLineSeparators(bytes.TrimSuffix(tmp.Bytes(), []byte("\n"))))
}
