package post

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// recordKeys are the keys a SerializedView object may hold, matched exactly.
var recordKeys = []string{"platform", "title", "text", "hashtags", "link", "emoji"}

// ValidText replaces each run of invalid UTF-8 in s with U+FFFD, so the text
// survives serialization unchanged.
func ValidText(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// Serialize renders r as its SerializedView: two-space indented JSON with
// fields in declaration order and no HTML escaping.
func Serialize(r Record) string {
	return encode(r.Clone())
}

// SerializeList renders records as a JSON array in the same style as
// Serialize. An empty or nil list renders as [].
func SerializeList(records []Record) string {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return encode(out)
}

// encode cannot fail for Record values: every field is a string or a string
// slice.
func encode(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		// Unreachable for Record; keep the view non-empty regardless.
		return fmt.Sprintf("{\n  \"error\": %q\n}", err.Error())
	}
	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return string(unescapeLineSeparators(out))
}

// Parse decodes SerializedView text into a Record.
//
// The text must hold exactly one JSON object whose keys match the field names
// exactly and appear at most once, with a known platform and hashtags that
// all begin with TagMarker. Missing string fields
// decode as empty and missing hashtags as an empty list. The returned Record
// has ID 0; callers assign the positional ID.
//
// Every failure is a *Error of kind KindParseFailure.
func Parse(text string) (Record, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()

	var r Record
	if err := dec.Decode(&r); err != nil {
		return Record{}, NewParseFailure(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Record{}, NewParseFailure(errors.New("unexpected data after record"))
	}
	if err := checkKeys(text); err != nil {
		return Record{}, NewParseFailure(err)
	}

	if !r.Platform.Valid() {
		return Record{}, NewParseFailure(fmt.Errorf("unknown platform %q", r.Platform))
	}
	for i, tag := range r.Tags {
		if !strings.HasPrefix(tag, TagMarker) {
			return Record{}, NewParseFailure(fmt.Errorf("hashtags[%d] %q does not start with %q", i, tag, TagMarker))
		}
	}

	return r.Clone(), nil
}

// checkKeys walks the top-level object of text, which has already decoded
// cleanly, and rejects keys that differ in case from a field name or repeat.
// encoding/json accepts both.
func checkKeys(text string) error {
	dec := json.NewDecoder(strings.NewReader(text))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	seen := make(map[string]bool, len(recordKeys))
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, _ := tok.(string)
		if !slices.Contains(recordKeys, key) {
			return fmt.Errorf("unknown field %q", key)
		}
		if seen[key] {
			return fmt.Errorf("duplicate field %q", key)
		}
		seen[key] = true

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil
		}
	}
	return nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes emitted by
// encoding/json back into literal characters, leaving escaped backslashes
// (\\u2028) untouched. Both forms decode to the same string.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+5 < len(data) && string(data[i+1:i+5]) == "u202" &&
			(data[i+5] == '8' || data[i+5] == '9') && precedingBackslashes(out)%2 == 0 {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		out = append(out, data[i])
	}
	return out
}

func precedingBackslashes(b []byte) int {
	n := 0
	for j := len(b) - 1; j >= 0 && b[j] == '\\'; j-- {
		n++
	}
	return n
}
