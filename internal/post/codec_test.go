package post

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() Record {
	return Record{
		ID:       2,
		Platform: PlatformVK,
		Title:    "City council approves budget",
		Body:     "The council voted 7-2 in favour.",
		Tags:     []string{"#news", "#city"},
		Link:     "https://example.com/news/budget",
	}
}

func TestSerialize_FieldOrderAndIndent(t *testing.T) {
	r := Record{
		Platform: PlatformTelegram,
		Title:    "T",
		Body:     "B",
		Tags:     []string{"#a"},
		Link:     "L",
	}

	want := `{
  "platform": "telegram",
  "title": "T",
  "text": "B",
  "hashtags": [
    "#a"
  ],
  "link": "L"
}`
	assert.Equal(t, want, Serialize(r))
}

func TestSerialize_EmptyTagsAsArray(t *testing.T) {
	r := Record{Platform: PlatformDzen}
	out := Serialize(r)
	assert.Contains(t, out, `"hashtags": [],`)
	assert.NotContains(t, out, "null")
}

func TestSerialize_EmojiOmittedWhenEmpty(t *testing.T) {
	r := sampleRecord()
	assert.NotContains(t, Serialize(r), "emoji")

	r.Emoji = "*"
	assert.Contains(t, Serialize(r), `"emoji": "*"`)
}

func TestSerialize_NoHTMLEscaping(t *testing.T) {
	r := sampleRecord()
	r.Body = "<b>bold</b> & more"

	out := Serialize(r)
	assert.Contains(t, out, `"text": "<b>bold</b> & more"`)
}

func TestSerialize_LineSeparatorsLiteral(t *testing.T) {
	r := sampleRecord()
	r.Body = "a\u2028b\u2029c"

	out := Serialize(r)
	assert.Contains(t, out, "a\u2028b\u2029c")
	assert.NotContains(t, out, `\u2028`)
}

func TestSerialize_EscapedBackslashKept(t *testing.T) {
	r := sampleRecord()
	r.Body = `literal \u2028 text`

	out := Serialize(r)
	assert.Contains(t, out, `literal \\u2028 text`)

	parsed, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, r.Body, parsed.Body)
}

func TestParse_RoundTrip(t *testing.T) {
	records := []Record{
		sampleRecord(),
		{Platform: PlatformTelegram, Tags: []string{}},
		{Platform: PlatformDzen, Title: "x", Body: "multi\nline\ttext \"quoted\"", Tags: []string{"#a", "#a", "#"}, Link: "l", Emoji: "!"},
		{Platform: PlatformVK, Body: "<script>&amp;</script>", Tags: []string{"#x"}},
		{Platform: PlatformVK, Body: "sep\u2028and\u2029end \\u2028"},
		{Platform: PlatformTelegram, Body: "Привет, мир", Tags: []string{"#новости"}},
	}

	for _, r := range records {
		parsed, err := Parse(Serialize(r))
		require.NoError(t, err)

		// ID is positional and not serialized.
		r.ID = 0
		assert.True(t, r.Equal(parsed), "round trip mismatch: %+v vs %+v", r, parsed)
	}
}

func TestParse_MissingFieldsDefault(t *testing.T) {
	r, err := Parse(`{"platform": "vk"}`)
	require.NoError(t, err)

	assert.Equal(t, PlatformVK, r.Platform)
	assert.Equal(t, "", r.Body)
	assert.NotNil(t, r.Tags)
	assert.Empty(t, r.Tags)
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", "EOF"},
		{"truncated", `{"platform": "vk"`, "unexpected EOF"},
		{"not an object", `"just a string"`, "cannot unmarshal"},
		{"null", `null`, "unknown platform"},
		{"unknown key", `{"platform": "vk", "likes": 3}`, "unknown field"},
		{"unknown platform", `{"platform": "twitter"}`, "unknown platform"},
		{"wrong type", `{"platform": "vk", "text": 12}`, "cannot unmarshal"},
		{"unmarked tag", `{"platform": "vk", "hashtags": ["#ok", "bad"]}`, `hashtags[1] "bad"`},
		{"trailing data", `{"platform": "vk"} {}`, "unexpected data"},
		{"key case differs", `{"PLATFORM": "vk"}`, `unknown field "PLATFORM"`},
		{"duplicate key", `{"platform": "vk", "text": "x", "text": "y"}`, `duplicate field "text"`},
		{"case variant of present key", `{"platform": "vk", "Text": "x", "text": "y"}`, `unknown field "Text"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			assert.True(t, IsParseFailure(err), "expected parse failure, got %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidText(t *testing.T) {
	assert.Equal(t, "ok", ValidText("ok"))
	assert.Equal(t, "Привет", ValidText("Привет"))
	assert.Equal(t, "a\uFFFDb", ValidText("a\xff\xfeb"))

	r := Record{Platform: PlatformVK, Body: ValidText("x\xc3")}
	parsed, err := Parse(Serialize(r))
	require.NoError(t, err)
	assert.Equal(t, r.Body, parsed.Body)
}

func TestParse_TrailingWhitespaceAllowed(t *testing.T) {
	_, err := Parse("{\"platform\": \"dzen\"}\n\n  ")
	assert.NoError(t, err)
}

func TestParse_PreservesTagOrderAndDuplicates(t *testing.T) {
	r, err := Parse(`{"platform": "telegram", "hashtags": ["#b", "#a", "#b"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"#b", "#a", "#b"}, r.Tags)
}

func TestSerialize_DoesNotAliasTags(t *testing.T) {
	r := sampleRecord()
	out := Serialize(r)
	r.Tags[0] = "#changed"
	assert.False(t, strings.Contains(out, "#changed"))
}

func TestSerializeList(t *testing.T) {
	assert.Equal(t, "[]", SerializeList(nil))

	a := Record{Platform: PlatformTelegram, Title: "A", Body: "<a>", Tags: []string{"#x"}, Link: "la"}
	b := Record{Platform: PlatformVK, Title: "B", Link: "lb"}

	want := `[
  {
    "platform": "telegram",
    "title": "A",
    "text": "<a>",
    "hashtags": [
      "#x"
    ],
    "link": "la"
  },
  {
    "platform": "vk",
    "title": "B",
    "text": "",
    "hashtags": [],
    "link": "lb"
  }
]`
	assert.Equal(t, want, SerializeList([]Record{a, b}))
}
