package post

import "strings"

// TagMarker is the character every hashtag must begin with.
const TagMarker = "#"

// FilterTags splits raw on whitespace and keeps only the tokens that begin
// with TagMarker, in input order. Other tokens are dropped silently.
// Duplicates are kept. The result is never nil.
func FilterTags(raw string) []string {
	tags := []string{}
	for _, tok := range strings.Fields(raw) {
		if strings.HasPrefix(tok, TagMarker) {
			tags = append(tags, tok)
		}
	}
	return tags
}

// JoinTags renders tags for display, separated by single spaces.
func JoinTags(tags []string) string {
	return strings.Join(tags, " ")
}
