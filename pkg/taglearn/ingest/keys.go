package ingest

import (
	"strings"

	"github.com/kljensen/snowball/english"
)

// KeyFor returns the grouping key for a tag string: phrases map to
// themselves, single words to their stem. This lets callers that only have
// a tag's display form (e.g. one read back from an artifact) recover the
// key the tokenizer would have produced.
func KeyFor(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" || strings.Contains(tag, " ") {
		return tag
	}
	return english.Stem(tag, false)
}
