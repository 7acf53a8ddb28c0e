// Package slug derives URL identifiers from article titles.
package slug

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Make lowercases the title, turns spaces into hyphens and strips every
// rune that is neither a word character nor a hyphen. It is deterministic:
// re-ingestion of the same headline yields the same slug, which is what the
// duplicate check keys on.
func Make(title string) string {
	lowered := strings.ToLower(title)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r == ' ':
			b.WriteRune('-')
		// IsMark keeps Devanagari vowel signs attached to their consonants.
		case r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Disambiguate appends a millisecond timestamp to a slug that collided with
// an existing article. The result is accepted without re-checking; a second
// collision within the same millisecond is treated as negligible.
func Disambiguate(s string, now time.Time) string {
	return fmt.Sprintf("%s-%d", s, now.UnixMilli())
}
