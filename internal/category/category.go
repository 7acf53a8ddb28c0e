// Package category maps user- and URL-supplied category tokens onto the
// site's canonical categories. Every canonical category carries the display
// names it is stored under, in both languages, so one token resolves to the
// full set of spellings found in the article store.
package category

import (
	"strings"
	"unicode"
)

// Resolved is the outcome of resolving a raw category token. When the token
// matched a canonical category, Key is its canonical key and Variants holds
// every accepted display name. Otherwise Key is empty and Variants wraps the
// raw token unchanged, so unknown categories still produce a usable filter.
type Resolved struct {
	Key      string
	Variants []string
}

// Canonical reports whether the token matched a canonical category.
func (r Resolved) Canonical() bool { return r.Key != "" }

type entry struct {
	key      string
	variants []string
}

// Definition order is the tie-break order for resolution. Variants are
// globally unique across keys, so order only matters if that invariant is
// ever broken.
var entries = []entry{
	{"national", []string{"National", "राष्ट्रीय"}},
	{"world", []string{"World", "विश्व"}},
	{"politics", []string{"Politics", "राजनीति"}},
	{"business", []string{"Business", "व्यापार", "Finance", "वित्त"}},
	{"entertainment", []string{"Entertainment", "मनोरंजन"}},
	{"sports", []string{"Sports", "खेल"}},
	{"education", []string{"Education", "शिक्षा"}},
	{"health", []string{"Health", "स्वास्थ्य"}},
	{"tech", []string{"Tech", "टेक"}},
	{"religion", []string{"Religion", "धर्म"}},
	{"environment", []string{"Environment", "पर्यावरण"}},
	{"crime", []string{"Crime", "क्राइम"}},
	{"opinion", []string{"Opinion", "विचार"}},
}

// Resolve maps a raw token onto a canonical category, falling back to a
// single-variant pseudo-category wrapping the token itself. It never fails.
func Resolve(token string) Resolved {
	needle := strings.ToLower(strings.TrimSpace(token))
	for _, e := range entries {
		for _, v := range e.variants {
			if strings.ToLower(v) == needle {
				return Resolved{Key: e.key, Variants: e.variants}
			}
		}
	}
	return Resolved{Variants: []string{token}}
}

// Keys returns every canonical key in definition order. The scheduled
// ingestion sweep iterates this list.
func Keys() []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.key
	}
	return keys
}

// Variants returns the display names for a canonical key, or nil for an
// unknown key.
func Variants(key string) []string {
	for _, e := range entries {
		if e.key == key {
			return e.variants
		}
	}
	return nil
}

// DisplayName returns the primary (first) display name for a canonical key.
// Ingested articles are stored under this spelling. Unknown keys are
// title-cased as-is.
func DisplayName(key string) string {
	for _, e := range entries {
		if e.key == key {
			return e.variants[0]
		}
	}
	return title(key)
}

func title(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
