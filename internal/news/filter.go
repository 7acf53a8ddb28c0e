package news

import (
	"strings"

	"github.com/newschakra/newsdesk/internal/category"
)

// Result caps for the caller-facing query surface.
const (
	ListLimit     = 20
	TopNewsLimit  = 5
	RelatedLimit  = 4
	RecentStories = 10
)

// Lang selects which language side of an article must be populated.
type Lang string

// Supported site languages.
const (
	LangEN Lang = "en"
	LangHI Lang = "hi"
)

// LangFromQuery maps a request's lang parameter onto a Lang. Anything other
// than "hi" means English.
func LangFromQuery(q string) Lang {
	if q == string(LangHI) {
		return LangHI
	}
	return LangEN
}

// Filter is a store-agnostic article query. Each store renders it into its
// native query form; all string matches are case-insensitive and anchored
// to the full field value unless noted.
type Filter struct {
	// CategoryAnyOf matches articles whose category equals any listed
	// variant. Empty means no category clause.
	CategoryAnyOf []string
	Subcategory   string
	District      string

	// Lang, when set, requires a non-empty title in that language.
	Lang Lang
	// ExcludeSlug drops one article, used by the related-articles feed.
	ExcludeSlug string
	// Search is a case-insensitive substring matched across every text
	// field. The stores quote it; user input is never compiled as a
	// pattern.
	Search string

	// Limit caps the result size. Zero means no cap. Results are always
	// sorted by creation time, newest first.
	Limit int
}

// BuildFilter composes an article filter from a resolved category and the
// optional URL path narrowers. Hyphens in subcategory and district arrive
// from URL segments and stand for spaces.
func BuildFilter(rc category.Resolved, subcategory, district string) Filter {
	return Filter{
		CategoryAnyOf: rc.Variants,
		Subcategory:   strings.ReplaceAll(subcategory, "-", " "),
		District:      strings.ReplaceAll(district, "-", " "),
		Limit:         ListLimit,
	}
}
