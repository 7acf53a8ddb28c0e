// Package news defines the domain types and store contracts shared across
// the service. By keeping the store behind interfaces, handlers and the
// ingestion pipeline stay decoupled from the concrete database driver.
package news

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultAuthor is the site byline used when no author is supplied.
const DefaultAuthor = "News Chakra"

// GalleryImage is one entry in an article's image gallery.
type GalleryImage struct {
	URL     string `bson:"url" json:"url"`
	Caption string `bson:"caption" json:"caption"`
}

// Article is a single news item, authored in the CMS or ingested from the
// external news source. Either language side may be empty; an ingested
// article carries only its source language.
type Article struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TitleEN   string             `bson:"title_en" json:"title_en"`
	TitleHI   string             `bson:"title_hi" json:"title_hi"`
	SummaryEN string             `bson:"summary_en" json:"summary_en"`
	SummaryHI string             `bson:"summary_hi" json:"summary_hi"`
	ContentEN string             `bson:"content_en" json:"content_en"`
	ContentHI string             `bson:"content_hi" json:"content_hi"`

	URLHeadline   string   `bson:"url_headline" json:"urlHeadline"`
	ShortHeadline string   `bson:"short_headline" json:"shortHeadline"`
	LongHeadline  string   `bson:"long_headline" json:"longHeadline"`
	Kicker        string   `bson:"kicker" json:"kicker"`
	Keywords      []string `bson:"keywords" json:"keywords"`

	Category    string `bson:"category" json:"category"`
	Subcategory string `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	District    string `bson:"district,omitempty" json:"district,omitempty"`

	Slug string `bson:"slug" json:"slug"`

	FeaturedImage    string         `bson:"featured_image" json:"featuredImage"`
	ThumbnailCaption string         `bson:"thumbnail_caption" json:"thumbnailCaption"`
	Gallery          []GalleryImage `bson:"gallery_images" json:"galleryImages"`

	Author    string `bson:"author" json:"author"`
	SourceURL string `bson:"source_url,omitempty" json:"sourceUrl,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ArticleUpdate carries a partial field set for update-by-id. Nil pointers
// mean "leave unchanged", mirroring the PUT contract where absent JSON keys
// must not clobber stored values.
type ArticleUpdate struct {
	TitleEN   *string `json:"title_en"`
	TitleHI   *string `json:"title_hi"`
	SummaryEN *string `json:"summary_en"`
	SummaryHI *string `json:"summary_hi"`
	ContentEN *string `json:"content_en"`
	ContentHI *string `json:"content_hi"`

	URLHeadline   *string   `json:"urlHeadline"`
	ShortHeadline *string   `json:"shortHeadline"`
	LongHeadline  *string   `json:"longHeadline"`
	Kicker        *string   `json:"kicker"`
	Keywords      *[]string `json:"keywords"`

	Category    *string `json:"category"`
	Subcategory *string `json:"subcategory"`
	District    *string `json:"district"`

	Slug *string `json:"-"`

	FeaturedImage    *string         `json:"featuredImage"`
	ThumbnailCaption *string         `json:"thumbnailCaption"`
	Gallery          *[]GalleryImage `json:"galleryImages"`

	Author    *string `json:"author"`
	SourceURL *string `json:"sourceUrl"`
}

// StoryPage is one slide of a web story.
type StoryPage struct {
	Image   string `bson:"image" json:"image"`
	Heading string `bson:"heading,omitempty" json:"heading,omitempty"`
	Text    string `bson:"text,omitempty" json:"text,omitempty"`
}

// WebStory is a swipeable visual story with a portrait cover and ordered
// slides.
type WebStory struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Slug        string             `bson:"slug" json:"slug"`
	CoverImage  string             `bson:"cover_image" json:"coverImage"`
	Pages       []StoryPage        `bson:"pages" json:"pages"`
	PublishedAt time.Time          `bson:"published_at" json:"publishedAt"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Candidate is a transient item fetched from the external news source. It
// lives only for the duration of one ingestion pass.
type Candidate struct {
	Title       string
	Description string
	Image       string
	SourceName  string
	SourceURL   string
	PublishedAt time.Time
}

// Clock abstracts time.Now so stores and the pipeline are testable with a
// fixed time.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock with the real time in UTC.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ArticleStore is the persistence contract for articles. Slug uniqueness is
// enforced by the underlying store; Insert returns ErrDuplicateSlug when it
// is violated.
type ArticleStore interface {
	Insert(ctx context.Context, a Article) (Article, error)
	Update(ctx context.Context, id string, upd ArticleUpdate) (Article, error)
	Delete(ctx context.Context, id string) error
	ByID(ctx context.Context, id string) (Article, error)
	BySlug(ctx context.Context, slug string) (Article, error)
	// SlugExists reports whether any article other than excludeID holds the
	// slug. Pass an empty excludeID for plain existence checks.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Find(ctx context.Context, f Filter) ([]Article, error)
	Count(ctx context.Context) (int64, error)
}

// StoryStore is the persistence contract for web stories.
type StoryStore interface {
	Insert(ctx context.Context, s WebStory) (WebStory, error)
	Update(ctx context.Context, id string, s WebStory) (WebStory, error)
	Delete(ctx context.Context, id string) error
	BySlug(ctx context.Context, slug string) (WebStory, error)
	Recent(ctx context.Context, limit int) ([]WebStory, error)
	All(ctx context.Context) ([]WebStory, error)
}

// Source fetches ingestion candidates for one external topic.
type Source interface {
	TopHeadlines(ctx context.Context, topic string) ([]Candidate, error)
}
