// Package memory provides in-memory store implementations for development
// and testing. They honor the same Filter semantics as the Mongo stores.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/newschakra/newsdesk/internal/news"
)

// ArticleStore is a mutex-guarded map implementation of news.ArticleStore.
type ArticleStore struct {
	mu       sync.RWMutex
	articles map[string]news.Article
	clock    news.Clock
}

// NewArticleStore constructs an empty ArticleStore.
func NewArticleStore(clock news.Clock) *ArticleStore {
	if clock == nil {
		clock = news.SystemClock{}
	}
	return &ArticleStore{
		articles: make(map[string]news.Article),
		clock:    clock,
	}
}

// Insert stores a new article, enforcing slug uniqueness the way the Mongo
// index does.
func (s *ArticleStore) Insert(_ context.Context, a news.Article) (news.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.articles {
		if existing.Slug == a.Slug {
			return news.Article{}, news.ErrDuplicateSlug
		}
	}
	now := s.clock.Now()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	if a.Author == "" {
		a.Author = news.DefaultAuthor
	}
	s.articles[a.ID.Hex()] = a
	return a, nil
}

// Update applies a partial field set by id.
func (s *ArticleStore) Update(_ context.Context, id string, upd news.ArticleUpdate) (news.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[id]
	if !ok {
		return news.Article{}, news.ErrNotFound
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&a.TitleEN, upd.TitleEN)
	apply(&a.TitleHI, upd.TitleHI)
	apply(&a.SummaryEN, upd.SummaryEN)
	apply(&a.SummaryHI, upd.SummaryHI)
	apply(&a.ContentEN, upd.ContentEN)
	apply(&a.ContentHI, upd.ContentHI)
	apply(&a.URLHeadline, upd.URLHeadline)
	apply(&a.ShortHeadline, upd.ShortHeadline)
	apply(&a.LongHeadline, upd.LongHeadline)
	apply(&a.Kicker, upd.Kicker)
	apply(&a.Category, upd.Category)
	apply(&a.Subcategory, upd.Subcategory)
	apply(&a.District, upd.District)
	apply(&a.Slug, upd.Slug)
	apply(&a.FeaturedImage, upd.FeaturedImage)
	apply(&a.ThumbnailCaption, upd.ThumbnailCaption)
	apply(&a.Author, upd.Author)
	apply(&a.SourceURL, upd.SourceURL)
	if upd.Keywords != nil {
		a.Keywords = *upd.Keywords
	}
	if upd.Gallery != nil {
		a.Gallery = *upd.Gallery
	}
	a.UpdatedAt = s.clock.Now()

	s.articles[id] = a
	return a, nil
}

// Delete removes an article by id.
func (s *ArticleStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[id]; !ok {
		return news.ErrNotFound
	}
	delete(s.articles, id)
	return nil
}

// ByID fetches one article by id.
func (s *ArticleStore) ByID(_ context.Context, id string) (news.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.articles[id]
	if !ok {
		return news.Article{}, news.ErrNotFound
	}
	return a, nil
}

// BySlug fetches one article by slug.
func (s *ArticleStore) BySlug(_ context.Context, slug string) (news.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.articles {
		if a.Slug == slug {
			return a, nil
		}
	}
	return news.Article{}, news.ErrNotFound
}

// SlugExists reports whether any article other than excludeID holds the
// slug.
func (s *ArticleStore) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, a := range s.articles {
		if a.Slug == slug && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// Find filters, sorts newest-first and caps the stored articles.
func (s *ArticleStore) Find(_ context.Context, f news.Filter) ([]news.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []news.Article{}
	for _, a := range s.articles {
		if matches(a, f) {
			matched = append(matched, a)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

// Count returns the number of stored articles.
func (s *ArticleStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.articles)), nil
}

func matches(a news.Article, f news.Filter) bool {
	if len(f.CategoryAnyOf) > 0 {
		found := false
		for _, v := range f.CategoryAnyOf {
			if strings.EqualFold(a.Category, v) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Subcategory != "" && !strings.EqualFold(a.Subcategory, f.Subcategory) {
		return false
	}
	if f.District != "" && !strings.EqualFold(a.District, f.District) {
		return false
	}
	if f.ExcludeSlug != "" && a.Slug == f.ExcludeSlug {
		return false
	}
	switch f.Lang {
	case news.LangHI:
		if a.TitleHI == "" {
			return false
		}
	case news.LangEN:
		if a.TitleEN == "" {
			return false
		}
	}
	if f.Search != "" && !searchMatches(a, f.Search) {
		return false
	}
	return true
}

func searchMatches(a news.Article, query string) bool {
	needle := strings.ToLower(query)
	haystacks := []string{
		a.TitleEN, a.TitleHI,
		a.SummaryEN, a.SummaryHI,
		a.ContentEN, a.ContentHI,
		a.LongHeadline, a.ShortHeadline, a.Kicker,
	}
	haystacks = append(haystacks, a.Keywords...)
	for _, hay := range haystacks {
		if hay != "" && strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}
