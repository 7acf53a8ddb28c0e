package memory

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/newschakra/newsdesk/internal/news"
)

// StoryStore is a mutex-guarded map implementation of news.StoryStore.
type StoryStore struct {
	mu      sync.RWMutex
	stories map[string]news.WebStory
	clock   news.Clock
}

// NewStoryStore constructs an empty StoryStore.
func NewStoryStore(clock news.Clock) *StoryStore {
	if clock == nil {
		clock = news.SystemClock{}
	}
	return &StoryStore{
		stories: make(map[string]news.WebStory),
		clock:   clock,
	}
}

// Insert stores a new story, enforcing slug uniqueness.
func (s *StoryStore) Insert(_ context.Context, story news.WebStory) (news.WebStory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.stories {
		if existing.Slug == story.Slug {
			return news.WebStory{}, news.ErrDuplicateSlug
		}
	}
	now := s.clock.Now()
	if story.ID.IsZero() {
		story.ID = primitive.NewObjectID()
	}
	if story.PublishedAt.IsZero() {
		story.PublishedAt = now
	}
	story.CreatedAt = now
	story.UpdatedAt = now
	s.stories[story.ID.Hex()] = story
	return story, nil
}

// Update replaces the mutable fields of a story by id.
func (s *StoryStore) Update(_ context.Context, id string, story news.WebStory) (news.WebStory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.stories[id]
	if !ok {
		return news.WebStory{}, news.ErrNotFound
	}
	for otherID, other := range s.stories {
		if otherID != id && other.Slug == story.Slug {
			return news.WebStory{}, news.ErrDuplicateSlug
		}
	}
	existing.Title = story.Title
	existing.Slug = story.Slug
	existing.CoverImage = story.CoverImage
	existing.Pages = story.Pages
	existing.UpdatedAt = s.clock.Now()
	s.stories[id] = existing
	return existing, nil
}

// Delete removes a story by id.
func (s *StoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.stories[id]; !ok {
		return news.ErrNotFound
	}
	delete(s.stories, id)
	return nil
}

// BySlug fetches one story by slug.
func (s *StoryStore) BySlug(_ context.Context, slug string) (news.WebStory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, story := range s.stories {
		if story.Slug == slug {
			return story, nil
		}
	}
	return news.WebStory{}, news.ErrNotFound
}

// Recent returns the newest stories capped at limit.
func (s *StoryStore) Recent(ctx context.Context, limit int) ([]news.WebStory, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// All returns every story, newest first.
func (s *StoryStore) All(_ context.Context) ([]news.WebStory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stories := make([]news.WebStory, 0, len(s.stories))
	for _, story := range s.stories {
		stories = append(stories, story)
	}
	sort.Slice(stories, func(i, j int) bool {
		return stories[i].CreatedAt.After(stories[j].CreatedAt)
	})
	return stories, nil
}
