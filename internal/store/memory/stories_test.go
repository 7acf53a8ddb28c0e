package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/newschakra/newsdesk/internal/news"
)

func TestStoryInsertAndSlugUniqueness(t *testing.T) {
	t.Parallel()

	s := NewStoryStore(newClock())
	story, err := s.Insert(context.Background(), news.WebStory{Title: "Photos", Slug: "photos"})
	require.NoError(t, err)
	require.False(t, story.ID.IsZero())
	require.False(t, story.PublishedAt.IsZero())

	_, err = s.Insert(context.Background(), news.WebStory{Title: "Other", Slug: "photos"})
	require.ErrorIs(t, err, news.ErrDuplicateSlug)
}

func TestStoryUpdateRejectsTakenSlug(t *testing.T) {
	t.Parallel()

	s := NewStoryStore(newClock())
	_, err := s.Insert(context.Background(), news.WebStory{Title: "First", Slug: "first"})
	require.NoError(t, err)
	second, err := s.Insert(context.Background(), news.WebStory{Title: "Second", Slug: "second"})
	require.NoError(t, err)

	_, err = s.Update(context.Background(), second.ID.Hex(), news.WebStory{Title: "Second", Slug: "first"})
	require.ErrorIs(t, err, news.ErrDuplicateSlug)

	got, err := s.Update(context.Background(), second.ID.Hex(), news.WebStory{Title: "Renamed", Slug: "second"})
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Title)
}

func TestStoryRecentIsNewestFirstAndCapped(t *testing.T) {
	t.Parallel()

	s := NewStoryStore(newClock())
	for i := 0; i < 12; i++ {
		_, err := s.Insert(context.Background(), news.WebStory{
			Title: fmt.Sprintf("Story %d", i),
			Slug:  fmt.Sprintf("story-%d", i),
		})
		require.NoError(t, err)
	}

	recent, err := s.Recent(context.Background(), news.RecentStories)
	require.NoError(t, err)
	require.Len(t, recent, news.RecentStories)
	require.Equal(t, "story-11", recent[0].Slug)

	all, err := s.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 12)
}
