package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/newschakra/newsdesk/internal/analytics"
	"github.com/newschakra/newsdesk/internal/config"
	"github.com/newschakra/newsdesk/internal/ingest"
	"github.com/newschakra/newsdesk/internal/news"
	"github.com/newschakra/newsdesk/internal/publisher"
	"github.com/newschakra/newsdesk/internal/storage"
	"github.com/newschakra/newsdesk/internal/store/memory"
)

type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fakeVisitStore struct {
	mu      sync.Mutex
	visits  map[int64]analytics.Visit
	nextID  int64
	statsAt time.Time
}

func newFakeVisitStore() *fakeVisitStore {
	return &fakeVisitStore{visits: make(map[int64]analytics.Visit), nextID: 1}
}

func (f *fakeVisitStore) RecentVisit(_ context.Context, visitorID, pageURL string, since time.Time) (analytics.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.visits {
		if v.VisitorID == visitorID && v.PageURL == pageURL && !v.VisitedAt.Before(since) {
			return v, nil
		}
	}
	return analytics.Visit{}, news.ErrNotFound
}

func (f *fakeVisitStore) InsertVisit(_ context.Context, v analytics.Visit) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v.ID = f.nextID
	f.nextID++
	f.visits[v.ID] = v
	return v.ID, nil
}

func (f *fakeVisitStore) TouchHeartbeat(_ context.Context, visitID int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.visits[visitID]
	if !ok {
		return news.ErrNotFound
	}
	v.LastHeartbeat = at
	f.visits[visitID] = v
	return nil
}

func (f *fakeVisitStore) Stats(_ context.Context, activeSince time.Time) (analytics.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsAt = activeSince
	return analytics.Stats{TotalVisits: int64(len(f.visits))}, nil
}

type testEnv struct {
	server   *Server
	articles *memory.ArticleStore
	stories  *memory.StoryStore
	visits   *fakeVisitStore
	clock    *tickingClock
}

func newTestEnv(t *testing.T, mutate func(*config.Config, *Deps)) *testEnv {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)

	clock := &tickingClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	articles := memory.NewArticleStore(clock)
	stories := memory.NewStoryStore(clock)
	visits := newFakeVisitStore()

	deps := Deps{
		Articles:  articles,
		Stories:   stories,
		Analytics: analytics.NewService(visits, cfg.Analytics, clock, zap.NewNop()),
		Uploads:   storage.NoOpProvider{},
		Clock:     clock,
	}
	if mutate != nil {
		mutate(&cfg, &deps)
	}

	return &testEnv{
		server:   NewServer(deps, cfg, zap.NewNop()),
		articles: articles,
		stories:  stories,
		visits:   visits,
		clock:    clock,
	}
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeArticles(t *testing.T, rec *httptest.ResponseRecorder) []news.Article {
	t.Helper()
	var got []news.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	return got
}

func seedArticle(t *testing.T, e *testEnv, a news.Article) news.Article {
	t.Helper()
	inserted, err := e.articles.Insert(context.Background(), a)
	require.NoError(t, err)
	return inserted
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateArticleDerivesSlug(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/v1/articles", map[string]any{
		"title_en": "Monsoon Session Begins",
		"category": "National",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var got news.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "monsoon-session-begins", got.Slug)
	require.False(t, got.ID.IsZero())
}

func TestCreateArticlePrefersURLHeadline(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/v1/articles", map[string]any{
		"title_en":    "A Very Long Editorial Title",
		"urlHeadline": "Short URL Name",
		"category":    "National",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var got news.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "short-url-name", got.Slug)
}

func TestCreateArticleWithoutTitle(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/v1/articles", map[string]any{
		"summary_en": "No usable headline here.",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateArticleRequiresCategory(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/v1/articles", map[string]any{
		"title_en": "Headline Without Section",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/v1/articles", map[string]any{
		"title_en": "Headline Without Section",
		"category": "   ",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateArticleDisambiguatesCollidingSlug(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	first := e.do(t, http.MethodPost, "/v1/articles", map[string]any{"title_en": "Same Headline", "category": "National"})
	require.Equal(t, http.StatusCreated, first.Code)

	second := e.do(t, http.MethodPost, "/v1/articles", map[string]any{"title_en": "Same Headline", "category": "National"})
	require.Equal(t, http.StatusCreated, second.Code)

	var got news.Article
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &got))
	require.True(t, strings.HasPrefix(got.Slug, "same-headline-"), "got slug %q", got.Slug)
	require.NotEqual(t, "same-headline", got.Slug)
}

func TestUpdateArticleRegeneratesSlug(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	a := seedArticle(t, e, news.Article{TitleEN: "Old Headline", Slug: "old-headline"})

	rec := e.do(t, http.MethodPut, "/v1/articles/"+a.ID.Hex(), map[string]any{
		"title_en": "New Headline",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got news.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "New Headline", got.TitleEN)
	require.Equal(t, "new-headline", got.Slug)
}

func TestUpdateArticleRejectsSlugCollision(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	seedArticle(t, e, news.Article{TitleEN: "Taken", Slug: "taken"})
	a := seedArticle(t, e, news.Article{TitleEN: "Mine", Slug: "mine"})

	rec := e.do(t, http.MethodPut, "/v1/articles/"+a.ID.Hex(), map[string]any{
		"title_en": "Taken",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateArticleKeepingOwnSlug(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	a := seedArticle(t, e, news.Article{TitleEN: "Stable Headline", Slug: "stable-headline", SummaryEN: "old"})

	// Re-sending the same title must not trip the collision check on the
	// article itself.
	rec := e.do(t, http.MethodPut, "/v1/articles/"+a.ID.Hex(), map[string]any{
		"title_en":   "Stable Headline",
		"summary_en": "new",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var got news.Article
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "new", got.SummaryEN)
	require.Equal(t, "stable-headline", got.Slug)
}

func TestArticleLookups(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	a := seedArticle(t, e, news.Article{TitleEN: "Findable", Slug: "findable"})

	rec := e.do(t, http.MethodGet, "/v1/articles/slug/findable", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/v1/articles/id/"+a.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/v1/articles/slug/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(t, http.MethodGet, "/v1/articles/id/not-a-hex-id", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteArticle(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	a := seedArticle(t, e, news.Article{TitleEN: "Doomed", Slug: "doomed"})

	rec := e.do(t, http.MethodDelete, "/v1/articles/"+a.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodDelete, "/v1/articles/"+a.ID.Hex(), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryFeedMatchesBothLanguages(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	seedArticle(t, e, news.Article{TitleEN: "English national", Category: "National", Slug: "en-nat"})
	seedArticle(t, e, news.Article{TitleHI: "हिंदी राष्ट्रीय", Category: "राष्ट्रीय", Slug: "hi-nat"})
	seedArticle(t, e, news.Article{TitleEN: "Sports item", Category: "Sports", Slug: "sport"})

	rec := e.do(t, http.MethodGet, "/v1/articles/category/national", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeArticles(t, rec)
	require.Len(t, got, 2)
	// Newest first.
	require.Equal(t, "hi-nat", got[0].Slug)

	// The Hindi display name resolves to the same feed.
	rec = e.do(t, http.MethodGet, "/v1/articles/category/"+url.PathEscape("राष्ट्रीय"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeArticles(t, rec), 2)
}

func TestCategoryFeedWithNarrowers(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	seedArticle(t, e, news.Article{TitleEN: "Agra report", Category: "National", Subcategory: "Uttar Pradesh", District: "Agra", Slug: "agra"})
	seedArticle(t, e, news.Article{TitleEN: "Meerut report", Category: "National", Subcategory: "Uttar Pradesh", District: "Meerut", Slug: "meerut"})

	rec := e.do(t, http.MethodGet, "/v1/articles/category/national/uttar-pradesh/agra", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeArticles(t, rec)
	require.Len(t, got, 1)
	require.Equal(t, "agra", got[0].Slug)
}

func TestEmptyCategoryTriggersIngest(t *testing.T) {
	t.Parallel()

	src := &stubSource{candidates: []news.Candidate{{
		Title:       "Fetched on demand",
		Description: "Filled in by the background ingest.",
		Image:       "https://example.com/i.jpg",
		SourceURL:   "https://example.com/s",
		PublishedAt: time.Date(2026, 8, 30, 7, 0, 0, 0, time.UTC),
	}}}

	var trigger *ingest.Trigger
	e := newTestEnv(t, func(cfg *config.Config, deps *Deps) {
		pipeline := ingest.NewPipeline(src, deps.Articles, publisher.NoOpProvider{}, deps.Clock, zap.NewNop())
		trigger = ingest.NewTrigger(pipeline, 4, time.Second, zap.NewNop())
		deps.Trigger = trigger
		deps.SourceEnabled = true
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go trigger.Run(ctx)

	rec := e.do(t, http.MethodGet, "/v1/articles/category/sports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decodeArticles(t, rec), "the empty feed returns immediately")

	require.Eventually(t, func() bool {
		n, err := e.articles.Count(context.Background())
		return err == nil && n == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEmptyCategoryWithNarrowersDoesNotTrigger(t *testing.T) {
	t.Parallel()

	src := &stubSource{}
	var trigger *ingest.Trigger
	e := newTestEnv(t, func(cfg *config.Config, deps *Deps) {
		pipeline := ingest.NewPipeline(src, deps.Articles, publisher.NoOpProvider{}, deps.Clock, zap.NewNop())
		trigger = ingest.NewTrigger(pipeline, 4, time.Second, zap.NewNop())
		deps.Trigger = trigger
		deps.SourceEnabled = true
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go trigger.Run(ctx)

	rec := e.do(t, http.MethodGet, "/v1/articles/category/sports/uttar-pradesh", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	time.Sleep(50 * time.Millisecond)
	require.Zero(t, src.callCount())
}

func TestRelatedArticles(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	seedArticle(t, e, news.Article{TitleEN: "Current story", Category: "Sports", Slug: "current"})
	seedArticle(t, e, news.Article{TitleEN: "Other one", Category: "Sports", Slug: "other-1"})
	seedArticle(t, e, news.Article{TitleEN: "Other two", Category: "Sports", Slug: "other-2"})

	rec := e.do(t, http.MethodGet, "/v1/articles/related?category=sports&slug=current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeArticles(t, rec)
	require.Len(t, got, 2)
	for _, a := range got {
		require.NotEqual(t, "current", a.Slug)
	}

	rec = e.do(t, http.MethodGet, "/v1/articles/related?slug=current", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTopNewsCap(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	for i := 0; i < 7; i++ {
		seedArticle(t, e, news.Article{TitleEN: fmt.Sprintf("Story %d", i), Slug: fmt.Sprintf("story-%d", i)})
	}

	rec := e.do(t, http.MethodGet, "/v1/articles/top-news", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeArticles(t, rec)
	require.Len(t, got, news.TopNewsLimit)
	// Newest first.
	require.Equal(t, "story-6", got[0].Slug)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	seedArticle(t, e, news.Article{TitleEN: "Quiet title", ContentHI: "नोएडा मेट्रो विस्तार", Slug: "hi-content"})
	seedArticle(t, e, news.Article{TitleEN: "Unrelated", Slug: "unrelated"})

	rec := e.do(t, http.MethodGet, "/v1/articles/search?q="+url.QueryEscape("नोएडा"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeArticles(t, rec)
	require.Len(t, got, 1)
	require.Equal(t, "hi-content", got[0].Slug)

	rec = e.do(t, http.MethodGet, "/v1/articles/search", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIKeyGuardsWrites(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, func(cfg *config.Config, _ *Deps) {
		cfg.Auth.Enabled = true
		cfg.Auth.APIKey = "secret"
	})

	rec := e.do(t, http.MethodPost, "/v1/articles", map[string]any{"title_en": "Blocked"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/articles", strings.NewReader(`{"title_en":"Allowed","category":"National"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", "secret")
	okRec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(okRec, req)
	require.Equal(t, http.StatusCreated, okRec.Code)

	// Reads stay open.
	rec = e.do(t, http.MethodGet, "/v1/articles/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestStoriesLifecycle(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)

	rec := e.do(t, http.MethodPost, "/v1/stories", map[string]any{
		"title":       "Ten Monsoon Photos",
		"cover_image": "https://example.com/cover.jpg",
		"pages": []map[string]string{
			{"image": "https://example.com/1.jpg", "heading": "One"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var story news.WebStory
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &story))
	require.Equal(t, "ten-monsoon-photos", story.Slug)

	rec = e.do(t, http.MethodGet, "/v1/stories/ten-monsoon-photos", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/v1/stories/recent", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/v1/stories", map[string]any{
		"title":       "Different Title",
		"slug":        "ten-monsoon-photos",
		"cover_image": "https://example.com/c.jpg",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/v1/stories", map[string]any{"title": "No cover"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPut, "/v1/stories/"+story.ID.Hex(), map[string]any{
		"title":       "Ten Monsoon Photos, Updated",
		"slug":        "ten-monsoon-photos",
		"cover_image": "https://example.com/cover2.jpg",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodDelete, "/v1/stories/"+story.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/v1/stories/ten-monsoon-photos", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyticsTrackAndLeave(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)

	rec := e.do(t, http.MethodPost, "/v1/analytics/track", map[string]any{
		"visitorId": "v1",
		"pageUrl":   "/news/some-slug",
		"category":  "Sports",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var res analytics.TrackResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.True(t, res.IsNew)

	// Same page inside the session window refreshes, not duplicates.
	rec = e.do(t, http.MethodPost, "/v1/analytics/track", map[string]any{
		"visitorId": "v1",
		"pageUrl":   "/news/some-slug",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/v1/analytics/track", map[string]any{"visitorId": "v1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/v1/analytics/heartbeat", map[string]any{"visitId": res.VisitID})
	require.Equal(t, http.StatusOK, rec.Code)

	// The exit beacon always succeeds, even for unknown sessions.
	rec = e.do(t, http.MethodPost, "/v1/analytics/leave", map[string]any{"visitId": int64(99999)})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/v1/analytics/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHeartbeatUnknownVisitReturnsNotFound(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodPost, "/v1/analytics/heartbeat", map[string]any{"visitId": int64(424242)})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyticsRoutesAbsentWhenDisabled(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, func(_ *config.Config, deps *Deps) {
		deps.Analytics = nil
	})

	rec := e.do(t, http.MethodPost, "/v1/analytics/track", map[string]any{
		"visitorId": "v1",
		"pageUrl":   "/",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadImage(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "photo.png")
	require.NoError(t, err)
	// Minimal PNG header so content sniffing sees an image.
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n00000000"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/articles/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp["url"], "uploads/")
	require.Contains(t, resp["url"], ".png")
}

func TestUploadRejectsNonImage(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("just some plain text"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/articles/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubSource struct {
	mu         sync.Mutex
	candidates []news.Candidate
	calls      int
}

func (s *stubSource) TopHeadlines(_ context.Context, _ string) ([]news.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.candidates, nil
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
