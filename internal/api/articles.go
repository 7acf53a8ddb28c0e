package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/newschakra/newsdesk/internal/category"
	"github.com/newschakra/newsdesk/internal/news"
	"github.com/newschakra/newsdesk/internal/slug"
)

type createArticleRequest struct {
	TitleEN          string              `json:"title_en"`
	TitleHI          string              `json:"title_hi"`
	SummaryEN        string              `json:"summary_en"`
	SummaryHI        string              `json:"summary_hi"`
	ContentEN        string              `json:"content_en"`
	ContentHI        string              `json:"content_hi"`
	URLHeadline      string              `json:"urlHeadline"`
	ShortHeadline    string              `json:"shortHeadline"`
	LongHeadline     string              `json:"longHeadline"`
	Kicker           string              `json:"kicker"`
	Keywords         []string            `json:"keywords"`
	Category         string              `json:"category"`
	Subcategory      string              `json:"subcategory"`
	District         string              `json:"district"`
	FeaturedImage    string              `json:"featured_image"`
	ThumbnailCaption string              `json:"thumbnail_caption"`
	Gallery          []news.GalleryImage `json:"gallery"`
	Author           string              `json:"author"`
	SourceURL        string              `json:"source_url"`
}

func (s *Server) createArticle(w http.ResponseWriter, r *http.Request) {
	var req createArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	base := firstNonEmpty(req.URLHeadline, req.LongHeadline, req.TitleEN, req.TitleHI)
	if strings.TrimSpace(base) == "" {
		s.writeError(w, http.StatusBadRequest, "at least one headline or title is required to build a slug")
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		s.writeError(w, http.StatusBadRequest, "category is required")
		return
	}

	articleSlug := slug.Make(base)
	exists, err := s.deps.Articles.SlugExists(r.Context(), articleSlug, "")
	if err != nil {
		s.logger.Error("slug lookup failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not create article")
		return
	}
	if exists {
		articleSlug = slug.Disambiguate(articleSlug, s.deps.Clock.Now())
	}

	article := news.Article{
		TitleEN:          req.TitleEN,
		TitleHI:          req.TitleHI,
		SummaryEN:        req.SummaryEN,
		SummaryHI:        req.SummaryHI,
		ContentEN:        req.ContentEN,
		ContentHI:        req.ContentHI,
		URLHeadline:      req.URLHeadline,
		ShortHeadline:    req.ShortHeadline,
		LongHeadline:     req.LongHeadline,
		Kicker:           req.Kicker,
		Keywords:         req.Keywords,
		Category:         req.Category,
		Subcategory:      req.Subcategory,
		District:         req.District,
		Slug:             articleSlug,
		FeaturedImage:    req.FeaturedImage,
		ThumbnailCaption: req.ThumbnailCaption,
		Gallery:          req.Gallery,
		Author:           req.Author,
		SourceURL:        req.SourceURL,
		CreatedAt:        s.deps.Clock.Now(),
		UpdatedAt:        s.deps.Clock.Now(),
	}

	created, err := s.deps.Articles.Insert(r.Context(), article)
	if errors.Is(err, news.ErrDuplicateSlug) {
		// Raced with another writer between the check and the insert.
		article.Slug = slug.Disambiguate(articleSlug, s.deps.Clock.Now())
		created, err = s.deps.Articles.Insert(r.Context(), article)
	}
	if err != nil {
		s.logger.Error("article insert failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not create article")
		return
	}

	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var upd news.ArticleUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if base := firstSet(upd.URLHeadline, upd.LongHeadline, upd.TitleEN, upd.TitleHI); base != "" {
		newSlug := slug.Make(base)
		exists, err := s.deps.Articles.SlugExists(r.Context(), newSlug, id)
		if err != nil {
			s.logger.Error("slug lookup failed", zap.Error(err))
			s.writeError(w, http.StatusInternalServerError, "could not update article")
			return
		}
		if exists {
			s.writeError(w, http.StatusBadRequest, "an article with this title already exists, choose a different title")
			return
		}
		upd.Slug = &newSlug
	}

	article, err := s.deps.Articles.Update(r.Context(), id, upd)
	if err != nil {
		switch {
		case errors.Is(err, news.ErrNotFound):
			s.writeError(w, http.StatusNotFound, "article not found")
		case errors.Is(err, news.ErrDuplicateSlug):
			s.writeError(w, http.StatusBadRequest, "an article with this title already exists, choose a different title")
		default:
			s.logger.Error("article update failed", zap.Error(err))
			s.writeError(w, http.StatusInternalServerError, "could not update article")
		}
		return
	}

	s.writeJSON(w, http.StatusOK, article)
}

func (s *Server) deleteArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.deps.Articles.Delete(r.Context(), id); err != nil {
		if errors.Is(err, news.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "article not found")
			return
		}
		s.logger.Error("article delete failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not delete article")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "article deleted"})
}

func (s *Server) listArticles(w http.ResponseWriter, r *http.Request) {
	f := news.Filter{Limit: news.ListLimit}
	// Unlike top-news and related, the plain list spans both languages
	// unless the caller narrows it.
	if lang := r.URL.Query().Get("lang"); lang != "" {
		f.Lang = news.LangFromQuery(lang)
	}
	articles, err := s.deps.Articles.Find(r.Context(), f)
	if err != nil {
		s.logger.Error("article list failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not list articles")
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(articles))
}

func (s *Server) articleBySlug(w http.ResponseWriter, r *http.Request) {
	article, err := s.deps.Articles.BySlug(r.Context(), pathParam(r, "slug"))
	if err != nil {
		if errors.Is(err, news.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "article not found")
			return
		}
		s.logger.Error("article lookup failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not fetch article")
		return
	}
	s.writeJSON(w, http.StatusOK, article)
}

func (s *Server) articleByID(w http.ResponseWriter, r *http.Request) {
	article, err := s.deps.Articles.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, news.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "article not found")
			return
		}
		s.logger.Error("article lookup failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not fetch article")
		return
	}
	s.writeJSON(w, http.StatusOK, article)
}

func (s *Server) articlesByCategory(w http.ResponseWriter, r *http.Request) {
	// Hindi category names arrive percent-encoded in the path.
	token := pathParam(r, "category")
	subcategory := pathParam(r, "subcategory")
	district := pathParam(r, "district")

	resolved := category.Resolve(token)
	articles, err := s.deps.Articles.Find(r.Context(), news.BuildFilter(resolved, subcategory, district))
	if err != nil {
		// Retry once with a filter rebuilt from the request inputs so a
		// transient store failure cannot surface a stale or widened query.
		s.logger.Warn("category query failed, retrying", zap.String("category", token), zap.Error(err))
		articles, err = s.deps.Articles.Find(r.Context(), news.BuildFilter(category.Resolve(token), subcategory, district))
		if err != nil {
			s.logger.Error("category query failed", zap.String("category", token), zap.Error(err))
			s.writeError(w, http.StatusInternalServerError, "could not fetch articles")
			return
		}
	}

	if len(articles) == 0 && subcategory == "" && district == "" && s.deps.SourceEnabled && s.deps.Trigger != nil {
		key := token
		if resolved.Canonical() {
			key = resolved.Key
		}
		s.deps.Trigger.TryEnqueue(key)
	}

	s.writeJSON(w, http.StatusOK, nonNil(articles))
}

func (s *Server) relatedArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	token := q.Get("category")
	if token == "" {
		s.writeError(w, http.StatusBadRequest, "category is required")
		return
	}

	limit := news.RelatedLimit
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	articles, err := s.deps.Articles.Find(r.Context(), news.Filter{
		CategoryAnyOf: category.Resolve(token).Variants,
		ExcludeSlug:   q.Get("slug"),
		Lang:          news.LangFromQuery(q.Get("lang")),
		Limit:         limit,
	})
	if err != nil {
		s.logger.Error("related query failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not fetch related articles")
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(articles))
}

func (s *Server) topNews(w http.ResponseWriter, r *http.Request) {
	articles, err := s.deps.Articles.Find(r.Context(), news.Filter{
		Lang:  news.LangFromQuery(r.URL.Query().Get("lang")),
		Limit: news.TopNewsLimit,
	})
	if err != nil {
		s.logger.Error("top news query failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not fetch top news")
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(articles))
}

func (s *Server) searchArticles(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		s.writeError(w, http.StatusBadRequest, "search query is required")
		return
	}

	articles, err := s.deps.Articles.Find(r.Context(), news.Filter{
		Search: q,
		Limit:  news.ListLimit,
	})
	if err != nil {
		// Search is best effort: a store failure degrades to no matches
		// rather than an error page.
		s.logger.Warn("search failed", zap.String("query", q), zap.Error(err))
		s.writeJSON(w, http.StatusOK, []news.Article{})
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(articles))
}

func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstSet(values ...*string) string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return *v
		}
	}
	return ""
}

func nonNil(articles []news.Article) []news.Article {
	if articles == nil {
		return []news.Article{}
	}
	return articles
}
