package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/newschakra/newsdesk/internal/news"
	"github.com/newschakra/newsdesk/internal/slug"
)

type storyRequest struct {
	Title      string           `json:"title"`
	Slug       string           `json:"slug"`
	CoverImage string           `json:"cover_image"`
	Pages      []news.StoryPage `json:"pages"`
}

func (s *Server) recentStories(w http.ResponseWriter, r *http.Request) {
	stories, err := s.deps.Stories.Recent(r.Context(), news.RecentStories)
	if err != nil {
		s.logger.Error("recent stories query failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not fetch stories")
		return
	}
	if stories == nil {
		stories = []news.WebStory{}
	}
	s.writeJSON(w, http.StatusOK, stories)
}

func (s *Server) storyBySlug(w http.ResponseWriter, r *http.Request) {
	story, err := s.deps.Stories.BySlug(r.Context(), pathParam(r, "slug"))
	if err != nil {
		if errors.Is(err, news.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "story not found")
			return
		}
		s.logger.Error("story lookup failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not fetch story")
		return
	}
	s.writeJSON(w, http.StatusOK, story)
}

func (s *Server) allStories(w http.ResponseWriter, r *http.Request) {
	stories, err := s.deps.Stories.All(r.Context())
	if err != nil {
		s.logger.Error("stories query failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not fetch stories")
		return
	}
	if stories == nil {
		stories = []news.WebStory{}
	}
	s.writeJSON(w, http.StatusOK, stories)
}

func (s *Server) createStory(w http.ResponseWriter, r *http.Request) {
	var req storyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.CoverImage) == "" {
		s.writeError(w, http.StatusBadRequest, "title and cover image are required")
		return
	}
	if strings.TrimSpace(req.Slug) == "" {
		req.Slug = slug.Make(req.Title)
	}

	story := news.WebStory{
		Title:      req.Title,
		Slug:       req.Slug,
		CoverImage: req.CoverImage,
		Pages:      req.Pages,
	}
	created, err := s.deps.Stories.Insert(r.Context(), story)
	if err != nil {
		if errors.Is(err, news.ErrDuplicateSlug) {
			s.writeError(w, http.StatusBadRequest, "a story with this slug already exists, change the URL")
			return
		}
		s.logger.Error("story insert failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not create story")
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) updateStory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req storyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	story, err := s.deps.Stories.Update(r.Context(), id, news.WebStory{
		Title:      req.Title,
		Slug:       req.Slug,
		CoverImage: req.CoverImage,
		Pages:      req.Pages,
	})
	if err != nil {
		switch {
		case errors.Is(err, news.ErrNotFound):
			s.writeError(w, http.StatusNotFound, "story not found")
		case errors.Is(err, news.ErrDuplicateSlug):
			s.writeError(w, http.StatusBadRequest, "a story with this slug already exists, change the URL")
		default:
			s.logger.Error("story update failed", zap.Error(err))
			s.writeError(w, http.StatusInternalServerError, "could not update story")
		}
		return
	}
	s.writeJSON(w, http.StatusOK, story)
}

func (s *Server) deleteStory(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Stories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, news.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "story not found")
			return
		}
		s.logger.Error("story delete failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not delete story")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "story deleted"})
}
