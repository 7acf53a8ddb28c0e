// Package api exposes the HTTP interface for the newsdesk service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/newschakra/newsdesk/internal/analytics"
	"github.com/newschakra/newsdesk/internal/config"
	"github.com/newschakra/newsdesk/internal/ingest"
	"github.com/newschakra/newsdesk/internal/metrics"
	"github.com/newschakra/newsdesk/internal/news"
	"github.com/newschakra/newsdesk/internal/storage"
)

// Deps bundles the collaborators the handlers need.
type Deps struct {
	Articles news.ArticleStore
	Stories  news.StoryStore
	// Analytics may be nil; its routes are only mounted when tracking is
	// configured.
	Analytics *analytics.Service
	// Trigger may be nil; empty category browses then skip the background
	// ingest.
	Trigger *ingest.Trigger
	Uploads storage.Provider
	// SourceEnabled mirrors whether an external news credential is
	// configured. Without it the browse-triggered ingest path stays off.
	SourceEnabled bool
	Clock         news.Clock
}

// Server wires HTTP handlers to the stores and the ingestion trigger.
type Server struct {
	router chi.Router
	deps   Deps
	cfg    config.Config
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(deps Deps, cfg config.Config, logger *zap.Logger) *Server {
	if deps.Clock == nil {
		deps.Clock = news.SystemClock{}
	}
	s := &Server{
		deps:   deps,
		cfg:    cfg,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(time.Duration(cfg.Server.TimeoutSeconds) * time.Second))
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Route("/articles", func(r chi.Router) {
			r.Get("/", s.listArticles)
			r.Get("/top-news", s.topNews)
			r.Get("/related", s.relatedArticles)
			r.Get("/search", s.searchArticles)
			r.Get("/slug/{slug}", s.articleBySlug)
			r.Get("/id/{id}", s.articleByID)
			r.Get("/category/{category}", s.articlesByCategory)
			r.Get("/category/{category}/{subcategory}", s.articlesByCategory)
			r.Get("/category/{category}/{subcategory}/{district}", s.articlesByCategory)

			r.Group(func(r chi.Router) {
				if cfg.Auth.Enabled {
					r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
				}
				r.Post("/", s.createArticle)
				r.Put("/{id}", s.updateArticle)
				r.Delete("/{id}", s.deleteArticle)
				r.Post("/upload", s.uploadImage)
			})
		})

		r.Route("/stories", func(r chi.Router) {
			r.Get("/recent", s.recentStories)
			r.Get("/{slug}", s.storyBySlug)

			r.Group(func(r chi.Router) {
				if cfg.Auth.Enabled {
					r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
				}
				r.Get("/admin/all", s.allStories)
				r.Post("/", s.createStory)
				r.Put("/{id}", s.updateStory)
				r.Delete("/{id}", s.deleteStory)
			})
		})

		if deps.Analytics != nil {
			r.Route("/analytics", func(r chi.Router) {
				r.Post("/track", s.trackVisit)
				r.Post("/heartbeat", s.heartbeat)
				r.Post("/leave", s.logExit)
				r.Get("/stats", s.analyticsStats)
			})
		}
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.deps.Articles.Count(r.Context()); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "article store unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		reqID, _ := r.Context().Value(requestIDKey{}).(string)
		s.logger.Info("request completed",
			zap.String("request_id", reqID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

func apiKeyMiddleware(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key != expected {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type requestIDKey struct{}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
