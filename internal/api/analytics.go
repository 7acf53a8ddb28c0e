package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/newschakra/newsdesk/internal/analytics"
	"github.com/newschakra/newsdesk/internal/news"
)

type trackRequest struct {
	VisitorID string `json:"visitorId"`
	PageURL   string `json:"pageUrl"`
	Category  string `json:"category"`
	Device    string `json:"device"`
}

type visitIDRequest struct {
	VisitID int64 `json:"visitId"`
}

func (s *Server) trackVisit(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.VisitorID) == "" || strings.TrimSpace(req.PageURL) == "" {
		s.writeError(w, http.StatusBadRequest, "visitorId and pageUrl are required")
		return
	}

	res, err := s.deps.Analytics.Track(r.Context(), analytics.Visit{
		VisitorID: req.VisitorID,
		PageURL:   req.PageURL,
		Category:  req.Category,
		Device:    req.Device,
		IPAddress: clientIP(r),
	})
	if err != nil {
		s.logger.Error("track visit failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not track visit")
		return
	}

	status := http.StatusOK
	if res.IsNew {
		status = http.StatusCreated
	}
	s.writeJSON(w, status, res)
}

func (s *Server) heartbeat(w http.ResponseWriter, r *http.Request) {
	var req visitIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VisitID == 0 {
		s.writeError(w, http.StatusBadRequest, "visitId is required")
		return
	}
	if err := s.deps.Analytics.Heartbeat(r.Context(), req.VisitID); err != nil {
		if errors.Is(err, news.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "visit not found")
			return
		}
		s.logger.Error("heartbeat failed", zap.Int64("visit_id", req.VisitID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not record heartbeat")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// logExit always answers 200. Exit beacons fire while the page unloads, so
// the client can neither retry nor act on a failure.
func (s *Server) logExit(w http.ResponseWriter, r *http.Request) {
	var req visitIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.VisitID != 0 {
		s.deps.Analytics.LogExit(r.Context(), req.VisitID)
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "exit logged"})
}

func (s *Server) analyticsStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Analytics.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats query failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not fetch stats")
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
