// Package analytics tracks page visits and derives simple audience stats.
// Visits live in a relational store; the business windows (session length,
// active-user recency, exit rewind) come from configuration.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/newschakra/newsdesk/internal/config"
	"github.com/newschakra/newsdesk/internal/metrics"
	"github.com/newschakra/newsdesk/internal/news"
)

// Visit is one tracked page view session.
type Visit struct {
	ID            int64     `db:"id" json:"id"`
	VisitorID     string    `db:"visitor_id" json:"visitorId"`
	PageURL       string    `db:"page_url" json:"pageUrl"`
	Category      string    `db:"category" json:"category"`
	Device        string    `db:"device" json:"device"`
	IPAddress     string    `db:"ip_address" json:"ipAddress,omitempty"`
	VisitedAt     time.Time `db:"visited_at" json:"visitedAt"`
	LastHeartbeat time.Time `db:"last_heartbeat" json:"lastHeartbeat"`
}

// CategoryCount is one row of the top-categories ranking.
type CategoryCount struct {
	Category string `db:"category" json:"category"`
	Count    int64  `db:"count" json:"count"`
}

// Stats is the aggregate dashboard payload.
type Stats struct {
	TotalVisits    int64           `json:"totalVisits"`
	UniqueVisitors int64           `json:"uniqueVisitors"`
	ActiveUsers    int64           `json:"activeUsers"`
	TopCategories  []CategoryCount `json:"topCategories"`
	AvgTimeSeconds int64           `json:"avgTimeSeconds"`
}

// Store is the persistence contract for visit tracking.
type Store interface {
	// RecentVisit returns the newest visit by the visitor to the page
	// since the given time, or news.ErrNotFound.
	RecentVisit(ctx context.Context, visitorID, pageURL string, since time.Time) (Visit, error)
	InsertVisit(ctx context.Context, v Visit) (int64, error)
	TouchHeartbeat(ctx context.Context, visitID int64, at time.Time) error
	Stats(ctx context.Context, activeSince time.Time) (Stats, error)
}

// TrackResult tells the client which session its view landed in.
type TrackResult struct {
	VisitID int64 `json:"visitId"`
	IsNew   bool  `json:"isNew"`
}

// Service applies the session-window rules on top of a Store.
type Service struct {
	store  Store
	cfg    config.AnalyticsConfig
	clock  news.Clock
	logger *zap.Logger
}

// NewService constructs a Service.
func NewService(store Store, cfg config.AnalyticsConfig, clock news.Clock, logger *zap.Logger) *Service {
	if clock == nil {
		clock = news.SystemClock{}
	}
	return &Service{store: store, cfg: cfg, clock: clock, logger: logger}
}

// Track records a page view. A repeat view of the same page by the same
// visitor inside the session window refreshes the existing session's
// heartbeat instead of opening a new one.
func (s *Service) Track(ctx context.Context, v Visit) (TrackResult, error) {
	now := s.clock.Now()
	existing, err := s.store.RecentVisit(ctx, v.VisitorID, v.PageURL, now.Add(-s.cfg.SessionWindow()))
	if err == nil {
		if err := s.store.TouchHeartbeat(ctx, existing.ID, now); err != nil {
			return TrackResult{}, fmt.Errorf("refresh session heartbeat: %w", err)
		}
		metrics.ObserveVisit(false)
		return TrackResult{VisitID: existing.ID, IsNew: false}, nil
	}
	if !errors.Is(err, news.ErrNotFound) {
		return TrackResult{}, fmt.Errorf("look up recent visit: %w", err)
	}

	if v.Category == "" {
		v.Category = "Home"
	}
	if v.Device == "" {
		v.Device = "Desktop"
	}
	v.VisitedAt = now
	v.LastHeartbeat = now
	id, err := s.store.InsertVisit(ctx, v)
	if err != nil {
		return TrackResult{}, fmt.Errorf("insert visit: %w", err)
	}
	metrics.ObserveVisit(true)
	return TrackResult{VisitID: id, IsNew: true}, nil
}

// Heartbeat stamps the session with the current time so it stays in the
// active set.
func (s *Service) Heartbeat(ctx context.Context, visitID int64) error {
	if err := s.store.TouchHeartbeat(ctx, visitID, s.clock.Now()); err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// LogExit rewinds the session's heartbeat so the visitor drops out of the
// active set immediately. Best-effort: the exit beacon client cannot act on
// failures, so errors are logged and swallowed.
func (s *Service) LogExit(ctx context.Context, visitID int64) {
	past := s.clock.Now().Add(-s.cfg.ExitRewind())
	if err := s.store.TouchHeartbeat(ctx, visitID, past); err != nil {
		s.logger.Warn("log exit failed", zap.Int64("visit_id", visitID), zap.Error(err))
	}
}

// Stats returns the aggregate dashboard payload.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	stats, err := s.store.Stats(ctx, s.clock.Now().Add(-s.cfg.ActiveWindow()))
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate stats: %w", err)
	}
	return stats, nil
}
