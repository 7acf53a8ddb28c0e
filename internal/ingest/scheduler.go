package ingest

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the full-category sweep on a cron schedule, independent of
// request traffic.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler registers the sweep on the given cron expression.
func NewScheduler(p *Pipeline, schedule string, logger *zap.Logger) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		// The sweep is fault-isolated per category; per-fetch timeouts
		// bound its total runtime.
		p.Sweep(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("register sweep schedule %q: %w", schedule, err)
	}
	return &Scheduler{cron: c, logger: logger}, nil
}

// Start begins scheduling in its own goroutine.
func (s *Scheduler) Start() {
	s.logger.Info("ingestion scheduler started")
	s.cron.Start()
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("ingestion scheduler stopped")
}
