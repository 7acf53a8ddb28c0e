package ingest

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/newschakra/newsdesk/internal/metrics"
)

// Job is one queued ingestion request.
type Job struct {
	Category string
}

// Trigger is the fire-and-forget bridge between request handlers and the
// pipeline. Handlers enqueue without blocking and return to the client
// immediately; a single background worker drains the queue so triggered
// ingests never run concurrently with each other.
type Trigger struct {
	ch       chan Job
	pipeline *Pipeline
	timeout  time.Duration
	logger   *zap.Logger
}

// NewTrigger constructs a Trigger with a bounded queue.
func NewTrigger(p *Pipeline, depth int, timeout time.Duration, logger *zap.Logger) *Trigger {
	return &Trigger{
		ch:       make(chan Job, depth),
		pipeline: p,
		timeout:  timeout,
		logger:   logger,
	}
}

// TryEnqueue offers a job to the queue without waiting. A full queue drops
// the job and returns false; the next browse or scheduled sweep will cover
// the category anyway.
func (t *Trigger) TryEnqueue(cat string) bool {
	select {
	case t.ch <- Job{Category: cat}:
		metrics.SetQueueDepth(len(t.ch))
		return true
	default:
		t.logger.Warn("ingest queue full, dropping trigger", zap.String("category", cat))
		return false
	}
}

// Run blocks, consuming queued jobs until the context finishes. Job errors
// are logged and swallowed; partial ingestion progress is always
// acceptable and must never stop the worker.
func (t *Trigger) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-t.ch:
			metrics.SetQueueDepth(len(t.ch))
			t.process(ctx, job)
		}
	}
}

func (t *Trigger) process(ctx context.Context, job Job) {
	jobCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	if _, err := t.pipeline.Ingest(jobCtx, job.Category); err != nil {
		t.logger.Warn("triggered ingest failed",
			zap.String("category", job.Category),
			zap.Error(err),
		)
	}
}
