// Package ingest pulls third-party headlines into the article store. It
// runs on-demand when a category browse comes up empty, and on a recurring
// schedule across every canonical category.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/newschakra/newsdesk/internal/category"
	"github.com/newschakra/newsdesk/internal/gnews"
	"github.com/newschakra/newsdesk/internal/metrics"
	"github.com/newschakra/newsdesk/internal/news"
	"github.com/newschakra/newsdesk/internal/publisher"
	"github.com/newschakra/newsdesk/internal/slug"
)

// Pipeline fetches, deduplicates and persists external news items. It keeps
// no state between runs; the article store's slug index is the only dedup
// record.
type Pipeline struct {
	source news.Source
	store  news.ArticleStore
	events publisher.Provider
	clock  news.Clock
	logger *zap.Logger
}

// NewPipeline constructs a Pipeline.
func NewPipeline(
	source news.Source,
	store news.ArticleStore,
	events publisher.Provider,
	clock news.Clock,
	logger *zap.Logger,
) *Pipeline {
	if clock == nil {
		clock = news.SystemClock{}
	}
	return &Pipeline{
		source: source,
		store:  store,
		events: events,
		clock:  clock,
		logger: logger,
	}
}

// Ingest runs one pass for a category and returns how many new articles
// were persisted. Categories without an external topic mapping return
// (0, nil): a deliberate skip, not a failure. Candidates are rejected
// silently when their slug already exists or they lack an image or
// description. Losing a slug race to a concurrent insert also counts as a
// skip, because the store's uniqueness index is the single backstop.
func (p *Pipeline) Ingest(ctx context.Context, cat string) (int, error) {
	topic, ok := gnews.TopicFor(strings.ToLower(cat))
	if !ok {
		metrics.ObserveIngest(cat, "skipped", 0)
		return 0, nil
	}

	candidates, err := p.source.TopHeadlines(ctx, topic)
	if err != nil {
		metrics.ObserveIngest(cat, "error", 0)
		return 0, fmt.Errorf("fetch headlines for %q: %w", cat, err)
	}

	persisted := 0
	for _, cand := range candidates {
		newSlug := slug.Make(cand.Title)
		if newSlug == "" {
			continue
		}
		exists, err := p.store.SlugExists(ctx, newSlug, "")
		if err != nil {
			metrics.ObserveIngest(cat, "error", persisted)
			return persisted, fmt.Errorf("check slug %q: %w", newSlug, err)
		}
		if exists || cand.Image == "" || cand.Description == "" {
			continue
		}

		if _, err := p.store.Insert(ctx, p.buildArticle(cand, cat, newSlug)); err != nil {
			if errors.Is(err, news.ErrDuplicateSlug) {
				// Raced with another insert; the index won.
				continue
			}
			metrics.ObserveIngest(cat, "error", persisted)
			return persisted, fmt.Errorf("persist %q: %w", newSlug, err)
		}
		persisted++
	}

	metrics.ObserveIngest(cat, "ok", persisted)
	if persisted > 0 {
		p.logger.Info("ingested new articles",
			zap.String("category", cat),
			zap.Int("count", persisted),
		)
		p.notify(ctx, cat, persisted)
	}
	return persisted, nil
}

// Sweep runs Ingest for every canonical category in definition order. Each
// category is fault-isolated: a fetch or persist failure is logged and the
// loop moves on. Sequential on purpose, to bound the external request rate.
func (p *Pipeline) Sweep(ctx context.Context) {
	p.logger.Info("starting scheduled ingestion sweep")
	total := 0
	for _, key := range category.Keys() {
		if ctx.Err() != nil {
			return
		}
		n, err := p.Ingest(ctx, key)
		total += n
		if err != nil {
			p.logger.Warn("category ingest failed",
				zap.String("category", key),
				zap.Error(err),
			)
		}
	}
	p.logger.Info("ingestion sweep complete", zap.Int("persisted", total))
}

func (p *Pipeline) buildArticle(cand news.Candidate, cat, newSlug string) news.Article {
	author := cand.SourceName
	if author == "" {
		author = news.DefaultAuthor
	}
	createdAt := cand.PublishedAt
	if createdAt.IsZero() {
		createdAt = p.clock.Now()
	}
	attribution := fmt.Sprintf(
		` <br><br><a href=%q target="_blank" rel="noopener noreferrer">Read full story...</a>`,
		cand.SourceURL,
	)
	return news.Article{
		TitleEN:       cand.Title,
		SummaryEN:     cand.Description,
		ContentEN:     cand.Description + attribution,
		URLHeadline:   newSlug,
		ShortHeadline: cand.Title,
		LongHeadline:  cand.Title,
		Slug:          newSlug,
		Category:      category.DisplayName(strings.ToLower(cat)),
		FeaturedImage: cand.Image,
		Author:        author,
		SourceURL:     cand.SourceURL,
		// Publish time, not ingestion time, so ingested items interleave
		// chronologically with authored ones.
		CreatedAt: createdAt,
		UpdatedAt: p.clock.Now(),
	}
}

func (p *Pipeline) notify(ctx context.Context, cat string, count int) {
	if p.events == nil {
		return
	}
	evt := publisher.Event{Category: cat, Count: count, At: p.clock.Now()}
	if err := p.events.PublishIngested(ctx, evt); err != nil {
		p.logger.Warn("publish ingest event failed", zap.Error(err))
	}
}
