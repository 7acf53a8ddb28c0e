package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/newschakra/newsdesk/internal/analytics"
	"github.com/newschakra/newsdesk/internal/api"
	"github.com/newschakra/newsdesk/internal/config"
	"github.com/newschakra/newsdesk/internal/gnews"
	"github.com/newschakra/newsdesk/internal/ingest"
	"github.com/newschakra/newsdesk/internal/logging"
	"github.com/newschakra/newsdesk/internal/news"
	"github.com/newschakra/newsdesk/internal/publisher"
	"github.com/newschakra/newsdesk/internal/storage"
	storemongo "github.com/newschakra/newsdesk/internal/store/mongo"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "newsdesk: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting newsdesk",
		zap.String("site", cfg.Site.Name),
		zap.String("base_url", cfg.Site.BaseURL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := news.SystemClock{}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, db, err := storemongo.Connect(connectCtx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Warn("mongo disconnect failed", zap.Error(err))
		}
	}()

	articles, err := storemongo.NewArticleStore(connectCtx, db, clock)
	if err != nil {
		return fmt.Errorf("init article store: %w", err)
	}
	stories, err := storemongo.NewStoryStore(connectCtx, db, clock)
	if err != nil {
		return fmt.Errorf("init story store: %w", err)
	}

	var analyticsSvc *analytics.Service
	if cfg.Analytics.DSN != "" {
		visits, err := analytics.NewPostgresStore(connectCtx, cfg.Analytics.DSN)
		if err != nil {
			return fmt.Errorf("connect analytics store: %w", err)
		}
		defer visits.Close()
		analyticsSvc = analytics.NewService(visits, cfg.Analytics, clock, logger.Named("analytics"))
	} else {
		logger.Info("analytics disabled, no DSN configured")
	}

	events, err := newEvents(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init events: %w", err)
	}
	defer events.Close()

	uploads, err := newUploads(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("init uploads: %w", err)
	}

	source := gnews.New(cfg.GNews)
	pipeline := ingest.NewPipeline(source, articles, events, clock, logger.Named("ingest"))

	// The sweep always runs on schedule; without a credential its fetches
	// fail and are logged per category. Only the browse-triggered path is
	// gated on the credential.
	scheduler, err := ingest.NewScheduler(pipeline, cfg.Ingest.SweepSchedule, logger.Named("scheduler"))
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	var trigger *ingest.Trigger
	if source.Enabled() {
		trigger = ingest.NewTrigger(pipeline, cfg.Ingest.QueueDepth, cfg.GNews.Timeout()*2, logger.Named("trigger"))
		go trigger.Run(ctx)
	} else {
		logger.Info("news source credential not configured, browse-triggered ingest disabled")
	}

	server := api.NewServer(api.Deps{
		Articles:      articles,
		Stories:       stories,
		Analytics:     analyticsSvc,
		Trigger:       trigger,
		Uploads:       uploads,
		SourceEnabled: source.Enabled(),
		Clock:         clock,
	}, cfg, logger.Named("api"))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func newEvents(ctx context.Context, cfg config.Config, logger *zap.Logger) (publisher.Provider, error) {
	switch cfg.Events.Provider {
	case "pubsub":
		return publisher.NewPubSubProvider(ctx, cfg.Events.ProjectID, cfg.Events.TopicName, logger.Named("events"))
	default:
		return publisher.NoOpProvider{}, nil
	}
}

func newUploads(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Provider, error) {
	switch cfg.Storage.Provider {
	case "gcs":
		return storage.NewGCSProvider(ctx, cfg.Storage.GCSBucket, logger.Named("storage"))
	case "local":
		publicURL := cfg.Storage.PublicURL
		if publicURL == "" {
			publicURL = cfg.Site.BaseURL + "/" + cfg.Storage.LocalDir
		}
		return storage.NewLocalProvider(cfg.Storage.LocalDir, publicURL)
	default:
		return storage.NoOpProvider{}, nil
	}
}
