package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
)

// PubSubProvider implements Provider on Google Cloud Pub/Sub. It
// authenticates via Application Default Credentials.
type PubSubProvider struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	logger *zap.Logger
}

// NewPubSubProvider creates a Pub/Sub client and verifies the topic exists,
// failing fast on startup if the configuration is wrong.
func NewPubSubProvider(ctx context.Context, projectID, topicID string, logger *zap.Logger) (*PubSubProvider, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("close pubsub client after topic check failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("check pubsub topic %q: %w", topicID, err)
	}
	if !exists {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("close pubsub client after topic check failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("pubsub topic %q does not exist in project %q", topicID, projectID)
	}

	return &PubSubProvider{client: client, topic: topic, logger: logger}, nil
}

// PublishIngested sends the event to the topic. The actual send is
// asynchronous; the client batches and retries in the background, and we
// do not block on the server acknowledgment.
func (p *PubSubProvider) PublishIngested(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal ingest event: %w", err)
	}
	p.topic.Publish(ctx, &pubsub.Message{Data: data})
	return nil
}

// Close flushes pending messages and closes the underlying client.
func (p *PubSubProvider) Close() error {
	p.topic.Stop()
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
