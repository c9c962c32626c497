package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"workbid-backend/internal/notification/domain"

	"cloud.google.com/go/pubsub"
)

// EventPublisher is the producer-side half of the feed: it pushes one
// change event onto the stream consumed by subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.ChangeEvent) error
}

// publisher implements EventPublisher on a Pub/Sub topic.
type publisher struct {
	topic *pubsub.Topic
}

// NewPublisher ensures topicName exists and returns a publisher for it.
func NewPublisher(ctx context.Context, client *pubsub.Client, topicName string) (EventPublisher, error) {
	topic, err := ensureTopic(ctx, client, topicName)
	if err != nil {
		return nil, err
	}
	return &publisher{topic: topic}, nil
}

func (p *publisher) Publish(ctx context.Context, ev domain.ChangeEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{Data: data})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("failed to publish change event: %w", err)
	}
	return nil
}
