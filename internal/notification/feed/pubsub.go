package feed

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/sirupsen/logrus"
)

// pubsubSource adapts a Pub/Sub subscription to the LiveSource
// contract. Messages are acked after deliver returns; the broker
// redelivers on failure, which the dedup engine absorbs.
type pubsubSource struct {
	sub *pubsub.Subscription
}

// NewPubsubSource ensures the subscription for topicName exists and
// returns it as a LiveSource. The subscription follows the
// "<topic>-sub" naming convention.
func NewPubsubSource(ctx context.Context, client *pubsub.Client, topicName string) (LiveSource, error) {
	subName := topicName + "-sub"

	sub := client.Subscription(subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check subscription %s: %w", subName, err)
	}
	if !exists {
		topic, err := ensureTopic(ctx, client, topicName)
		if err != nil {
			return nil, err
		}
		sub, err = client.CreateSubscription(ctx, subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create subscription %s: %w", subName, err)
		}
		logrus.WithField("subscription", subName).Info("[Feed] created subscription")
	}

	return &pubsubSource{sub: sub}, nil
}

func (p *pubsubSource) Receive(ctx context.Context, deliver func(ctx context.Context, data []byte)) error {
	return p.sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		deliver(ctx, msg.Data)
		msg.Ack()
	})
}

func ensureTopic(ctx context.Context, client *pubsub.Client, topicName string) (*pubsub.Topic, error) {
	topic := client.Topic(topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check topic %s: %w", topicName, err)
	}
	if !exists {
		topic, err = client.CreateTopic(ctx, topicName)
		if err != nil {
			return nil, fmt.Errorf("failed to create topic %s: %w", topicName, err)
		}
		logrus.WithField("topic", topicName).Info("[Feed] created topic")
	}
	return topic, nil
}
