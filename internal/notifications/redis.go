package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dropspace/dropspace/internal/domain"

	"github.com/redis/go-redis/v9"
)

// OwnerChannel is the deterministic per-owner pub/sub channel name.
func OwnerChannel(ownerID string) string {
	return fmt.Sprintf("owner:%s:events", ownerID)
}

// RedisEventPublisher delivers owner-scoped events over redis pub/sub.
// The channel subscription is confirmed before publishing so the event
// is not dropped, and torn down afterwards regardless of outcome. The
// confirmation wait is bounded by SubscribeTimeout; an unconfirmed
// subscription must not hang the upload request.
type RedisEventPublisher struct {
	client           *redis.Client
	subscribeTimeout time.Duration
}

type RedisEventPublisherDependencies struct {
	Client           *redis.Client
	SubscribeTimeout time.Duration
}

func NewRedisEventPublisher(deps RedisEventPublisherDependencies) domain.EventPublisher {
	timeout := deps.SubscribeTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &RedisEventPublisher{
		client:           deps.Client,
		subscribeTimeout: timeout,
	}
}

func (p *RedisEventPublisher) PublishBatchCompleted(ctx context.Context, ownerID string, event domain.BatchCompletedEvent) error {
	channel := OwnerChannel(ownerID)

	subCtx, cancel := context.WithTimeout(ctx, p.subscribeTimeout)
	defer cancel()

	sub := p.client.Subscribe(subCtx, channel)
	defer sub.Close()

	if _, err := sub.Receive(subCtx); err != nil {
		return fmt.Errorf("failed to confirm subscription on %s: %w", channel, err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish on %s: %w", channel, err)
	}

	return nil
}
