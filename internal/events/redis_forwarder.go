package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis channel other services subscribe to.
const DefaultChannel = "maintenance.events"

// RedisForwarder republishes dispatched events on a Redis pub/sub channel.
type RedisForwarder struct {
	client  redis.UniversalClient
	channel string
}

// NewRedisForwarder builds a forwarder. An empty channel uses DefaultChannel.
func NewRedisForwarder(client redis.UniversalClient, channel string) *RedisForwarder {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisForwarder{client: client, channel: channel}
}

// Attach subscribes the forwarder to every event type.
func (f *RedisForwarder) Attach(d Dispatcher) {
	for _, t := range AllEventTypes {
		d.Subscribe(t, f.Forward)
	}
}

// Forward publishes one event as JSON.
func (f *RedisForwarder) Forward(ctx context.Context, event Event) error {
	if f == nil || f.client == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	if err := f.client.Publish(ctx, f.channel, body).Err(); err != nil {
		return fmt.Errorf("publish event %s: %w", event.ID, err)
	}
	return nil
}
