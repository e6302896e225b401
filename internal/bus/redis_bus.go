package bus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisBus appends events to a Redis stream.
type RedisBus struct {
	client *redis.Client
	logger *slog.Logger
	stream string
}

func NewRedisBus(redisURL string, logger *slog.Logger) (*RedisBus, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisBus{client: client, logger: logger, stream: Stream}, nil
}

func (rb *RedisBus) Publish(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	res := rb.client.XAdd(ctx, &redis.XAddArgs{
		Stream: rb.stream,
		Values: e.fields(),
	})
	if err := res.Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Kind, err)
	}
	rb.logger.Debug("event published", "kind", e.Kind, "client_id", e.ClientID, "id", res.Val())
	return nil
}

func (rb *RedisBus) HealthCheck(ctx context.Context) error {
	return rb.client.Ping(ctx).Err()
}

func (rb *RedisBus) Close() error {
	return rb.client.Close()
}
