package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/clinic/clinic/internal/platform/reporting"
)

const DefaultQueue = "clinic:reminders"

// OutboxMessage is the payload pushed onto the Redis list. A delivery worker
// outside this process pops and sends it.
type OutboxMessage struct {
	ID          string            `json:"id"`
	Channel     reporting.Channel `json:"channel"`
	Destination string            `json:"destination"`
	Message     string            `json:"message"`
	QueuedAt    time.Time         `json:"queued_at"`
}

// RedisOutbox queues messages on a Redis list with LPUSH; workers use BRPOP.
type RedisOutbox struct {
	client *redis.Client
	queue  string
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewRedisOutbox(client *redis.Client, queue string) *RedisOutbox {
	if queue == "" {
		queue = DefaultQueue
	}
	return &RedisOutbox{client: client, queue: queue}
}

func (o *RedisOutbox) Deliver(ctx context.Context, channel reporting.Channel, destination, message string) error {
	payload, err := json.Marshal(OutboxMessage{
		ID:          uuid.New().String(),
		Channel:     channel,
		Destination: destination,
		Message:     message,
		QueuedAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return o.client.LPush(ctx, o.queue, payload).Err()
}

// Len reports how many messages are waiting.
func (o *RedisOutbox) Len(ctx context.Context) (int64, error) {
	return o.client.LLen(ctx, o.queue).Result()
}
