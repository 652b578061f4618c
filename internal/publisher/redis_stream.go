package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/birka/schema/internal/store"
	"github.com/redis/go-redis/v9"
)

// AnnotationStream is where annotation changes are appended
const AnnotationStream = "annotations.changes"

// RedisStreamPublisher publishes annotation changes to a Redis stream
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisStreamPublisher creates a new Redis stream publisher from an existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
		stream: AnnotationStream,
		maxLen: 1000,
	}
}

// PublishAnnotationChange appends the change to the stream
func (rsp *RedisStreamPublisher) PublishAnnotationChange(ctx context.Context, change store.Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return err
	}

	return rsp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: rsp.stream,
		MaxLen: rsp.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"kind":      change.Kind,
			"id":        change.ID,
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
