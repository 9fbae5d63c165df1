package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pixperk/handset/pkg/types"
	"github.com/redis/go-redis/v9"
)

// RedisSink publishes each event as JSON on "<prefix>:<kind>",
// so subscribers follow the book and return topics separately.
type RedisSink struct {
	client redis.Cmdable
	prefix string
}

func NewRedisSink(client redis.Cmdable, prefix string) *RedisSink {
	normalized := strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if normalized == "" {
		normalized = "handset"
	}
	return &RedisSink{
		client: client,
		prefix: normalized,
	}
}

func (s *RedisSink) Name() string { return "redis" }

// Channel returns the pub/sub channel for an event kind.
func (s *RedisSink) Channel(kind types.EventKind) string {
	return s.prefix + ":" + string(kind)
}

func (s *RedisSink) Notify(ctx context.Context, ev types.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("redis encode event: %w", err)
	}
	if err := s.client.Publish(ctx, s.Channel(ev.Kind), payload).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}
