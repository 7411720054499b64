package notify

import (
	"context"
	"encoding/json"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-postpress/pkg/interfaces"
)

// DefaultChannel is the pub/sub channel publish events are sent to.
const DefaultChannel = "postpress:published"

// RedisNotifier publishes every event as JSON on a Redis channel so other
// services can rebuild or deploy the site.
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
}

// NewRedisNotifier builds a notifier for rdb. A nil client turns Notify into a no-op.
func NewRedisNotifier(rdb *redis.Client, channel string) *RedisNotifier {
	if strings.TrimSpace(channel) == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{rdb: rdb, channel: channel}
}

// Channel returns the channel events are published to.
func (n *RedisNotifier) Channel() string {
	return n.channel
}

func (n *RedisNotifier) Notify(ctx context.Context, event interfaces.PublishEvent) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "encode publish event")
	}
	if err := n.rdb.Publish(ctx, n.channel, string(payload)).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryExternal, "publish event to "+n.channel).
			WithTextCode("NOTIFY_REDIS_FAILED")
	}
	return nil
}

// Close releases the underlying client.
func (n *RedisNotifier) Close() error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Close()
}
