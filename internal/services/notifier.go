package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/draftdeck-backend/internal/platform/envutil"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
)

const notifierChannel = "draftdeck:events"

// RedisNotifier publishes draft lifecycle events over redis pub/sub so
// connected editor sessions can refresh. Publishing is fire-and-forget: a
// publish failure is logged, never propagated.
type RedisNotifier struct {
	rdb *redis.Client
	log *logger.Logger
}

func NewRedisNotifier(log *logger.Logger) *RedisNotifier {
	addr := envutil.Str("REDIS_ADDR", "localhost:6379")
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: envutil.Str("REDIS_PASSWORD", ""),
		DB:       envutil.Int("REDIS_DB", 0),
	})
	return &RedisNotifier{rdb: rdb, log: log.With("service", "RedisNotifier")}
}

type event struct {
	Event   string `json:"event"`
	At      string `json:"at"`
	Payload any    `json:"payload,omitempty"`
}

func (n *RedisNotifier) Publish(ctx context.Context, name string, payload any) {
	if n == nil || n.rdb == nil {
		return
	}
	raw, err := json.Marshal(event{
		Event:   name,
		At:      time.Now().UTC().Format(time.RFC3339),
		Payload: payload,
	})
	if err != nil {
		n.log.Warn("event marshal failed", "event", name, "error", err.Error())
		return
	}
	if err := n.rdb.Publish(ctx, notifierChannel, raw).Err(); err != nil {
		n.log.Warn("event publish failed", "event", name, "error", err.Error())
	}
}

func (n *RedisNotifier) Close() error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Close()
}
