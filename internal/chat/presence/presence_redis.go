package presence

import (
	"context"
	"fmt"

	platformredis "chirp/internal/platform/redis"
)

const onlineSetKey = "chirp:online"

// RedisTracker stores the online set in Redis so presence is shared
// across server instances.
type RedisTracker struct {
	client *platformredis.Client
}

func NewRedisTracker(client *platformredis.Client) *RedisTracker {
	return &RedisTracker{client: client}
}

func (t *RedisTracker) MarkOnline(ctx context.Context, userID string) error {
	if err := t.client.SAdd(ctx, onlineSetKey, userID).Err(); err != nil {
		return fmt.Errorf("mark online: %w", err)
	}
	return nil
}

func (t *RedisTracker) MarkOffline(ctx context.Context, userID string) error {
	if err := t.client.SRem(ctx, onlineSetKey, userID).Err(); err != nil {
		return fmt.Errorf("mark offline: %w", err)
	}
	return nil
}

func (t *RedisTracker) Online(ctx context.Context) ([]string, error) {
	ids, err := t.client.SMembers(ctx, onlineSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list online: %w", err)
	}
	return ids, nil
}
