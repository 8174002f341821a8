package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultSeenPrefix = "memescan:seen:"

// SeenMarker метки "токен недавно анализировался" на SET NX с TTL.
type SeenMarker struct {
	client *redis.Client
	prefix string
}

func NewSeenMarker(client *redis.Client, prefix string) *SeenMarker {
	if prefix == "" {
		prefix = DefaultSeenPrefix
	}

	return &SeenMarker{client: client, prefix: prefix}
}

// MarkSeen true, если метки не было и она поставлена этим вызовом.
func (m *SeenMarker) MarkSeen(ctx context.Context, address string, ttl time.Duration) (bool, error) {
	ok, err := m.client.SetNX(ctx, m.prefix+address, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis.SetNX: %w", err)
	}

	return ok, nil
}

// Forget снимает метку, следующий цикл краулера проанализирует адрес заново.
func (m *SeenMarker) Forget(ctx context.Context, address string) error {
	if err := m.client.Del(ctx, m.prefix+address).Err(); err != nil {
		return fmt.Errorf("redis.Del: %w", err)
	}

	return nil
}
