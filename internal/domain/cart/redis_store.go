// internal/domain/cart/redis_store.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists guest carts as JSON blobs keyed by session id. Carts
// survive page reloads for the lifetime of the session cookie; writes are
// last-write-wins across tabs.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed cart store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, ref OwnerRef) (*Cart, error) {
	if ref.SessionID == "" {
		return nil, fmt.Errorf("session ID required for guest cart")
	}

	data, err := s.client.Get(ctx, s.key(ref)).Result()
	if err == redis.Nil {
		now := time.Now().UTC()
		return &Cart{
			SessionID: ref.SessionID,
			Lines:     []Line{},
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var c Cart
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("failed to decode stored cart: %w", err)
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, ref OwnerRef, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	return s.client.Set(ctx, s.key(ref), data, s.ttl).Err()
}

func (s *RedisStore) Drop(ctx context.Context, ref OwnerRef) error {
	return s.client.Del(ctx, s.key(ref)).Err()
}

func (s *RedisStore) key(ref OwnerRef) string {
	return fmt.Sprintf("cart:session:%s", ref.SessionID)
}
