// internal/domain/checkout/lock.go
package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker provides the single-flight guard around order submission: one
// checkout session may have at most one submission in flight.
type Locker interface {
	TryLock(ctx context.Context, sessionID string) (bool, error)
	Unlock(ctx context.Context, sessionID string) error
}

// RedisLocker implements the guard with SETNX and a safety TTL so a crashed
// submission cannot wedge the session forever.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker creates a Redis-backed submission locker.
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client, ttl: 30 * time.Second}
}

func (l *RedisLocker) TryLock(ctx context.Context, sessionID string) (bool, error) {
	return l.client.SetNX(ctx, l.key(sessionID), "1", l.ttl).Result()
}

func (l *RedisLocker) Unlock(ctx context.Context, sessionID string) error {
	return l.client.Del(ctx, l.key(sessionID)).Err()
}

func (l *RedisLocker) key(sessionID string) string {
	return fmt.Sprintf("checkout:submit:%s", sessionID)
}

// MemoryLocker is the in-process locker used by tests.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]bool
}

// NewMemoryLocker creates an in-memory submission locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]bool)}
}

func (l *MemoryLocker) TryLock(_ context.Context, sessionID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks[sessionID] {
		return false, nil
	}
	l.locks[sessionID] = true
	return true, nil
}

func (l *MemoryLocker) Unlock(_ context.Context, sessionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, sessionID)
	return nil
}
