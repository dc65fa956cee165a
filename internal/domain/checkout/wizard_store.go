// internal/domain/checkout/wizard_store.go
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// WizardStore persists per-session wizard state between requests. Load
// returns ErrNoActiveCheckout when no wizard exists for the session.
type WizardStore interface {
	Load(ctx context.Context, sessionID string) (*Wizard, error)
	Save(ctx context.Context, w *Wizard) error
	Drop(ctx context.Context, sessionID string) error
}

// RedisWizardStore keeps wizard state as JSON under a session-scoped key.
type RedisWizardStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisWizardStore creates a Redis-backed wizard store.
func NewRedisWizardStore(client *redis.Client, ttl time.Duration) *RedisWizardStore {
	return &RedisWizardStore{client: client, ttl: ttl}
}

func (s *RedisWizardStore) Load(ctx context.Context, sessionID string) (*Wizard, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, ErrNoActiveCheckout
	} else if err != nil {
		return nil, fmt.Errorf("failed to load checkout state: %w", err)
	}

	var w Wizard
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		return nil, fmt.Errorf("failed to decode checkout state: %w", err)
	}
	return &w, nil
}

func (s *RedisWizardStore) Save(ctx context.Context, w *Wizard) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to encode checkout state: %w", err)
	}
	return s.client.Set(ctx, s.key(w.SessionID), data, s.ttl).Err()
}

func (s *RedisWizardStore) Drop(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

func (s *RedisWizardStore) key(sessionID string) string {
	return fmt.Sprintf("checkout:session:%s", sessionID)
}

// MemoryWizardStore keeps wizard state in process memory for tests.
type MemoryWizardStore struct {
	mu      sync.Mutex
	wizards map[string][]byte
}

// NewMemoryWizardStore creates an in-memory wizard store.
func NewMemoryWizardStore() *MemoryWizardStore {
	return &MemoryWizardStore{wizards: make(map[string][]byte)}
}

func (s *MemoryWizardStore) Load(_ context.Context, sessionID string) (*Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.wizards[sessionID]
	if !ok {
		return nil, ErrNoActiveCheckout
	}

	var w Wizard
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *MemoryWizardStore) Save(_ context.Context, w *Wizard) error {
	data, err := json.Marshal(w)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.wizards[w.SessionID] = data
	return nil
}

func (s *MemoryWizardStore) Drop(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wizards, sessionID)
	return nil
}
