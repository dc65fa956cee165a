// internal/domain/cart/memory_store.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps carts in process memory. Used by tests and local
// development without Redis.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string][]byte
}

// NewMemoryStore creates an in-memory cart store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, ref OwnerRef) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.carts[s.key(ref)]
	if !ok {
		now := time.Now().UTC()
		return &Cart{
			SessionID:  ref.SessionID,
			CustomerID: ref.CustomerID,
			Lines:      []Line{},
			CreatedAt:  now,
			UpdatedAt:  now,
		}, nil
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MemoryStore) Save(_ context.Context, ref OwnerRef, c *Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[s.key(ref)] = data
	return nil
}

func (s *MemoryStore) Drop(_ context.Context, ref OwnerRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, s.key(ref))
	return nil
}

func (s *MemoryStore) key(ref OwnerRef) string {
	if ref.CustomerID != nil {
		return fmt.Sprintf("customer:%d", *ref.CustomerID)
	}
	return fmt.Sprintf("session:%s", ref.SessionID)
}
