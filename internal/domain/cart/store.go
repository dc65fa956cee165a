// internal/domain/cart/store.go
package cart

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-gateway/internal/config"
	"gorm.io/gorm"
)

// OwnerRef identifies who owns a cart: a logged-in customer (database
// backed) or an anonymous browser session (Redis backed).
type OwnerRef struct {
	CustomerID *uint
	SessionID  string
}

// Store is the persistence adapter behind the cart service. Load returns an
// empty cart when none is stored. Save is last-write-wins; concurrent tabs
// may overwrite each other, which is acceptable for a browser cart.
type Store interface {
	Load(ctx context.Context, ref OwnerRef) (*Cart, error)
	Save(ctx context.Context, ref OwnerRef, c *Cart) error
	Drop(ctx context.Context, ref OwnerRef) error
}

// Service handles cart business logic. Mutations follow a load-mutate-save
// cycle against the store matching the owner.
type Service struct {
	customers Store
	sessions  Store
}

// NewService creates a cart service with the production adapters: Postgres
// for customer carts, Redis for guest sessions.
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		customers: NewGormStore(db),
		sessions:  NewRedisStore(redisClient, cfg.Session.TTL),
	}
}

// NewServiceWithStores wires explicit adapters; used by tests.
func NewServiceWithStores(customers, sessions Store) *Service {
	return &Service{customers: customers, sessions: sessions}
}

// AddLineRequest represents an add-to-cart request.
type AddLineRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Slug      string `json:"slug"`
	Image     string `json:"image"`
	UnitPrice string `json:"unit_price" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// UpdateQuantityRequest represents a quantity change for one line.
type UpdateQuantityRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

// RemoveLineRequest identifies the line to delete.
type RemoveLineRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// Get retrieves the owner's cart, empty if nothing was stored yet.
func (s *Service) Get(ctx context.Context, ref OwnerRef) (*Cart, error) {
	return s.storeFor(ref).Load(ctx, ref)
}

// AddLine merges a line into the owner's cart and returns the updated cart.
// No stock bound is enforced here; stock checks are an advisory concern of
// the storefront screens.
func (s *Service) AddLine(ctx context.Context, ref OwnerRef, line Line) (*Cart, error) {
	if line.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	store := s.storeFor(ref)
	c, err := store.Load(ctx, ref)
	if err != nil {
		return nil, err
	}

	c.Add(line)
	if err := store.Save(ctx, ref, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateQuantity sets the quantity of one line, clamped to a minimum of 1.
func (s *Service) UpdateQuantity(ctx context.Context, ref OwnerRef, key LineKey, quantity int) (*Cart, error) {
	store := s.storeFor(ref)
	c, err := store.Load(ctx, ref)
	if err != nil {
		return nil, err
	}

	c.SetQuantity(key, quantity)
	if err := store.Save(ctx, ref, c); err != nil {
		return nil, err
	}
	return c, nil
}

// RemoveLine deletes one line from the owner's cart.
func (s *Service) RemoveLine(ctx context.Context, ref OwnerRef, key LineKey) (*Cart, error) {
	store := s.storeFor(ref)
	c, err := store.Load(ctx, ref)
	if err != nil {
		return nil, err
	}

	c.Remove(key)
	if err := store.Save(ctx, ref, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Clear empties the owner's cart. Called exactly once per order, as a side
// effect of a successful submission or payment-gateway return.
func (s *Service) Clear(ctx context.Context, ref OwnerRef) error {
	return s.storeFor(ref).Drop(ctx, ref)
}

// TotalQuantity returns the badge count for the owner's cart.
func (s *Service) TotalQuantity(ctx context.Context, ref OwnerRef) (int, error) {
	c, err := s.Get(ctx, ref)
	if err != nil {
		return 0, err
	}
	return c.TotalQuantity(), nil
}

func (s *Service) storeFor(ref OwnerRef) Store {
	if ref.CustomerID != nil {
		return s.customers
	}
	return s.sessions
}
