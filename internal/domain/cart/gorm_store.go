// internal/domain/cart/gorm_store.go
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/your-org/storefront-gateway/internal/domain/pricing"
	"gorm.io/gorm"
)

// StoredLine is the database row for one cart line of a logged-in customer.
type StoredLine struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	CustomerID uint          `gorm:"not null;index" json:"customer_id"`
	ProductID  uint          `gorm:"not null;index" json:"product_id"`
	Size       string        `gorm:"size:50;not null;default:''" json:"size"`
	Color      string        `gorm:"size:50;not null;default:''" json:"color"`
	Name       string        `gorm:"size:255;not null" json:"name"`
	Slug       string        `gorm:"size:255" json:"slug"`
	Image      string        `gorm:"size:500" json:"image"`
	UnitPrice  pricing.Price `gorm:"type:numeric(14,2);not null" json:"unit_price"`
	Quantity   int           `gorm:"not null;default:1" json:"quantity"`
	AddedAt    time.Time     `json:"added_at"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// TableName overrides the table name
func (StoredLine) TableName() string {
	return "cart_lines"
}

// GormStore persists customer carts as rows in Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a database-backed cart store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, ref OwnerRef) (*Cart, error) {
	if ref.CustomerID == nil {
		return nil, fmt.Errorf("customer ID required for customer cart")
	}

	var rows []StoredLine
	err := s.db.WithContext(ctx).
		Where("customer_id = ?", *ref.CustomerID).
		Order("added_at").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load customer cart: %w", err)
	}

	c := &Cart{
		CustomerID: ref.CustomerID,
		SessionID:  ref.SessionID,
		Lines:      make([]Line, len(rows)),
	}
	for i, row := range rows {
		c.Lines[i] = Line{
			ProductID: row.ProductID,
			Name:      row.Name,
			Slug:      row.Slug,
			Image:     row.Image,
			UnitPrice: row.UnitPrice,
			Size:      row.Size,
			Color:     row.Color,
			Quantity:  row.Quantity,
			AddedAt:   row.AddedAt,
		}
	}

	if len(rows) > 0 {
		c.CreatedAt = rows[0].CreatedAt
		c.UpdatedAt = rows[0].UpdatedAt
	} else {
		now := time.Now().UTC()
		c.CreatedAt = now
		c.UpdatedAt = now
	}

	return c, nil
}

// Save replaces the customer's stored lines with the cart's current lines in
// one transaction.
func (s *GormStore) Save(ctx context.Context, ref OwnerRef, c *Cart) error {
	if ref.CustomerID == nil {
		return fmt.Errorf("customer ID required for customer cart")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", *ref.CustomerID).Delete(&StoredLine{}).Error; err != nil {
			return fmt.Errorf("failed to replace cart lines: %w", err)
		}

		for _, line := range c.Lines {
			row := StoredLine{
				CustomerID: *ref.CustomerID,
				ProductID:  line.ProductID,
				Size:       line.Size,
				Color:      line.Color,
				Name:       line.Name,
				Slug:       line.Slug,
				Image:      line.Image,
				UnitPrice:  line.UnitPrice,
				Quantity:   line.Quantity,
				AddedAt:    line.AddedAt,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to save cart line: %w", err)
			}
		}
		return nil
	})
}

func (s *GormStore) Drop(ctx context.Context, ref OwnerRef) error {
	if ref.CustomerID == nil {
		return fmt.Errorf("customer ID required for customer cart")
	}
	return s.db.WithContext(ctx).
		Where("customer_id = ?", *ref.CustomerID).
		Delete(&StoredLine{}).Error
}
