// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/your-org/storefront-gateway/internal/domain/cart"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	models := []interface{}{
		&cart.StoredLine{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	log.Println("Database migrations completed")
	return nil
}

// CreateIndexes creates indexes that AutoMigrate does not cover
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_lines_owner_variant ON cart_lines (customer_id, product_id, size, color)",
		"CREATE INDEX IF NOT EXISTS idx_cart_lines_added_at ON cart_lines (customer_id, added_at)",
	}

	for _, idx := range indexes {
		if err := m.db.Exec(idx).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
