// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/your-org/storefront-gateway/internal/domain/pricing"
)

// LineKey identifies a cart line. Two lines are the same iff product id,
// size and color are all equal; size and color may be empty ("no variant").
type LineKey struct {
	ProductID uint   `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// Line represents one product+variant entry in a cart. Name, slug, image and
// unit price are denormalized at add time; the unit price is a snapshot and
// is never re-fetched.
type Line struct {
	ProductID uint          `json:"product_id"`
	Name      string        `json:"name"`
	Slug      string        `json:"slug"`
	Image     string        `json:"image"`
	UnitPrice pricing.Price `json:"unit_price"`
	Size      string        `json:"size"`
	Color     string        `json:"color"`
	Quantity  int           `json:"quantity"`
	AddedAt   time.Time     `json:"added_at"`
}

// Key returns the identity triple of the line.
func (l Line) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

// LineTotal returns unit price times quantity.
func (l Line) LineTotal() pricing.Price {
	return l.UnitPrice.MulQuantity(l.Quantity)
}

// Cart holds the lines of one shopping cart.
type Cart struct {
	SessionID  string    `json:"session_id,omitempty"`
	CustomerID *uint     `json:"customer_id,omitempty"`
	Lines      []Line    `json:"lines"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Totals represents calculated cart totals.
type Totals struct {
	LineCount     int           `json:"line_count"`     // Number of distinct lines
	TotalQuantity int           `json:"total_quantity"` // Sum of all quantities
	Subtotal      pricing.Price `json:"subtotal"`
	ShippingFee   pricing.Price `json:"shipping_fee"` // No rate calculation, always 0
	TotalPrice    pricing.Price `json:"total_price"`
}

// Add merges the line into the cart. A line whose (product, size, color)
// triple already exists has its quantity incremented by the added quantity;
// otherwise the line is appended. The cart never holds two lines with the
// same triple.
func (c *Cart) Add(line Line) {
	for i := range c.Lines {
		if c.Lines[i].Key() == line.Key() {
			c.Lines[i].Quantity += line.Quantity
			c.Lines[i].UnitPrice = line.UnitPrice
			c.touch()
			return
		}
	}

	if line.AddedAt.IsZero() {
		line.AddedAt = time.Now().UTC()
	}
	c.Lines = append(c.Lines, line)
	c.touch()
}

// Remove deletes the matching line. Removing a triple that is not in the
// cart is a no-op, not an error.
func (c *Cart) Remove(key LineKey) {
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.touch()
			return
		}
	}
}

// SetQuantity sets the matching line's quantity to max(1, quantity);
// requests below one are clamped up rather than rejected. Unknown triples
// are a no-op.
func (c *Cart) SetQuantity(key LineKey, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			c.Lines[i].Quantity = quantity
			c.touch()
			return
		}
	}
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.Lines = nil
	c.touch()
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Find returns the line with the given key, or nil.
func (c *Cart) Find(key LineKey) *Line {
	for i := range c.Lines {
		if c.Lines[i].Key() == key {
			return &c.Lines[i]
		}
	}
	return nil
}

// TotalPrice returns the sum of unit price times quantity over all lines.
// The empty cart totals zero.
func (c *Cart) TotalPrice() pricing.Price {
	total := pricing.Zero()
	for _, line := range c.Lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// TotalQuantity returns the sum of all line quantities (the badge count).
func (c *Cart) TotalQuantity() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// CalculateTotals returns the totals block sent to the storefront.
func (c *Cart) CalculateTotals() Totals {
	subtotal := c.TotalPrice()
	return Totals{
		LineCount:     len(c.Lines),
		TotalQuantity: c.TotalQuantity(),
		Subtotal:      subtotal,
		ShippingFee:   pricing.Zero(),
		TotalPrice:    subtotal,
	}
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}
