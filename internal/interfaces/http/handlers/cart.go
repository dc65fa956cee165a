// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-gateway/internal/domain/cart"
	"github.com/your-org/storefront-gateway/internal/domain/pricing"
	"github.com/your-org/storefront-gateway/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	ref := middleware.OwnerRef(c)

	cartData, err := h.cartService.Get(c.Request.Context(), ref)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    cartView(cartData),
	})
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	ref := middleware.OwnerRef(c)

	var req cart.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	unitPrice, err := pricing.Parse(req.UnitPrice)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid unit price",
		})
		return
	}

	cartData, err := h.cartService.AddLine(c.Request.Context(), ref, cart.Line{
		ProductID: req.ProductID,
		Name:      req.Name,
		Slug:      req.Slug,
		Image:     req.Image,
		UnitPrice: unitPrice,
		Size:      req.Size,
		Color:     req.Color,
		Quantity:  req.Quantity,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    cartView(cartData),
	})
}

// UpdateItem handles PUT /cart/items
func (h *CartHandler) UpdateItem(c *gin.Context) {
	ref := middleware.OwnerRef(c)

	var req cart.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	key := cart.LineKey{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
	cartData, err := h.cartService.UpdateQuantity(c.Request.Context(), ref, key, req.Quantity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to update cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated successfully",
		"data":    cartView(cartData),
	})
}

// RemoveItem handles DELETE /cart/items
func (h *CartHandler) RemoveItem(c *gin.Context) {
	ref := middleware.OwnerRef(c)

	var req cart.RemoveLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	key := cart.LineKey{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
	cartData, err := h.cartService.RemoveLine(c.Request.Context(), ref, key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to remove item",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed successfully",
		"data":    cartView(cartData),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	ref := middleware.OwnerRef(c)

	if err := h.cartService.Clear(c.Request.Context(), ref); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to clear cart",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// GetCount handles GET /cart/count, the badge number in the storefront
// header.
func (h *CartHandler) GetCount(c *gin.Context) {
	ref := middleware.OwnerRef(c)

	count, err := h.cartService.TotalQuantity(c.Request.Context(), ref)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to count cart items",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"count": count},
	})
}

func cartView(c *cart.Cart) gin.H {
	totals := c.CalculateTotals()
	return gin.H{
		"items":  c.Lines,
		"totals": totals,
	}
}
