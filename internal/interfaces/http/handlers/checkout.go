// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/domain/cart"
	"github.com/your-org/storefront-gateway/internal/domain/checkout"
	"github.com/your-org/storefront-gateway/internal/domain/location"
	"github.com/your-org/storefront-gateway/internal/interfaces/http/middleware"
)

// CheckoutHandler handles the checkout wizard endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	places          location.Directory
	config          *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, places location.Directory, cfg *config.Config) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		places:          places,
		config:          cfg,
	}
}

type selectPlaceRequest struct {
	ID uint `json:"id" binding:"required"`
}

type choosePaymentRequest struct {
	Method string `json:"method" binding:"required"`
}

// Begin handles GET /checkout. An empty cart is redirected back to the cart
// page instead of entering the wizard.
func (h *CheckoutHandler) Begin(c *gin.Context) {
	state, err := h.checkoutService.Begin(c.Request.Context(), middleware.OwnerRef(c))
	if errors.Is(err, checkout.ErrEmptyCart) {
		c.Redirect(http.StatusSeeOther, h.config.Upstream.CartPageURL)
		return
	}
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": state})
}

// SubmitShipping handles PUT /checkout/shipping
func (h *CheckoutHandler) SubmitShipping(c *gin.Context) {
	var fields checkout.ShippingFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	state, err := h.checkoutService.SubmitShipping(c.Request.Context(), middleware.OwnerRef(c), fields)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": state})
}

// SelectProvince handles PUT /checkout/province
func (h *CheckoutHandler) SelectProvince(c *gin.Context) {
	h.selectPlace(c, h.checkoutService.SelectProvince)
}

// SelectDistrict handles PUT /checkout/district
func (h *CheckoutHandler) SelectDistrict(c *gin.Context) {
	h.selectPlace(c, h.checkoutService.SelectDistrict)
}

// SelectWard handles PUT /checkout/ward
func (h *CheckoutHandler) SelectWard(c *gin.Context) {
	h.selectPlace(c, h.checkoutService.SelectWard)
}

// ChoosePayment handles PUT /checkout/payment
func (h *CheckoutHandler) ChoosePayment(c *gin.Context) {
	var req choosePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	state, err := h.checkoutService.ChoosePayment(c.Request.Context(), middleware.OwnerRef(c), checkout.PaymentMethod(req.Method))
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": state})
}

// Back handles POST /checkout/back
func (h *CheckoutHandler) Back(c *gin.Context) {
	state, err := h.checkoutService.Back(c.Request.Context(), middleware.OwnerRef(c))
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": state})
}

// Submit handles POST /checkout/submit
func (h *CheckoutHandler) Submit(c *gin.Context) {
	result, err := h.checkoutService.Submit(c.Request.Context(), middleware.OwnerRef(c))
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order submitted successfully",
		"data":    result,
	})
}

// PaymentReturn handles GET /checkout/payment/return, the browser redirect
// back from the payment gateway.
func (h *CheckoutHandler) PaymentReturn(c *gin.Context) {
	code := c.Query("vnp_ResponseCode")

	cleared, err := h.checkoutService.ConfirmGatewayReturn(c.Request.Context(), middleware.OwnerRef(c), code)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"paid":          cleared,
			"response_code": code,
		},
	})
}

// GetProvinces handles GET /checkout/provinces
func (h *CheckoutHandler) GetProvinces(c *gin.Context) {
	provinces, err := h.places.Provinces(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": provinces})
}

// renderError maps checkout errors onto HTTP statuses. Business rejections
// surface the upstream message verbatim; connectivity failures hide the
// transport detail behind a generic message.
func (h *CheckoutHandler) renderError(c *gin.Context, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Validation failed",
			"fields": verr.Fields,
		})
		return
	}

	var rerr *checkout.RejectionError
	if errors.As(err, &rerr) {
		c.JSON(http.StatusConflict, gin.H{
			"error": rerr.Message,
		})
		return
	}

	var cerr *checkout.ConnectivityError
	if errors.As(err, &cerr) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Could not reach the order service. Please try again.",
		})
		return
	}

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusConflict, gin.H{"error": "Cart is empty"})
	case errors.Is(err, checkout.ErrNoActiveCheckout):
		c.JSON(http.StatusNotFound, gin.H{"error": "No active checkout session"})
	case errors.Is(err, checkout.ErrSubmitInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": "An order submission is already in progress"})
	case errors.Is(err, checkout.ErrNotOnPaymentStep),
		errors.Is(err, checkout.ErrPaymentNotChosen),
		errors.Is(err, checkout.ErrParentNotSelected),
		errors.Is(err, checkout.ErrUnknownPlace),
		errors.Is(err, checkout.ErrUnknownPaymentMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func (h *CheckoutHandler) selectPlace(c *gin.Context, selectFn func(ctx context.Context, ref cart.OwnerRef, id uint) (*checkout.State, error)) {
	var req selectPlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	state, err := selectFn(c.Request.Context(), middleware.OwnerRef(c), req.ID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": state})
}
