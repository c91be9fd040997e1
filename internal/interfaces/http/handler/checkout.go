package handler

import (
	"github.com/gin-gonic/gin"

	tradeapp "github.com/kbridge/backend/internal/application/trade"
	"github.com/kbridge/backend/internal/domain/pricing"
)

// CheckoutHandler exposes cart-level pricing
type CheckoutHandler struct {
	BaseHandler
	checkoutService *tradeapp.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *tradeapp.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// RegisterRoutes registers checkout routes on the given group
func (h *CheckoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/checkout/bundle-shipping", h.BundleShipping)
}

// BundleShipping quotes bundled shipping for a cart. The bundle message in
// each group follows the Accept-Language header (ko, zh, en).
func (h *CheckoutHandler) BundleShipping(c *gin.Context) {
	if _, err := actorID(c); err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req tradeapp.BundleShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	locale := pricing.MatchLocale(c.GetHeader("Accept-Language"))
	resp, err := h.checkoutService.CalculateBundleShipping(c.Request.Context(), req, locale)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
