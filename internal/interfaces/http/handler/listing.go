package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/kbridge/backend/internal/application/catalog"
)

// ListingHandler exposes the seller catalog API
type ListingHandler struct {
	BaseHandler
	listingService *catalogapp.ListingService
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(listingService *catalogapp.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

// RegisterRoutes registers listing routes on the given group
func (h *ListingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	listings := rg.Group("/listings")
	{
		listings.POST("", h.Create)
		listings.GET("/mine", h.ListMine)
		listings.GET("/:id", h.Get)
		listings.PUT("/:id/price", h.UpdatePrice)
		listings.POST("/:id/restock", h.Restock)
		listings.POST("/:id/suspend", h.Suspend)
		listings.POST("/:id/activate", h.Activate)
	}
}

// Create publishes a new listing
func (h *ListingHandler) Create(c *gin.Context) {
	sellerID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req catalogapp.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.listingService.Create(c.Request.Context(), sellerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a listing
func (h *ListingHandler) Get(c *gin.Context) {
	listingID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid listing ID")
		return
	}

	resp, err := h.listingService.GetByID(c.Request.Context(), listingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListMine returns the caller's listings
func (h *ListingHandler) ListMine(c *gin.Context) {
	sellerID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter catalogapp.ListingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.listingService.ListBySeller(c.Request.Context(), sellerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdatePrice re-prices a listing at the current exchange rate
func (h *ListingHandler) UpdatePrice(c *gin.Context) {
	sellerID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	listingID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid listing ID")
		return
	}

	var req catalogapp.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.listingService.UpdatePrice(c.Request.Context(), sellerID, listingID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Restock adds stock to a listing
func (h *ListingHandler) Restock(c *gin.Context) {
	sellerID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	listingID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid listing ID")
		return
	}

	var req catalogapp.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.listingService.Restock(c.Request.Context(), sellerID, listingID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Suspend takes a listing off the market
func (h *ListingHandler) Suspend(c *gin.Context) {
	sellerID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	listingID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid listing ID")
		return
	}

	resp, err := h.listingService.Suspend(c.Request.Context(), sellerID, listingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activate puts a suspended listing back on the market
func (h *ListingHandler) Activate(c *gin.Context) {
	sellerID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	listingID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid listing ID")
		return
	}

	resp, err := h.listingService.Activate(c.Request.Context(), sellerID, listingID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
