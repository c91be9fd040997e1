package handler

import (
	"github.com/gin-gonic/gin"

	tradeapp "github.com/kbridge/backend/internal/application/trade"
)

// OrderHandler exposes the order lifecycle API
type OrderHandler struct {
	BaseHandler
	orderService *tradeapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *tradeapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// RegisterRoutes registers order routes on the given group
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Create)
		orders.GET("/bought", h.ListBought)
		orders.GET("/sold", h.ListSold)
		orders.GET("/:id", h.Get)
		orders.POST("/:id/pay", h.MarkPaid)
		orders.POST("/:id/ship", h.MarkShipped)
		orders.POST("/:id/delivered", h.MarkDelivered)
		orders.POST("/:id/confirm", h.Confirm)
		orders.POST("/:id/cancel", h.Cancel)
	}
}

// Create places a new order
func (h *OrderHandler) Create(c *gin.Context) {
	buyerID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req tradeapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.orderService.Create(c.Request.Context(), buyerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns an order visible to its buyer or seller
func (h *OrderHandler) Get(c *gin.Context) {
	requesterID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orderService.GetByID(c.Request.Context(), orderID, requesterID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListBought returns the caller's purchases
func (h *OrderHandler) ListBought(c *gin.Context) {
	buyerID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter tradeapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.orderService.ListBought(c.Request.Context(), buyerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListSold returns the caller's sales
func (h *OrderHandler) ListSold(c *gin.Context) {
	sellerID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter tradeapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.orderService.ListSold(c.Request.Context(), sellerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkPaid captures payment and opens escrow
func (h *OrderHandler) MarkPaid(c *gin.Context) {
	buyerID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req tradeapp.MarkPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.orderService.MarkPaid(c.Request.Context(), orderID, buyerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkShipped records the seller's shipment declaration
func (h *OrderHandler) MarkShipped(c *gin.Context) {
	sellerID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req tradeapp.MarkShippedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.orderService.MarkShipped(c.Request.Context(), orderID, sellerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// MarkDelivered records carrier delivery. Called by the logistics webhook
// or scheduler under its own service account; the service rejects calls
// from either party to the order.
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	callerID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orderService.MarkDelivered(c.Request.Context(), orderID, callerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Confirm releases escrow to the seller
func (h *OrderHandler) Confirm(c *gin.Context) {
	buyerID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orderService.Confirm(c.Request.Context(), orderID, buyerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel cancels an unpaid order and restores stock
func (h *OrderHandler) Cancel(c *gin.Context) {
	buyerID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	orderID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orderService.Cancel(c.Request.Context(), orderID, buyerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
