package handler

import (
	"github.com/gin-gonic/gin"

	disputeapp "github.com/kbridge/backend/internal/application/dispute"
)

// DisputeHandler exposes the dispute and community voting API
type DisputeHandler struct {
	BaseHandler
	disputeService *disputeapp.Service
}

// NewDisputeHandler creates a new DisputeHandler
func NewDisputeHandler(disputeService *disputeapp.Service) *DisputeHandler {
	return &DisputeHandler{disputeService: disputeService}
}

// RegisterRoutes registers dispute routes on the given group
func (h *DisputeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	disputes := rg.Group("/disputes")
	{
		disputes.POST("", h.Open)
		disputes.GET("/:id", h.Get)
		disputes.GET("/:id/votes", h.ListVotes)
		disputes.POST("/:id/start-voting", h.StartVoting)
		disputes.POST("/:id/votes", h.CastVote)
		disputes.POST("/:id/resolve", h.Resolve)
		disputes.POST("/:id/appeal", h.Appeal)
	}
}

// Open opens a dispute against an order
func (h *DisputeHandler) Open(c *gin.Context) {
	initiatorID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req disputeapp.OpenDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.disputeService.Open(c.Request.Context(), initiatorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a dispute
func (h *DisputeHandler) Get(c *gin.Context) {
	disputeID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid dispute ID")
		return
	}

	resp, err := h.disputeService.GetByID(c.Request.Context(), disputeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListVotes returns the votes cast on a dispute
func (h *DisputeHandler) ListVotes(c *gin.Context) {
	disputeID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid dispute ID")
		return
	}

	resp, err := h.disputeService.ListVotes(c.Request.Context(), disputeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// StartVoting opens the 7-day voting window. Triggered by moderation
// tooling or the scheduler once evidence review is done.
func (h *DisputeHandler) StartVoting(c *gin.Context) {
	disputeID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid dispute ID")
		return
	}

	resp, err := h.disputeService.StartVoting(c.Request.Context(), disputeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CastVote records a community member's vote
func (h *DisputeHandler) CastVote(c *gin.Context) {
	voterID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	disputeID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid dispute ID")
		return
	}

	var req disputeapp.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.disputeService.CastVote(c.Request.Context(), disputeID, voterID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Resolve tallies the votes and settles the order's escrow
func (h *DisputeHandler) Resolve(c *gin.Context) {
	disputeID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid dispute ID")
		return
	}

	var req disputeapp.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.disputeService.Resolve(c.Request.Context(), disputeID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Appeal reopens voting on a resolved dispute
func (h *DisputeHandler) Appeal(c *gin.Context) {
	appellantID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	disputeID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid dispute ID")
		return
	}

	resp, err := h.disputeService.Appeal(c.Request.Context(), disputeID, appellantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
