package handler

import (
	"github.com/gin-gonic/gin"

	reviewapp "github.com/kbridge/backend/internal/application/review"
)

// ReviewHandler exposes the review and rating API
type ReviewHandler struct {
	BaseHandler
	reviewService *reviewapp.Service
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService *reviewapp.Service) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// RegisterRoutes registers review routes on the given group
func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reviews := rg.Group("/reviews")
	{
		reviews.POST("", h.Create)
		reviews.GET("/:id", h.Get)
		reviews.PUT("/:id", h.Update)
		reviews.DELETE("/:id", h.Delete)
	}
	rg.GET("/users/:id/reviews", h.ListForUser)
	rg.GET("/users/:id/rating", h.GetRating)
}

// Create posts a review for a confirmed order
func (h *ReviewHandler) Create(c *gin.Context) {
	reviewerID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req reviewapp.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.reviewService.Create(c.Request.Context(), reviewerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a review
func (h *ReviewHandler) Get(c *gin.Context) {
	reviewID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid review ID")
		return
	}

	resp, err := h.reviewService.GetByID(c.Request.Context(), reviewID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update edits the caller's own review within the edit window
func (h *ReviewHandler) Update(c *gin.Context) {
	editorID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	reviewID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid review ID")
		return
	}

	var req reviewapp.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	resp, err := h.reviewService.Update(c.Request.Context(), reviewID, editorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes the caller's own review
func (h *ReviewHandler) Delete(c *gin.Context) {
	callerID, err := actorID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	reviewID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid review ID")
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), reviewID, callerID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListForUser returns reviews received by a user
func (h *ReviewHandler) ListForUser(c *gin.Context) {
	userID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var filter reviewapp.ReviewListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}

	reviews, total, err := h.reviewService.ListReceived(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, reviews, total, page, pageSize)
}

// GetRating returns a user's average rating
func (h *ReviewHandler) GetRating(c *gin.Context) {
	userID, err := pathID(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	resp, err := h.reviewService.GetRating(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
