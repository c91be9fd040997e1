package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports the health of a backing dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler exposes health endpoints
type SystemHandler struct {
	BaseHandler
	db Pinger
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger) *SystemHandler {
	return &SystemHandler{db: db}
}

// RegisterRoutes registers system routes on the given group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.GET("/ready", h.Ready)
}

// Health reports process liveness
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{"status": "ok", "time": time.Now().UTC()})
}

// Ready reports readiness including the database connection
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"status": "ready"})
}
