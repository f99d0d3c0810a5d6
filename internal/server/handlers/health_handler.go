package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/freshtrack/internal/repository/mongodb"
)

// HealthHandler answers liveness probes.
type HealthHandler struct {
	store mongodb.Store
}

// NewHealthHandler constructs the probe handler.
func NewHealthHandler(store mongodb.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check reports process liveness and store reachability.
func (h *HealthHandler) Check(c *gin.Context) {
	connected := h.store.Ping(c.Request.Context()) == nil

	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"store_connected": connected,
	})
}
