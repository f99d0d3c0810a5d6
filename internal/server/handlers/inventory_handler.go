package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/freshtrack/internal/domain/models"
	"github.com/mamadbah2/freshtrack/internal/service/inventory"
	"github.com/mamadbah2/freshtrack/internal/valuation"
)

// InventoryHandler handles inventory CRUD and stats HTTP requests.
type InventoryHandler struct {
	svc    *inventory.Service
	logger *zap.Logger
	now    func() time.Time
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(svc *inventory.Service, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, logger: logger, now: time.Now}
}

// List returns all inventory items.
func (h *InventoryHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing inventory", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(c, http.StatusOK, items)
}

// Create validates and stores a new item.
func (h *InventoryHandler) Create(c *gin.Context) {
	var item models.Item
	if err := c.ShouldBindJSON(&item); err != nil {
		h.logger.Warn("invalid create payload", zap.Error(err))
		respondError(c, http.StatusBadRequest, "missing or invalid required field: "+err.Error())
		return
	}

	id, err := h.svc.Add(c.Request.Context(), item)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Item added successfully",
		"id":      id,
	})
}

// Update applies a partial field update.
func (h *InventoryHandler) Update(c *gin.Context) {
	var update models.ItemUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		h.logger.Warn("invalid update payload", zap.Error(err))
		respondError(c, http.StatusBadRequest, "invalid update payload: "+err.Error())
		return
	}

	if err := h.svc.Update(c.Request.Context(), c.Param("id"), update); err != nil {
		h.respondServiceError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Item updated successfully")
}

// Delete removes one item; absent identifiers still succeed.
func (h *InventoryHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Error("failed deleting item", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondMessage(c, http.StatusOK, "Item deleted successfully")
}

// Clear removes every item and reports the count.
func (h *InventoryHandler) Clear(c *gin.Context) {
	count, err := h.svc.Clear(c.Request.Context())
	if err != nil {
		h.logger.Error("failed clearing inventory", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Cleared %d items successfully", count),
		"count":   count,
	})
}

// Stats returns the aggregate valuation of the current collection.
func (h *InventoryHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.svc.List(ctx)
	if err != nil {
		h.logger.Error("failed listing inventory for stats", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	settings, err := h.svc.Settings(ctx)
	if err != nil {
		h.logger.Error("failed loading settings for stats", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(c, http.StatusOK, valuation.Aggregate(items, settings, h.now()))
}

func (h *InventoryHandler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, inventory.ErrDuplicateProductID), errors.Is(err, inventory.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, inventory.ErrItemNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("inventory operation failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
	}
}
