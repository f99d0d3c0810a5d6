package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/freshtrack/internal/domain/models"
	"github.com/mamadbah2/freshtrack/internal/service/inventory"
)

// SettingsHandler handles discount configuration HTTP requests.
type SettingsHandler struct {
	svc    *inventory.Service
	logger *zap.Logger
}

// NewSettingsHandler constructs the HTTP handler adapter.
func NewSettingsHandler(svc *inventory.Service, logger *zap.Logger) *SettingsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsHandler{svc: svc, logger: logger}
}

// Get returns the current settings, or the defaults if none were saved.
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.svc.Settings(c.Request.Context())
	if err != nil {
		h.logger.Error("failed loading settings", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondData(c, http.StatusOK, settings)
}

// Save replaces the settings wholesale.
func (h *SettingsHandler) Save(c *gin.Context) {
	var settings models.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		h.logger.Warn("invalid settings payload", zap.Error(err))
		respondError(c, http.StatusBadRequest, "invalid settings payload: "+err.Error())
		return
	}

	if err := h.svc.SaveSettings(c.Request.Context(), settings); err != nil {
		h.logger.Error("failed saving settings", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondMessage(c, http.StatusOK, "Settings saved successfully")
}

// Reset restores the documented defaults.
func (h *SettingsHandler) Reset(c *gin.Context) {
	defaults, err := h.svc.ResetSettings(c.Request.Context())
	if err != nil {
		h.logger.Error("failed resetting settings", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Settings reset successfully",
		"data":    defaults,
	})
}
