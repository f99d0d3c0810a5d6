package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/freshtrack/internal/domain/models"
	"github.com/mamadbah2/freshtrack/internal/service/inventory"
	"github.com/mamadbah2/freshtrack/internal/service/reporting"
	"github.com/mamadbah2/freshtrack/internal/valuation"
)

// ReportHandler handles report, export and import HTTP requests.
type ReportHandler struct {
	invSvc    *inventory.Service
	reportSvc *reporting.Service
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(invSvc *inventory.Service, reportSvc *reporting.Service, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{invSvc: invSvc, reportSvc: reportSvc, logger: logger, now: time.Now}
}

// Report returns the detailed derived-column rows. Optional query params:
// sort (daysUntilExpiry|discountPercent|status|productName|potentialLoss)
// and order (asc|desc).
func (h *ReportHandler) Report(c *gin.Context) {
	rows, ok := h.buildRows(c)
	if !ok {
		return
	}

	if by := c.Query("sort"); by != "" {
		reporting.SortRows(rows, by, !strings.EqualFold(c.Query("order"), "desc"))
	}

	respondData(c, http.StatusOK, rows)
}

// Critical returns only the Expired and Critical rows.
func (h *ReportHandler) Critical(c *gin.Context) {
	rows, ok := h.buildRows(c)
	if !ok {
		return
	}

	respondData(c, http.StatusOK, h.reportSvc.CriticalRows(rows))
}

// ExportCSV streams the report as a CSV attachment. With scope=critical only
// the urgent rows are exported.
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	rows, ok := h.buildRows(c)
	if !ok {
		return
	}

	name := "inventory_report"
	if strings.EqualFold(c.Query("scope"), "critical") {
		rows = h.reportSvc.CriticalRows(rows)
		name = "critical_items"
	}

	data, err := h.reportSvc.ExportCSV(rows)
	if err != nil {
		h.logger.Error("failed rendering csv export", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	h.sendCSV(c, name, data)
}

// ExportSummary streams the metric/value summary as a CSV attachment.
func (h *ReportHandler) ExportSummary(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.invSvc.List(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	settings, err := h.invSvc.Settings(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	stats := valuation.Aggregate(items, settings, h.now())
	data, err := h.reportSvc.SummaryCSV(h.reportSvc.SummaryRows(stats, settings))
	if err != nil {
		h.logger.Error("failed rendering summary export", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	h.sendCSV(c, "summary", data)
}

// ExportBackup returns the full JSON backup document.
func (h *ReportHandler) ExportBackup(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.invSvc.List(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	settings, err := h.invSvc.Settings(ctx)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	backup := h.reportSvc.BuildBackup(items, settings, h.now())
	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=inventory_backup_%s.json", h.now().Format("20060102_150405")))
	c.JSON(http.StatusOK, backup)
}

// Import restores the data set from an uploaded backup document.
func (h *ReportHandler) Import(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed reading request body")
		return
	}

	backup, err := h.reportSvc.ParseBackup(body)
	if err != nil {
		h.logger.Warn("invalid backup payload", zap.Error(err))
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.invSvc.Restore(c.Request.Context(), backup); err != nil {
		if errors.Is(err, inventory.ErrValidation) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed restoring backup", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	respondMessage(c, http.StatusOK, fmt.Sprintf("Imported %d items successfully", len(backup.Inventory)))
}

func (h *ReportHandler) buildRows(c *gin.Context) ([]models.ReportRow, bool) {
	ctx := c.Request.Context()

	items, err := h.invSvc.List(ctx)
	if err != nil {
		h.logger.Error("failed listing inventory for report", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	settings, err := h.invSvc.Settings(ctx)
	if err != nil {
		h.logger.Error("failed loading settings for report", zap.Error(err))
		respondError(c, http.StatusInternalServerError, err.Error())
		return nil, false
	}

	return h.reportSvc.BuildReport(items, settings, h.now()), true
}

func (h *ReportHandler) sendCSV(c *gin.Context, name string, data []byte) {
	filename := fmt.Sprintf("%s_%s.csv", name, h.now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}
