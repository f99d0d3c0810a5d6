package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/freshtrack/internal/server/handlers"
)

// Handlers bundles every HTTP adapter the router wires.
type Handlers struct {
	Inventory *handlers.InventoryHandler
	Settings  *handlers.SettingsHandler
	Reports   *handlers.ReportHandler
	Health    *handlers.HealthHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")
	{
		api.GET("/inventory", h.Inventory.List)
		api.POST("/inventory", h.Inventory.Create)
		api.PUT("/inventory/:id", h.Inventory.Update)
		api.DELETE("/inventory/clear", h.Inventory.Clear)
		api.DELETE("/inventory/:id", h.Inventory.Delete)
		api.GET("/inventory/stats", h.Inventory.Stats)

		api.GET("/reports", h.Reports.Report)
		api.GET("/reports/critical", h.Reports.Critical)
		api.GET("/export/csv", h.Reports.ExportCSV)
		api.GET("/export/summary", h.Reports.ExportSummary)
		api.GET("/export/backup", h.Reports.ExportBackup)
		api.POST("/import", h.Reports.Import)

		api.GET("/settings", h.Settings.Get)
		api.POST("/settings", h.Settings.Save)
		api.POST("/settings/reset", h.Settings.Reset)

		api.GET("/health", h.Health.Check)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
