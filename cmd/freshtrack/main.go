package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/freshtrack/internal/config"
	"github.com/mamadbah2/freshtrack/internal/domain/models"
	"github.com/mamadbah2/freshtrack/internal/repository/mongodb"
	"github.com/mamadbah2/freshtrack/internal/repository/sheets"
	"github.com/mamadbah2/freshtrack/internal/scheduler"
	"github.com/mamadbah2/freshtrack/internal/server/handlers"
	"github.com/mamadbah2/freshtrack/internal/server/router"
	inventorysvc "github.com/mamadbah2/freshtrack/internal/service/inventory"
	reportingsvc "github.com/mamadbah2/freshtrack/internal/service/reporting"
	"github.com/mamadbah2/freshtrack/internal/valuation"
	"github.com/mamadbah2/freshtrack/pkg/clients/webhook"
	"github.com/mamadbah2/freshtrack/pkg/logger"
)

var envFile string

func main() {
	rootCmd := &cobra.Command{
		Use:          "freshtrack",
		Short:        "Perishable inventory tracker with expiry-based discounting",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (defaults to ./.env when present)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newExportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the inventory REST service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func newExportCmd() *cobra.Command {
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a one-shot report CSV or backup JSON to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), format, out)
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "export format: csv or json")
	cmd.Flags().StringVar(&out, "out", "", "output file path (defaults to a dated name in the working directory)")

	return cmd
}

func runServe() error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := mongodb.NewMongoStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := store.EnsureIndexes(context.Background()); err != nil {
		baseLogger.Fatal("failed to ensure indexes", zap.Error(err))
	}

	inventorySvc := inventorysvc.NewService(store, baseLogger.Named("svc.inventory"))
	reportingSvc := reportingsvc.NewService(baseLogger.Named("svc.reporting"))

	var mirror sheets.Mirror
	if cfg.SheetsEnabled() {
		mirror, err = sheets.NewSheetMirror(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets mirror", zap.Error(err))
		}
		baseLogger.Info("google sheets snapshot mirror enabled")
	}

	var alerter webhook.Client
	if cfg.Alerts.WebhookURL != "" {
		alerter = webhook.NewClient(cfg.Alerts.WebhookURL)
		baseLogger.Info("expiry alert webhook enabled")
	} else {
		baseLogger.Warn("alert webhook url missing, expiry alerts disabled")
	}

	engine := router.New(router.Handlers{
		Inventory: handlers.NewInventoryHandler(inventorySvc, baseLogger.Named("handlers.inventory")),
		Settings:  handlers.NewSettingsHandler(inventorySvc, baseLogger.Named("handlers.settings")),
		Reports:   handlers.NewReportHandler(inventorySvc, reportingSvc, baseLogger.Named("handlers.reports")),
		Health:    handlers.NewHealthHandler(store),
	}, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, store, reportingSvc, mirror, alerter, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}

	return nil
}

func runExport(ctx context.Context, format, out string) error {
	if format != "csv" && format != "json" {
		return fmt.Errorf("unsupported export format %q (want csv or json)", format)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	store, err := mongodb.NewMongoStore(ctx, cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		return fmt.Errorf("failed to init mongodb store: %w", err)
	}
	defer func() { _ = store.Close(ctx) }()

	items, err := store.ListItems(ctx)
	if err != nil {
		return err
	}
	settings, err := store.GetSettings(ctx)
	if err != nil {
		return err
	}

	reportingSvc := reportingsvc.NewService(baseLogger.Named("svc.reporting"))
	now := time.Now()

	var data []byte
	switch format {
	case "csv":
		rows := reportingSvc.BuildReport(items, settings, now)
		data, err = reportingSvc.ExportCSV(rows)
		if err != nil {
			return err
		}
		if out == "" {
			out = fmt.Sprintf("inventory_report_%s.csv", now.Format("20060102"))
		}
	case "json":
		backup := reportingSvc.BuildBackup(items, settings, now)
		data, err = marshalBackup(backup)
		if err != nil {
			return err
		}
		if out == "" {
			out = fmt.Sprintf("inventory_backup_%s.json", now.Format("20060102_150405"))
		}
	}

	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed writing export file: %w", err)
	}

	stats := valuation.Aggregate(items, settings, now)
	baseLogger.Info("export written",
		zap.String("file", out),
		zap.Int("items", stats.TotalItems),
		zap.Float64("totalValue", stats.TotalValue))
	return nil
}

func marshalBackup(b models.Backup) ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed encoding backup: %w", err)
	}
	return data, nil
}
