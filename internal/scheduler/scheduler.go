package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/freshtrack/internal/config"
	"github.com/mamadbah2/freshtrack/internal/repository/mongodb"
	"github.com/mamadbah2/freshtrack/internal/repository/sheets"
	"github.com/mamadbah2/freshtrack/internal/service/reporting"
	"github.com/mamadbah2/freshtrack/internal/valuation"
	"github.com/mamadbah2/freshtrack/pkg/clients/webhook"
)

// Scheduler runs the daily valuation snapshot and alert job.
type Scheduler struct {
	cron         *cron.Cron
	store        mongodb.Store
	reportingSvc *reporting.Service
	mirror       sheets.Mirror
	alerter      webhook.Client
	cfg          config.Config
	logger       *zap.Logger
	now          func() time.Time
}

// NewScheduler creates a new scheduler instance. The sheet mirror and alert
// client may be nil; the corresponding steps are skipped.
func NewScheduler(cfg config.Config, store mongodb.Store, reportingSvc *reporting.Service, mirror sheets.Mirror, alerter webhook.Client, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:         cron.New(),
		store:        store,
		reportingSvc: reportingSvc,
		mirror:       mirror,
		alerter:      alerter,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// Start registers the snapshot job and starts the cron loop.
func (s *Scheduler) Start() {
	if !s.cfg.Snapshot.Enabled {
		s.logger.Info("snapshot scheduler disabled")
		return
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Snapshot.CronSchedule))

	if _, err := s.cron.AddFunc(s.cfg.Snapshot.CronSchedule, s.runSnapshot); err != nil {
		s.logger.Error("failed to schedule snapshot job", zap.Error(err))
		return
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

// RunOnce executes one snapshot cycle immediately. Used by the cron job and
// callable directly for manual runs.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	now := s.now()

	items, err := s.store.ListItems(ctx)
	if err != nil {
		return err
	}
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return err
	}

	stats := valuation.Aggregate(items, settings, now)
	snap := s.reportingSvc.BuildSnapshot(stats, now)

	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		return err
	}
	s.logger.Info("valuation snapshot saved",
		zap.Int("items", stats.TotalItems),
		zap.Float64("potentialLoss", stats.PotentialLoss))

	if s.mirror != nil {
		if err := s.mirror.AppendSnapshot(ctx, snap); err != nil {
			s.logger.Error("failed to mirror snapshot to sheet", zap.Error(err))
		}
	}

	if s.alerter != nil {
		rows := s.reportingSvc.BuildReport(items, settings, now)
		if alert, ok := s.reportingSvc.BuildAlert(rows, stats, now); ok {
			if err := s.alerter.SendAlert(ctx, alert); err != nil {
				s.logger.Error("failed to send expiry alert", zap.Error(err))
			} else {
				s.logger.Info("expiry alert sent",
					zap.Int("expired", alert.Expired),
					zap.Int("critical", alert.Critical))
			}
		}
	}

	return nil
}

func (s *Scheduler) runSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("snapshot job failed", zap.Error(err))
	}
}
