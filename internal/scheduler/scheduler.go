package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/agritrack/internal/config"
	"github.com/mamadbah2/agritrack/internal/repository/sheets"
	"github.com/mamadbah2/agritrack/internal/service/records"
)

// OwnerLister enumerates owners for the export job.
type OwnerLister interface {
	DistinctOwners(ctx context.Context) ([]string, error)
}

// Scheduler manages the periodic data-health re-check and the optional
// health report export.
type Scheduler struct {
	cron     *cron.Cron
	svc      *records.Service
	owners   OwnerLister
	exporter sheets.Exporter
	cfg      config.HealthConfig
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. exporter may be nil to
// disable the export job.
func NewScheduler(cfg config.HealthConfig, svc *records.Service, owners OwnerLister, exporter sheets.Exporter, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:     cron.New(),
		svc:      svc,
		owners:   owners,
		exporter: exporter,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.RecheckSchedule, s.runHealthRecheck); err != nil {
		s.logger.Error("failed to schedule health re-check", zap.Error(err))
	}

	if s.exporter != nil {
		if _, err := s.cron.AddFunc(s.cfg.ExportSchedule, s.runHealthExport); err != nil {
			s.logger.Error("failed to schedule health export", zap.Error(err))
		}
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runHealthRecheck() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	rechecked, err := s.svc.RecheckHealth(ctx, s.cfg.RecheckWindow, s.cfg.RecheckBatchSize)
	if err != nil {
		s.logger.Error("health re-check failed", zap.Error(err))
		return
	}

	s.logger.Info("health re-check completed", zap.Int("records", rechecked))
}

func (s *Scheduler) runHealthExport() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	owners, err := s.owners.DistinctOwners(ctx)
	if err != nil {
		s.logger.Error("failed listing owners for export", zap.Error(err))
		return
	}

	now := time.Now().UTC()
	exported := 0
	for _, owner := range owners {
		summary, err := s.svc.HealthSummary(ctx, owner)
		if err != nil {
			s.logger.Error("failed summarizing health for export",
				zap.String("owner_id", owner), zap.Error(err))
			continue
		}

		if err := s.exporter.AppendHealthRow(ctx, owner, summary, now); err != nil {
			s.logger.Error("failed exporting health row",
				zap.String("owner_id", owner), zap.Error(err))
			continue
		}
		exported++
	}

	s.logger.Info("health export completed", zap.Int("owners", exported))
}
