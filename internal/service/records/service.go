// Package records orchestrates the farm-data write and read paths:
// validation, persistence, health rollups, and the periodic re-check.
package records

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/agritrack/internal/domain/models"
	repo "github.com/mamadbah2/agritrack/internal/repository/mongodb"
	"github.com/mamadbah2/agritrack/internal/service/health"
	"github.com/mamadbah2/agritrack/internal/validation"
	"github.com/mamadbah2/agritrack/pkg/clients/alerts"
)

// Alerter delivers low-health notifications. May be nil when alerting is not
// configured.
type Alerter interface {
	SendHealthAlert(ctx context.Context, alert alerts.HealthAlert) error
}

// ListResult is one page of records plus its pagination metadata.
type ListResult struct {
	Records []models.FarmRecord
	Page    int64
	Limit   int64
	Total   int64
	Pages   int64
}

// Service implements the farm-data operations behind the HTTP handlers and
// the scheduler.
type Service struct {
	repo           repo.Repository
	validator      *validation.Validator
	alerter        Alerter
	alertThreshold int
	logger         *zap.Logger
	now            func() time.Time
}

// NewService wires a record service. alerter may be nil to disable alerting.
func NewService(repository repo.Repository, validator *validation.Validator, alerter Alerter, alertThreshold int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:           repository,
		validator:      validator,
		alerter:        alerter,
		alertThreshold: alertThreshold,
		logger:         logger,
		now:            time.Now,
	}
}

// Create validates the raw payload for ownerID and persists the resulting
// record. Validation failures reject the request with nothing stored.
func (s *Service) Create(ctx context.Context, ownerID string, raw validation.RawRecord) (*models.FarmRecord, error) {
	record, err := s.validator.Validate(raw, ownerID)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.InsertRecord(ctx, record)
	if err != nil {
		return nil, err
	}

	s.logger.Info("farm record stored",
		zap.String("record_id", stored.ID.Hex()),
		zap.String("owner_id", ownerID),
		zap.Int("health_score", stored.DataHealth.Score),
		zap.Int("issues", len(stored.DataHealth.Issues)))

	s.maybeAlert(ctx, stored)
	return stored, nil
}

// List returns one page of the owner's records matching the filter, newest
// date first. Page and limit default to 1 and 50.
func (s *Service) List(ctx context.Context, ownerID string, filter repo.Filter, page, limit int64) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = repo.DefaultPageSize
	}

	records, total, err := s.repo.QueryRecords(ctx, ownerID, filter, page, limit)
	if err != nil {
		return nil, err
	}

	return &ListResult{
		Records: records,
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   int64(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// HealthSummary computes the owner's data-health rollup.
func (s *Service) HealthSummary(ctx context.Context, ownerID string) (models.HealthSummary, error) {
	agg, err := s.repo.AggregateHealth(ctx, ownerID)
	if err != nil {
		return models.HealthSummary{}, err
	}
	return health.Summarize(agg), nil
}

// RecheckHealth re-scores records whose health has not been checked within
// the window, persisting the refreshed DataHealth. Returns the number of
// records re-scored. Individual failures are logged and skipped.
func (s *Service) RecheckHealth(ctx context.Context, window time.Duration, batchSize int64) (int, error) {
	cutoff := s.now().UTC().Add(-window)

	stale, err := s.repo.ListStaleHealth(ctx, cutoff, batchSize)
	if err != nil {
		return 0, err
	}

	rechecked := 0
	for i := range stale {
		record := &stale[i]
		refreshed := s.validator.Rescore(record)

		if err := s.repo.UpdateHealth(ctx, record.ID, refreshed); err != nil {
			s.logger.Error("failed updating record health",
				zap.String("record_id", record.ID.Hex()), zap.Error(err))
			continue
		}

		record.DataHealth = refreshed
		s.maybeAlert(ctx, record)
		rechecked++
	}

	return rechecked, nil
}

func (s *Service) maybeAlert(ctx context.Context, record *models.FarmRecord) {
	if s.alerter == nil || record.DataHealth.Score >= s.alertThreshold {
		return
	}

	alert := alerts.HealthAlert{
		UserID:   record.UserID,
		RecordID: record.ID.Hex(),
		Score:    record.DataHealth.Score,
		Issues:   record.DataHealth.Issues,
	}

	// Alert delivery never fails the write.
	if err := s.alerter.SendHealthAlert(ctx, alert); err != nil {
		s.logger.Warn("health alert delivery failed",
			zap.String("record_id", alert.RecordID), zap.Error(err))
	}
}
