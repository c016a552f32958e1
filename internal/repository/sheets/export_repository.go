// Package sheets exports periodic health reports to a Google Sheet.
package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/agritrack/internal/config"
	"github.com/mamadbah2/agritrack/internal/domain/models"
)

const healthReportRange = "Health!A:G"

// Exporter appends health report rows to the configured spreadsheet.
type Exporter interface {
	AppendHealthRow(ctx context.Context, ownerID string, summary models.HealthSummary, at time.Time) error
}

// GoogleSheetExporter implements Exporter using the official Sheets API.
type GoogleSheetExporter struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetExporter builds a Google Sheets backed exporter instance.
func NewGoogleSheetExporter(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Exporter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetExporter{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendHealthRow appends one owner's health summary as a report row.
func (e *GoogleSheetExporter) AppendHealthRow(ctx context.Context, ownerID string, summary models.HealthSummary, at time.Time) error {
	values := []interface{}{
		at.Format("2006-01-02"),
		ownerID,
		summary.AverageHealthScore,
		summary.TotalRecords,
		summary.VerifiedRecords,
		summary.VerificationRate,
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := e.service.Spreadsheets.Values.Append(e.spreadsheetID, healthReportRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append health report row: %w", err)
	}

	e.logger.Debug("health report row appended", zap.String("owner_id", ownerID))
	return nil
}
