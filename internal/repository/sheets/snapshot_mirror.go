package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/freshtrack/internal/config"
	"github.com/mamadbah2/freshtrack/internal/domain/models"
)

// Mirror defines the optional secondary sink for daily valuation snapshots.
type Mirror interface {
	AppendSnapshot(ctx context.Context, snap models.Snapshot) error
}

// SheetMirror implements Mirror using the official Google Sheets API, one
// spreadsheet row per snapshot.
type SheetMirror struct {
	service       *sheetsapi.Service
	spreadsheetID string
	sheetRange    string
	logger        *zap.Logger
}

// NewSheetMirror builds a Google Sheets backed snapshot mirror.
func NewSheetMirror(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Mirror, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &SheetMirror{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		sheetRange:    cfg.SheetRange,
		logger:        logger,
	}, nil
}

// AppendSnapshot appends the snapshot as one row to the configured range.
func (m *SheetMirror) AppendSnapshot(ctx context.Context, snap models.Snapshot) error {
	values := []interface{}{
		snap.Date.Format(models.DateLayout),
		snap.TotalItems,
		snap.TotalQuantity,
		snap.TotalValue,
		snap.PotentialLoss,
		snap.Expired,
		snap.Critical,
		snap.Warning,
		snap.Moderate,
		snap.Fresh,
		snap.Malformed,
	}

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{values}}

	call := m.service.Spreadsheets.Values.Append(m.spreadsheetID, m.sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append snapshot into range %s: %w", m.sheetRange, err)
	}

	m.logger.Debug("snapshot row appended to sheet", zap.String("range", m.sheetRange))
	return nil
}
