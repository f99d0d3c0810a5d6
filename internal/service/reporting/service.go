package reporting

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/mamadbah2/freshtrack/internal/domain/models"
	"github.com/mamadbah2/freshtrack/internal/valuation"
)

// StatusInvalidDate marks report rows whose expiry date failed to parse.
// Such rows carry no discount and sort after every dated row.
const StatusInvalidDate = "Invalid Date"

const exportDateLayout = "2006-01-02 15:04:05"

// Sortable report columns accepted by SortRows.
const (
	SortByDaysLeft      = "daysUntilExpiry"
	SortByDiscount      = "discountPercent"
	SortByStatus        = "status"
	SortByProductName   = "productName"
	SortByPotentialLoss = "potentialLoss"
)

// Service derives report rows, summaries and export payloads from an
// in-memory record collection. It performs no I/O of its own.
type Service struct {
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// BuildReport computes the derived view columns for every item, sorted by
// urgency (days until expiry ascending, invalid dates last).
func (s *Service) BuildReport(items []models.Item, settings models.Settings, today time.Time) []models.ReportRow {
	rows := make([]models.ReportRow, 0, len(items))

	for _, item := range items {
		row := models.ReportRow{
			ProductName: item.ProductName,
			ProductID:   item.ProductID,
			BatchNumber: item.BatchNumber,
			Category:    item.Category,
			Quantity:    item.Quantity,
			ExpiryDate:  item.ExpiryDate,
			Price:       item.Price,
		}

		v, err := valuation.Evaluate(item, settings, today)
		if err != nil {
			s.logger.Warn("report row has unparseable expiry date",
				zap.String("productId", item.ProductID),
				zap.String("expiryDate", item.ExpiryDate))
			row.Status = StatusInvalidDate
			row.DiscountedPrice = item.Price
			row.OriginalValue = item.LineValue()
			row.DiscountedValue = item.LineValue()
			rows = append(rows, row)
			continue
		}

		row.DaysUntilExpiry = v.DaysUntilExpiry
		row.Status = string(v.Tier)
		row.DiscountPercent = v.DiscountPercent
		row.DiscountedPrice = v.DiscountedPrice
		row.OriginalValue = v.LineValue
		row.DiscountedValue = v.DiscountedValue
		// The report column shows the discount impact per row; the aggregate
		// potential-loss figure in Stats keeps its Expired/Critical asymmetry.
		row.PotentialLoss = round2(v.LineValue - v.DiscountedValue)
		rows = append(rows, row)
	}

	SortRows(rows, SortByDaysLeft, true)
	return rows
}

// SortRows orders report rows in place by the requested column. Unknown
// columns fall back to days until expiry. Invalid-date rows always sort last.
func SortRows(rows []models.ReportRow, by string, ascending bool) {
	less := func(a, b models.ReportRow) bool {
		switch by {
		case SortByDiscount:
			return a.DiscountPercent < b.DiscountPercent
		case SortByStatus:
			return statusRank(a.Status) < statusRank(b.Status)
		case SortByProductName:
			return strings.ToLower(a.ProductName) < strings.ToLower(b.ProductName)
		case SortByPotentialLoss:
			return a.PotentialLoss < b.PotentialLoss
		default:
			return a.DaysUntilExpiry < b.DaysUntilExpiry
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if (a.Status == StatusInvalidDate) != (b.Status == StatusInvalidDate) {
			return b.Status == StatusInvalidDate
		}
		if ascending {
			return less(a, b)
		}
		return less(b, a)
	})
}

// CriticalRows filters the report down to Expired and Critical items.
func (s *Service) CriticalRows(rows []models.ReportRow) []models.ReportRow {
	out := make([]models.ReportRow, 0)
	for _, row := range rows {
		if row.Status == string(valuation.TierExpired) || row.Status == string(valuation.TierCritical) {
			out = append(out, row)
		}
	}
	return out
}

// ExportCSV renders report rows as a flattened CSV document.
func (s *Service) ExportCSV(rows []models.ReportRow) ([]byte, error) {
	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("marshal report csv: %w", err)
	}
	return data, nil
}

// SummaryRows produces the metric/value summary of a stats aggregate.
func (s *Service) SummaryRows(stats valuation.Stats, settings models.Settings) []models.SummaryRow {
	currency := settings.CurrencySymbol
	return []models.SummaryRow{
		{Metric: "Total Items", Value: fmt.Sprintf("%d", stats.TotalItems)},
		{Metric: "Total Quantity", Value: fmt.Sprintf("%d", stats.TotalQuantity)},
		{Metric: "Total Value", Value: fmt.Sprintf("%s%.2f", currency, stats.TotalValue)},
		{Metric: "Potential Loss", Value: fmt.Sprintf("%s%.2f", currency, stats.PotentialLoss)},
		{Metric: "Expired Items", Value: fmt.Sprintf("%d", stats.Expired)},
		{Metric: "Critical Items", Value: fmt.Sprintf("%d", stats.Critical)},
	}
}

// SummaryCSV renders the summary rows as CSV.
func (s *Service) SummaryCSV(rows []models.SummaryRow) ([]byte, error) {
	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("marshal summary csv: %w", err)
	}
	return data, nil
}

// BuildBackup assembles the portable JSON export of the full data set.
func (s *Service) BuildBackup(items []models.Item, settings models.Settings, now time.Time) models.Backup {
	if items == nil {
		items = []models.Item{}
	}
	return models.Backup{
		Inventory:  items,
		Settings:   settings,
		ExportDate: now.Format(exportDateLayout),
	}
}

// ParseBackup decodes and sanity-checks a backup document.
func (s *Service) ParseBackup(data []byte) (models.Backup, error) {
	var backup models.Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return models.Backup{}, fmt.Errorf("decode backup: %w", err)
	}
	if backup.Inventory == nil {
		return models.Backup{}, fmt.Errorf("decode backup: missing inventory")
	}
	if backup.Settings == (models.Settings{}) {
		backup.Settings = models.DefaultSettings()
	}
	return backup, nil
}

// BuildSnapshot converts a stats aggregate into the persisted snapshot form.
func (s *Service) BuildSnapshot(stats valuation.Stats, now time.Time) models.Snapshot {
	return models.Snapshot{
		Date:          time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		TotalItems:    stats.TotalItems,
		TotalQuantity: stats.TotalQuantity,
		TotalValue:    stats.TotalValue,
		PotentialLoss: stats.PotentialLoss,
		Expired:       stats.Expired,
		Critical:      stats.Critical,
		Warning:       stats.Warning,
		Moderate:      stats.Moderate,
		Fresh:         stats.Fresh,
		Malformed:     stats.Malformed,
		CreatedAt:     now.UTC(),
	}
}

// BuildAlert assembles the webhook payload for the urgent slice of a report.
// It returns false when nothing is expired or critical.
func (s *Service) BuildAlert(rows []models.ReportRow, stats valuation.Stats, now time.Time) (models.Alert, bool) {
	urgent := s.CriticalRows(rows)
	if len(urgent) == 0 {
		return models.Alert{}, false
	}

	alert := models.Alert{
		Date:          now.Format(models.DateLayout),
		Expired:       stats.Expired,
		Critical:      stats.Critical,
		PotentialLoss: stats.PotentialLoss,
	}

	// Cap the detail list at the five most urgent batches, the same cut the
	// dashboard alerts use.
	limit := len(urgent)
	if limit > 5 {
		limit = 5
	}
	for _, row := range urgent[:limit] {
		alert.Items = append(alert.Items, models.AlertItem{
			ProductName:     row.ProductName,
			ProductID:       row.ProductID,
			BatchNumber:     row.BatchNumber,
			DaysUntilExpiry: row.DaysUntilExpiry,
			Status:          row.Status,
			DiscountPercent: row.DiscountPercent,
		})
	}

	return alert, true
}

func statusRank(status string) int {
	switch status {
	case string(valuation.TierExpired):
		return 0
	case string(valuation.TierCritical):
		return 1
	case string(valuation.TierWarning):
		return 2
	case string(valuation.TierModerate):
		return 3
	case string(valuation.TierFresh):
		return 4
	}
	return 5
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
