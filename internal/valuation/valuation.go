// Package valuation implements the expiry-discount classification and
// inventory-valuation engine. Every function is a pure computation over its
// explicit inputs; "today" is always a parameter, never the wall clock.
package valuation

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/mamadbah2/freshtrack/internal/domain/models"
)

// ErrMalformedDate indicates an expiry date that does not parse as an ISO
// calendar date. Callers must surface it rather than guess a default.
var ErrMalformedDate = errors.New("malformed expiry date")

// Tier is the urgency class derived from days until expiry.
type Tier string

const (
	TierFresh    Tier = "Fresh"
	TierModerate Tier = "Moderate"
	TierWarning  Tier = "Warning"
	TierCritical Tier = "Critical"
	TierExpired  Tier = "Expired"
)

// ParseDate parses an ISO calendar date, mapping failures to ErrMalformedDate.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, value)
	}
	return t, nil
}

// DaysUntilExpiry returns the signed whole-day distance from today to the
// expiry date. Negative means already expired. Both inputs are truncated to
// calendar dates before subtracting.
func DaysUntilExpiry(expiryDate string, today time.Time) (int, error) {
	expiry, err := ParseDate(expiryDate)
	if err != nil {
		return 0, err
	}

	base := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(expiry.Sub(base).Hours() / 24), nil
}

// Classify assigns the discount tier for a days-until-expiry value. Rules are
// inclusive upper bounds evaluated in descending severity, so a value matching
// several rules receives the most severe one. Threshold ordering is not
// validated here.
func Classify(daysLeft int, s models.Settings) (Tier, float64) {
	switch {
	case daysLeft <= 0:
		return TierExpired, s.MaxDiscount
	case daysLeft <= s.CriticalDays:
		return TierCritical, s.DiscountCritical
	case daysLeft <= s.WarningDays:
		return TierWarning, s.DiscountWarning
	case daysLeft <= s.ModerateDays:
		return TierModerate, s.DiscountModerate
	default:
		return TierFresh, 0
	}
}

// DiscountedUnitPrice applies a percentage discount to a unit price, rounded
// to two decimals. The percentage is used unclamped: a misconfigured value
// over 100 produces a negative price.
func DiscountedUnitPrice(price, discountPercent float64) float64 {
	return round2(price * (1 - discountPercent/100))
}

// Valuation holds every derived figure for one item under one configuration.
type Valuation struct {
	DaysUntilExpiry  int
	Tier             Tier
	DiscountPercent  float64
	DiscountedPrice  float64
	LineValue        float64
	DiscountedValue  float64
	LossContribution float64
}

// Evaluate derives the full valuation of an item. Only Expired items expose
// their full line value as loss; Critical items expose the discounted slice;
// Warning, Moderate and Fresh contribute nothing.
func Evaluate(item models.Item, s models.Settings, today time.Time) (Valuation, error) {
	daysLeft, err := DaysUntilExpiry(item.ExpiryDate, today)
	if err != nil {
		return Valuation{}, err
	}

	tier, discount := Classify(daysLeft, s)
	lineValue := item.LineValue()

	v := Valuation{
		DaysUntilExpiry: daysLeft,
		Tier:            tier,
		DiscountPercent: discount,
		DiscountedPrice: DiscountedUnitPrice(item.Price, discount),
		LineValue:       round2(lineValue),
		DiscountedValue: round2(lineValue * (1 - discount/100)),
	}

	switch tier {
	case TierExpired:
		v.LossContribution = round2(lineValue)
	case TierCritical:
		v.LossContribution = round2(lineValue * discount / 100)
	}

	return v, nil
}

// Stats aggregates a whole collection under one configuration.
type Stats struct {
	TotalItems    int     `json:"totalItems"`
	TotalQuantity int     `json:"totalQuantity"`
	TotalValue    float64 `json:"totalValue"`
	PotentialLoss float64 `json:"potentialLoss"`
	Expired       int     `json:"expired"`
	Critical      int     `json:"critical"`
	Warning       int     `json:"warning"`
	Moderate      int     `json:"moderate"`
	Fresh         int     `json:"fresh"`
	Malformed     int     `json:"malformed"`
}

// Aggregate computes collection statistics in a single pass. Empty input
// yields all-zero stats. Items with unparseable expiry dates still count
// toward totals but land in the Malformed bucket instead of a tier and never
// contribute loss.
func Aggregate(items []models.Item, s models.Settings, today time.Time) Stats {
	var stats Stats

	for _, item := range items {
		stats.TotalItems++
		stats.TotalQuantity += item.Quantity
		stats.TotalValue = round2(stats.TotalValue + item.LineValue())

		v, err := Evaluate(item, s, today)
		if err != nil {
			stats.Malformed++
			continue
		}

		switch v.Tier {
		case TierExpired:
			stats.Expired++
		case TierCritical:
			stats.Critical++
		case TierWarning:
			stats.Warning++
		case TierModerate:
			stats.Moderate++
		case TierFresh:
			stats.Fresh++
		}

		stats.PotentialLoss = round2(stats.PotentialLoss + v.LossContribution)
	}

	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
