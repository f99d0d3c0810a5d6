package models

// Settings is the store-wide discount configuration. A single live instance
// exists; it is replaced wholesale on save and never partially migrated.
type Settings struct {
	CriticalDays     int     `bson:"criticalDays" json:"criticalDays" binding:"required,min=1"`
	WarningDays      int     `bson:"warningDays" json:"warningDays" binding:"required,min=1"`
	ModerateDays     int     `bson:"moderateDays" json:"moderateDays" binding:"required,min=1"`
	DiscountCritical float64 `bson:"discountCritical" json:"discountCritical" binding:"min=0,max=100"`
	DiscountWarning  float64 `bson:"discountWarning" json:"discountWarning" binding:"min=0,max=100"`
	DiscountModerate float64 `bson:"discountModerate" json:"discountModerate" binding:"min=0,max=100"`
	MaxDiscount      float64 `bson:"maxDiscount" json:"maxDiscount" binding:"min=0,max=100"`
	CurrencySymbol   string  `bson:"currencySymbol" json:"currencySymbol"`
}

// DefaultSettings returns the documented default configuration used when no
// settings document has been saved yet.
func DefaultSettings() Settings {
	return Settings{
		CriticalDays:     3,
		WarningDays:      7,
		ModerateDays:     14,
		DiscountCritical: 50,
		DiscountWarning:  30,
		DiscountModerate: 15,
		MaxDiscount:      50,
		CurrencySymbol:   "$",
	}
}

// Ordered reports whether the thresholds ascend and the discounts descend by
// severity. Saves are permissive either way; callers use this to warn.
func (s Settings) Ordered() bool {
	if !(s.CriticalDays < s.WarningDays && s.WarningDays < s.ModerateDays) {
		return false
	}
	return s.DiscountModerate <= s.DiscountWarning &&
		s.DiscountWarning <= s.DiscountCritical &&
		s.DiscountCritical <= s.MaxDiscount
}
