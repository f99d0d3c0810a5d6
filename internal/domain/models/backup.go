package models

// Backup is the portable JSON export of the full data set. Re-importing one
// reproduces the collection field for field.
type Backup struct {
	Inventory  []Item   `json:"inventory"`
	Settings   Settings `json:"settings"`
	ExportDate string   `json:"export_date"`
}

// Alert is the payload posted to the configured webhook when expired or
// critical stock is detected.
type Alert struct {
	Date          string      `json:"date"`
	Expired       int         `json:"expired"`
	Critical      int         `json:"critical"`
	PotentialLoss float64     `json:"potential_loss"`
	Items         []AlertItem `json:"items"`
}

// AlertItem identifies one urgent batch inside an Alert.
type AlertItem struct {
	ProductName     string  `json:"product_name"`
	ProductID       string  `json:"product_id"`
	BatchNumber     string  `json:"batch_number"`
	DaysUntilExpiry int     `json:"days_until_expiry"`
	Status          string  `json:"status"`
	DiscountPercent float64 `json:"discount_percent"`
}
