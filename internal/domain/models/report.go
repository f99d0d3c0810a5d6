package models

import "time"

// ReportRow is one flattened line of the detailed inventory report, the same
// derived columns the tables and CSV exports show.
type ReportRow struct {
	ProductName     string  `csv:"Product Name" json:"productName"`
	ProductID       string  `csv:"Product ID" json:"productId"`
	BatchNumber     string  `csv:"Batch Number" json:"batchNumber"`
	Category        string  `csv:"Category" json:"category"`
	Quantity        int     `csv:"Quantity" json:"quantity"`
	ExpiryDate      string  `csv:"Expiry Date" json:"expiryDate"`
	DaysUntilExpiry int     `csv:"Days Until Expiry" json:"daysUntilExpiry"`
	Status          string  `csv:"Status" json:"status"`
	DiscountPercent float64 `csv:"Discount %" json:"discountPercent"`
	Price           float64 `csv:"Price" json:"price"`
	DiscountedPrice float64 `csv:"Discounted Price" json:"discountedPrice"`
	OriginalValue   float64 `csv:"Original Total Value" json:"originalValue"`
	DiscountedValue float64 `csv:"Discounted Total Value" json:"discountedValue"`
	PotentialLoss   float64 `csv:"Potential Loss" json:"potentialLoss"`
}

// SummaryRow is one metric/value pair of the summary export.
type SummaryRow struct {
	Metric string `csv:"Metric" json:"metric"`
	Value  string `csv:"Value" json:"value"`
}

// Snapshot is the aggregated valuation state persisted by the daily job.
type Snapshot struct {
	Date          time.Time `bson:"date" json:"date"`
	TotalItems    int       `bson:"total_items" json:"total_items"`
	TotalQuantity int       `bson:"total_quantity" json:"total_quantity"`
	TotalValue    float64   `bson:"total_value" json:"total_value"`
	PotentialLoss float64   `bson:"potential_loss" json:"potential_loss"`
	Expired       int       `bson:"expired" json:"expired"`
	Critical      int       `bson:"critical" json:"critical"`
	Warning       int       `bson:"warning" json:"warning"`
	Moderate      int       `bson:"moderate" json:"moderate"`
	Fresh         int       `bson:"fresh" json:"fresh"`
	Malformed     int       `bson:"malformed" json:"malformed"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}
