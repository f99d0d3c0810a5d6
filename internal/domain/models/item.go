package models

// DateLayout is the ISO calendar-date format used for every date field.
const DateLayout = "2006-01-02"

// Categories lists the fixed category choices offered by the UI; free text is
// still accepted on the API.
var Categories = []string{"Dairy", "Produce", "Meat", "Bakery", "Beverages", "Other"}

// Item represents one physical batch of perishable stock.
type Item struct {
	ID          string  `bson:"-" json:"id,omitempty"`
	ProductName string  `bson:"productName" json:"productName" binding:"required"`
	ProductID   string  `bson:"productId" json:"productId" binding:"required"`
	BatchNumber string  `bson:"batchNumber" json:"batchNumber" binding:"required"`
	ExpiryDate  string  `bson:"expiryDate" json:"expiryDate" binding:"required"`
	Quantity    int     `bson:"quantity" json:"quantity" binding:"required,min=1"`
	Price       float64 `bson:"price" json:"price" binding:"required,gt=0"`
	ShelfLife   int     `bson:"shelfLife" json:"shelfLife" binding:"required,min=1"`
	Category    string  `bson:"category" json:"category" binding:"required"`
	Location    string  `bson:"location,omitempty" json:"location,omitempty"`
	Notes       string  `bson:"notes,omitempty" json:"notes,omitempty"`
	DateAdded   string  `bson:"dateAdded,omitempty" json:"dateAdded,omitempty"`
}

// ItemUpdate carries a partial field update. Nil pointers are left untouched.
type ItemUpdate struct {
	ProductName *string  `json:"productName,omitempty" bson:"productName,omitempty"`
	BatchNumber *string  `json:"batchNumber,omitempty" bson:"batchNumber,omitempty"`
	ExpiryDate  *string  `json:"expiryDate,omitempty" bson:"expiryDate,omitempty"`
	Quantity    *int     `json:"quantity,omitempty" bson:"quantity,omitempty"`
	Price       *float64 `json:"price,omitempty" bson:"price,omitempty"`
	ShelfLife   *int     `json:"shelfLife,omitempty" bson:"shelfLife,omitempty"`
	Category    *string  `json:"category,omitempty" bson:"category,omitempty"`
	Location    *string  `json:"location,omitempty" bson:"location,omitempty"`
	Notes       *string  `json:"notes,omitempty" bson:"notes,omitempty"`
}

// LineValue returns the undiscounted value of the batch.
func (i Item) LineValue() float64 {
	return i.Price * float64(i.Quantity)
}
