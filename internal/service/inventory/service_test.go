package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mamadbah2/freshtrack/internal/domain/models"
	"github.com/mamadbah2/freshtrack/internal/repository/memory"
	"github.com/mamadbah2/freshtrack/internal/valuation"
)

var fixedNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestService(store *memory.Store) *Service {
	svc := NewService(store, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func validItem(productID string) models.Item {
	return models.Item{
		ProductName: "Milk",
		ProductID:   productID,
		BatchNumber: "BATCH-2025-001",
		ExpiryDate:  "2025-03-20",
		Quantity:    2,
		Price:       10,
		ShelfLife:   14,
		Category:    "Dairy",
	}
}

func TestAdd_StampsDateAdded(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	id, err := svc.Add(context.Background(), validItem("P1"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	saved, err := store.GetItem(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if saved.DateAdded != "2025-03-10" {
		t.Errorf("DateAdded = %q, want 2025-03-10", saved.DateAdded)
	}
}

func TestAdd_RejectsDuplicateProductID(t *testing.T) {
	// The duplicate lookup plus insert is a documented non-atomic
	// check-then-act; under a single writer (as here) the pre-check alone
	// must reject the second add and leave exactly one P1 record.
	store := memory.NewStore()
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.Add(ctx, validItem("P1")); err != nil {
		t.Fatalf("first Add: %v", err)
	}

	_, err := svc.Add(ctx, validItem("P1"))
	if !errors.Is(err, ErrDuplicateProductID) {
		t.Fatalf("second Add err = %v, want ErrDuplicateProductID", err)
	}

	items, err := store.ListItems(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ProductID != "P1" {
		t.Errorf("store contains %d items, want exactly one P1 record", len(items))
	}
}

func TestAdd_ValidationFailures(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*models.Item)
	}{
		{"missing productName", func(i *models.Item) { i.ProductName = "" }},
		{"missing productId", func(i *models.Item) { i.ProductID = "" }},
		{"missing batchNumber", func(i *models.Item) { i.BatchNumber = "" }},
		{"missing category", func(i *models.Item) { i.Category = "" }},
		{"zero quantity", func(i *models.Item) { i.Quantity = 0 }},
		{"zero price", func(i *models.Item) { i.Price = 0 }},
		{"bad expiry date", func(i *models.Item) { i.ExpiryDate = "next tuesday" }},
	}

	for _, tc := range cases {
		item := validItem("P1")
		tc.mutate(&item)
		_, err := svc.Add(ctx, item)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", tc.name, err)
		}
	}

	items, _ := store.ListItems(ctx)
	if len(items) != 0 {
		t.Errorf("rejected adds must not mutate the store, found %d items", len(items))
	}
}

func TestAdd_MalformedDateIsDistinct(t *testing.T) {
	svc := newTestService(memory.NewStore())

	item := validItem("P1")
	item.ExpiryDate = "2025-02-30"
	_, err := svc.Add(context.Background(), item)
	if !errors.Is(err, valuation.ErrMalformedDate) {
		t.Errorf("err = %v, want wrapped ErrMalformedDate", err)
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	ctx := context.Background()

	id, err := svc.Add(ctx, validItem("P1"))
	if err != nil {
		t.Fatal(err)
	}

	qty := 9
	notes := "moved to freezer"
	if err := svc.Update(ctx, id, models.ItemUpdate{Quantity: &qty, Notes: &notes}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	saved, _ := store.GetItem(ctx, id)
	if saved.Quantity != 9 || saved.Notes != "moved to freezer" {
		t.Errorf("updated item = %+v", saved)
	}
	if saved.ProductName != "Milk" || saved.Price != 10 {
		t.Errorf("untouched fields changed: %+v", saved)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(memory.NewStore())

	qty := 3
	err := svc.Update(context.Background(), "missing", models.ItemUpdate{Quantity: &qty})
	if !errors.Is(err, ErrItemNotFound) {
		t.Errorf("err = %v, want ErrItemNotFound", err)
	}
}

func TestUpdate_RejectsBadExpiryDate(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	ctx := context.Background()

	id, err := svc.Add(ctx, validItem("P1"))
	if err != nil {
		t.Fatal(err)
	}

	bad := "soon"
	err = svc.Update(ctx, id, models.ItemUpdate{ExpiryDate: &bad})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	saved, _ := store.GetItem(ctx, id)
	if saved.ExpiryDate != "2025-03-20" {
		t.Errorf("expiry mutated to %q despite rejection", saved.ExpiryDate)
	}
}

func TestDelete_AbsentIDSucceeds(t *testing.T) {
	svc := newTestService(memory.NewStore())
	if err := svc.Delete(context.Background(), "never-existed"); err != nil {
		t.Errorf("Delete absent id: %v", err)
	}
}

func TestClear_ReportsCount(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	ctx := context.Background()

	for _, id := range []string{"P1", "P2", "P3"} {
		if _, err := svc.Add(ctx, validItem(id)); err != nil {
			t.Fatal(err)
		}
	}

	count, err := svc.Clear(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("Clear count = %d, want 3", count)
	}

	items, _ := store.ListItems(ctx)
	if len(items) != 0 {
		t.Errorf("store still holds %d items", len(items))
	}
}

func TestSettings_DefaultsWhenUnsaved(t *testing.T) {
	svc := newTestService(memory.NewStore())

	settings, err := svc.Settings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if settings != models.DefaultSettings() {
		t.Errorf("Settings = %+v, want defaults", settings)
	}
}

func TestSaveSettings_PermissiveOnOutOfOrder(t *testing.T) {
	// Ordering is intentionally unenforced on save; only a warning is logged.
	store := memory.NewStore()
	svc := newTestService(store)
	ctx := context.Background()

	s := models.DefaultSettings()
	s.CriticalDays = 20
	s.WarningDays = 5

	if err := svc.SaveSettings(ctx, s); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	saved, _ := store.GetSettings(ctx)
	if saved.CriticalDays != 20 {
		t.Errorf("saved settings = %+v, want out-of-order values persisted", saved)
	}
}

func TestResetSettings(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	ctx := context.Background()

	custom := models.DefaultSettings()
	custom.MaxDiscount = 80
	if err := svc.SaveSettings(ctx, custom); err != nil {
		t.Fatal(err)
	}

	defaults, err := svc.ResetSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if defaults != models.DefaultSettings() {
		t.Errorf("ResetSettings = %+v, want defaults", defaults)
	}

	saved, _ := store.GetSettings(ctx)
	if saved != models.DefaultSettings() {
		t.Errorf("persisted settings = %+v, want defaults", saved)
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	ctx := context.Background()

	backup := models.Backup{
		Inventory: []models.Item{
			validItem("P1"),
			validItem("P2"),
		},
		Settings:   models.DefaultSettings(),
		ExportDate: "2025-03-10 12:00:00",
	}
	backup.Inventory[0].DateAdded = "2025-03-01"

	if err := svc.Restore(ctx, backup); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	items, _ := store.ListItems(ctx)
	if len(items) != 2 {
		t.Fatalf("restored %d items, want 2", len(items))
	}
	if items[0].DateAdded != "2025-03-01" {
		t.Errorf("existing dateAdded not preserved: %q", items[0].DateAdded)
	}
	if items[1].DateAdded != "2025-03-10" {
		t.Errorf("missing dateAdded not stamped: %q", items[1].DateAdded)
	}
}

func TestRestore_RejectsInvalidBackupBeforeMutating(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.Add(ctx, validItem("KEEP")); err != nil {
		t.Fatal(err)
	}

	bad := models.Backup{
		Inventory: []models.Item{validItem("P1"), {ProductID: "P2"}},
		Settings:  models.DefaultSettings(),
	}

	if err := svc.Restore(ctx, bad); !errors.Is(err, ErrValidation) {
		t.Fatalf("Restore err = %v, want ErrValidation", err)
	}

	items, _ := store.ListItems(ctx)
	if len(items) != 1 || items[0].ProductID != "KEEP" {
		t.Errorf("store mutated by rejected restore: %+v", items)
	}
}
