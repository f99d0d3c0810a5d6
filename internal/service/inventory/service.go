package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/freshtrack/internal/domain/models"
	"github.com/mamadbah2/freshtrack/internal/repository/mongodb"
	"github.com/mamadbah2/freshtrack/internal/valuation"
)

// ErrValidation indicates a missing or invalid field on a mutation request.
var ErrValidation = errors.New("validation failed")

// ErrDuplicateProductID indicates the productId is already taken by a live record.
var ErrDuplicateProductID = errors.New("productId already exists")

// ErrItemNotFound indicates an operation on an absent identifier.
var ErrItemNotFound = errors.New("inventory item not found")

// Service orchestrates inventory and settings persistence with validation.
type Service struct {
	store  mongodb.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService constructs the inventory service.
func NewService(store mongodb.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// List returns every live inventory item.
func (s *Service) List(ctx context.Context) ([]models.Item, error) {
	return s.store.ListItems(ctx)
}

// Get fetches one item by its store identifier.
func (s *Service) Get(ctx context.Context, id string) (models.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return models.Item{}, ErrItemNotFound
		}
		return models.Item{}, err
	}
	return item, nil
}

// Add validates and stores a new item, stamping dateAdded from the service
// clock. The productId must be unique among live records.
//
// The duplicate lookup followed by the insert is a non-atomic check-then-act;
// two concurrent writers can both pass the lookup. The unique productId index
// created at startup makes the second insert fail instead of corrupting the
// uniqueness invariant.
func (s *Service) Add(ctx context.Context, item models.Item) (string, error) {
	if err := validateNewItem(item); err != nil {
		return "", err
	}

	if _, err := s.store.FindByProductID(ctx, item.ProductID); err == nil {
		return "", fmt.Errorf("%w: %q", ErrDuplicateProductID, item.ProductID)
	} else if !errors.Is(err, mongodb.ErrNotFound) {
		return "", err
	}

	item.DateAdded = s.now().Format(models.DateLayout)

	id, err := s.store.InsertItem(ctx, item)
	if err != nil {
		if errors.Is(err, mongodb.ErrDuplicateProductID) {
			return "", fmt.Errorf("%w: %q", ErrDuplicateProductID, item.ProductID)
		}
		return "", err
	}

	s.logger.Info("item added",
		zap.String("id", id),
		zap.String("productId", item.ProductID),
		zap.String("expiryDate", item.ExpiryDate))
	return id, nil
}

// Update applies a partial field update to an existing item.
func (s *Service) Update(ctx context.Context, id string, update models.ItemUpdate) error {
	if err := validateUpdate(update); err != nil {
		return err
	}

	// An empty update still answers 404 for unknown identifiers.
	if update == (models.ItemUpdate{}) {
		if _, err := s.store.GetItem(ctx, id); err != nil {
			if errors.Is(err, mongodb.ErrNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		return nil
	}

	if err := s.store.UpdateItem(ctx, id, update); err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			return ErrItemNotFound
		}
		return err
	}

	s.logger.Info("item updated", zap.String("id", id))
	return nil
}

// Delete removes one item. Absent identifiers succeed silently.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.logger.Info("item deleted", zap.String("id", id))
	return nil
}

// Clear removes every item and reports the removed count.
func (s *Service) Clear(ctx context.Context) (int64, error) {
	count, err := s.store.ClearItems(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("inventory cleared", zap.Int64("removed", count))
	return count, nil
}

// Restore replaces the whole data set with the contents of a backup. Items
// are re-inserted with fresh store identifiers; productIds are preserved.
func (s *Service) Restore(ctx context.Context, backup models.Backup) error {
	for _, item := range backup.Inventory {
		if err := validateNewItem(item); err != nil {
			return fmt.Errorf("backup item %q: %w", item.ProductID, err)
		}
	}

	if _, err := s.store.ClearItems(ctx); err != nil {
		return err
	}

	for _, item := range backup.Inventory {
		item.ID = ""
		if item.DateAdded == "" {
			item.DateAdded = s.now().Format(models.DateLayout)
		}
		if _, err := s.store.InsertItem(ctx, item); err != nil {
			return fmt.Errorf("restore item %q: %w", item.ProductID, err)
		}
	}

	if err := s.store.SaveSettings(ctx, backup.Settings); err != nil {
		return err
	}

	s.logger.Info("backup restored", zap.Int("items", len(backup.Inventory)))
	return nil
}

// Settings returns the current configuration, or the defaults when none is saved.
func (s *Service) Settings(ctx context.Context) (models.Settings, error) {
	return s.store.GetSettings(ctx)
}

// SaveSettings replaces the configuration wholesale. Out-of-order thresholds
// or discounts are accepted for compatibility but logged.
func (s *Service) SaveSettings(ctx context.Context, settings models.Settings) error {
	if !settings.Ordered() {
		s.logger.Warn("saving settings with out-of-order thresholds or discounts",
			zap.Int("criticalDays", settings.CriticalDays),
			zap.Int("warningDays", settings.WarningDays),
			zap.Int("moderateDays", settings.ModerateDays))
	}

	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return err
	}
	s.logger.Info("settings saved")
	return nil
}

// ResetSettings restores and returns the documented defaults.
func (s *Service) ResetSettings(ctx context.Context) (models.Settings, error) {
	defaults := models.DefaultSettings()
	if err := s.store.SaveSettings(ctx, defaults); err != nil {
		return models.Settings{}, err
	}
	s.logger.Info("settings reset to defaults")
	return defaults, nil
}

func validateNewItem(item models.Item) error {
	switch {
	case item.ProductName == "":
		return fmt.Errorf("%w: productName is required", ErrValidation)
	case item.ProductID == "":
		return fmt.Errorf("%w: productId is required", ErrValidation)
	case item.BatchNumber == "":
		return fmt.Errorf("%w: batchNumber is required", ErrValidation)
	case item.Category == "":
		return fmt.Errorf("%w: category is required", ErrValidation)
	case item.Quantity < 1:
		return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	case item.Price < 0.01:
		return fmt.Errorf("%w: price must be at least 0.01", ErrValidation)
	}

	if _, err := valuation.ParseDate(item.ExpiryDate); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

func validateUpdate(update models.ItemUpdate) error {
	if update.ExpiryDate != nil {
		if _, err := valuation.ParseDate(*update.ExpiryDate); err != nil {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
	}
	if update.Quantity != nil && *update.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if update.Price != nil && *update.Price < 0.01 {
		return fmt.Errorf("%w: price must be at least 0.01", ErrValidation)
	}
	return nil
}
