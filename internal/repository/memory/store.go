// Package memory provides an in-memory Store implementation used by tests
// and local tooling. It mirrors the MongoDB store's contract, including the
// unique productId constraint and defaults-on-missing settings.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mamadbah2/freshtrack/internal/domain/models"
	"github.com/mamadbah2/freshtrack/internal/repository/mongodb"
)

// Store is a map-backed mongodb.Store.
type Store struct {
	mu        sync.RWMutex
	items     map[string]models.Item
	order     []string
	seq       int
	settings  *models.Settings
	snapshots []models.Snapshot

	// Err, when set, is returned by every operation to simulate an
	// unreachable store.
	Err error
}

var _ mongodb.Store = (*Store)(nil)

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{items: make(map[string]models.Item)}
}

// ListItems returns items in insertion order.
func (s *Store) ListItems(ctx context.Context) ([]models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return nil, s.Err
	}

	items := make([]models.Item, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.items[id])
	}
	return items, nil
}

// GetItem fetches one item by identifier.
func (s *Store) GetItem(ctx context.Context, id string) (models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return models.Item{}, s.Err
	}

	item, ok := s.items[id]
	if !ok {
		return models.Item{}, mongodb.ErrNotFound
	}
	return item, nil
}

// FindByProductID fetches an item by its product identifier.
func (s *Store) FindByProductID(ctx context.Context, productID string) (models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return models.Item{}, s.Err
	}

	for _, item := range s.items {
		if item.ProductID == productID {
			return item, nil
		}
	}
	return models.Item{}, mongodb.ErrNotFound
}

// InsertItem stores a new item, enforcing productId uniqueness.
func (s *Store) InsertItem(ctx context.Context, item models.Item) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}

	for _, existing := range s.items {
		if existing.ProductID == item.ProductID {
			return "", mongodb.ErrDuplicateProductID
		}
	}

	s.seq++
	id := fmt.Sprintf("mem-%d", s.seq)
	item.ID = id
	s.items[id] = item
	s.order = append(s.order, id)
	return id, nil
}

// UpdateItem applies non-nil fields of the update.
func (s *Store) UpdateItem(ctx context.Context, id string, update models.ItemUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	item, ok := s.items[id]
	if !ok {
		return mongodb.ErrNotFound
	}

	if update.ProductName != nil {
		item.ProductName = *update.ProductName
	}
	if update.BatchNumber != nil {
		item.BatchNumber = *update.BatchNumber
	}
	if update.ExpiryDate != nil {
		item.ExpiryDate = *update.ExpiryDate
	}
	if update.Quantity != nil {
		item.Quantity = *update.Quantity
	}
	if update.Price != nil {
		item.Price = *update.Price
	}
	if update.ShelfLife != nil {
		item.ShelfLife = *update.ShelfLife
	}
	if update.Category != nil {
		item.Category = *update.Category
	}
	if update.Location != nil {
		item.Location = *update.Location
	}
	if update.Notes != nil {
		item.Notes = *update.Notes
	}

	s.items[id] = item
	return nil
}

// DeleteItem removes one item; absent identifiers are a no-op.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	if _, ok := s.items[id]; !ok {
		return nil
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// ClearItems removes everything and reports the count.
func (s *Store) ClearItems(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}

	count := int64(len(s.items))
	s.items = make(map[string]models.Item)
	s.order = nil
	return count, nil
}

// GetSettings returns saved settings or the documented defaults.
func (s *Store) GetSettings(ctx context.Context) (models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Err != nil {
		return models.Settings{}, s.Err
	}

	if s.settings == nil {
		return models.DefaultSettings(), nil
	}
	return *s.settings, nil
}

// SaveSettings replaces the settings wholesale.
func (s *Store) SaveSettings(ctx context.Context, settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	s.settings = &settings
	return nil
}

// SaveSnapshot appends a snapshot.
func (s *Store) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	s.snapshots = append(s.snapshots, snap)
	return nil
}

// Snapshots returns the stored snapshots.
func (s *Store) Snapshots() []models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Snapshot(nil), s.snapshots...)
}

// Ping reports the simulated availability.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Err
}
