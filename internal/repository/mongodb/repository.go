package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/freshtrack/internal/domain/models"
)

const (
	inventoryCollection = "inventory_items"
	settingsCollection  = "settings"
	snapshotCollection  = "valuation_snapshots"

	settingsDocID = "config"
)

// ErrNotFound indicates the requested document does not exist.
var ErrNotFound = errors.New("document not found")

// ErrDuplicateProductID indicates the unique productId index rejected a write.
var ErrDuplicateProductID = errors.New("productId already exists")

// Store defines the persistence operations used by the services.
type Store interface {
	ListItems(ctx context.Context) ([]models.Item, error)
	GetItem(ctx context.Context, id string) (models.Item, error)
	FindByProductID(ctx context.Context, productID string) (models.Item, error)
	InsertItem(ctx context.Context, item models.Item) (string, error)
	UpdateItem(ctx context.Context, id string, update models.ItemUpdate) error
	DeleteItem(ctx context.Context, id string) error
	ClearItems(ctx context.Context) (int64, error)
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, s models.Settings) error
	SaveSnapshot(ctx context.Context, snap models.Snapshot) error
	Ping(ctx context.Context) error
}

// MongoStore implements Store on top of MongoDB.
type MongoStore struct {
	client *mongo.Client
	dbName string
}

// itemDoc pairs the store-assigned ObjectID with the item payload.
type itemDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	models.Item `bson:",inline"`
}

// settingsDoc pins the settings payload to the single config document.
type settingsDoc struct {
	ID              string `bson:"_id"`
	models.Settings `bson:",inline"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri string, dbName string) (*MongoStore, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoStore{client: client, dbName: dbName}, nil
}

// EnsureIndexes creates the unique productId index. The index backstops the
// non-atomic duplicate pre-check performed by the inventory service.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.inventory().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "productId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create productId index: %w", err)
	}
	return nil
}

// ListItems returns every inventory item with its store-assigned identifier.
func (s *MongoStore) ListItems(ctx context.Context) ([]models.Item, error) {
	cursor, err := s.inventory().Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]models.Item, 0)
	for cursor.Next(ctx) {
		var doc itemDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode inventory item: %w", err)
		}
		doc.Item.ID = doc.ID.Hex()
		items = append(items, doc.Item)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("inventory cursor failed: %w", err)
	}

	return items, nil
}

// GetItem fetches one item by its identifier.
func (s *MongoStore) GetItem(ctx context.Context, id string) (models.Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Item{}, ErrNotFound
	}

	var doc itemDoc
	if err := s.inventory().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Item{}, ErrNotFound
		}
		return models.Item{}, fmt.Errorf("failed to fetch item %s: %w", id, err)
	}

	doc.Item.ID = doc.ID.Hex()
	return doc.Item, nil
}

// FindByProductID fetches an item by its user-facing product identifier.
func (s *MongoStore) FindByProductID(ctx context.Context, productID string) (models.Item, error) {
	var doc itemDoc
	if err := s.inventory().FindOne(ctx, bson.M{"productId": productID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Item{}, ErrNotFound
		}
		return models.Item{}, fmt.Errorf("failed to look up productId %s: %w", productID, err)
	}

	doc.Item.ID = doc.ID.Hex()
	return doc.Item, nil
}

// InsertItem stores a new item and returns its assigned identifier.
func (s *MongoStore) InsertItem(ctx context.Context, item models.Item) (string, error) {
	res, err := s.inventory().InsertOne(ctx, itemDoc{Item: item})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicateProductID
		}
		return "", fmt.Errorf("failed to insert item: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// UpdateItem applies a partial field update to an existing item.
func (s *MongoStore) UpdateItem(ctx context.Context, id string, update models.ItemUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.inventory().UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("failed to update item %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteItem removes one item. Deleting an absent or malformed identifier is
// a no-op, matching the idempotent delete contract.
func (s *MongoStore) DeleteItem(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}

	if _, err := s.inventory().DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	return nil
}

// ClearItems removes every inventory item in one batch and reports how many
// documents were removed.
func (s *MongoStore) ClearItems(ctx context.Context) (int64, error) {
	res, err := s.inventory().DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to clear inventory: %w", err)
	}
	return res.DeletedCount, nil
}

// GetSettings returns the saved settings, or the documented defaults when no
// settings document exists yet.
func (s *MongoStore) GetSettings(ctx context.Context) (models.Settings, error) {
	var doc settingsDoc
	err := s.settings().FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.DefaultSettings(), nil
		}
		return models.Settings{}, fmt.Errorf("failed to fetch settings: %w", err)
	}
	return doc.Settings, nil
}

// SaveSettings replaces the settings document wholesale.
func (s *MongoStore) SaveSettings(ctx context.Context, settings models.Settings) error {
	doc := settingsDoc{ID: settingsDocID, Settings: settings}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.settings().ReplaceOne(ctx, bson.M{"_id": settingsDocID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// SaveSnapshot stores a daily valuation snapshot.
func (s *MongoStore) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	if _, err := s.snapshots().InsertOne(ctx, snap); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// Ping verifies the store is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close closes the MongoDB connection.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) inventory() *mongo.Collection {
	return s.client.Database(s.dbName).Collection(inventoryCollection)
}

func (s *MongoStore) settings() *mongo.Collection {
	return s.client.Database(s.dbName).Collection(settingsCollection)
}

func (s *MongoStore) snapshots() *mongo.Collection {
	return s.client.Database(s.dbName).Collection(snapshotCollection)
}
