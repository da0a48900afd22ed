package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/cafe-discovery/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	UsersCollection = "users"
	CafesCollection = "cafes"
	LikesCollection = "likes"
)

// ConnectMongo connects to MongoDB at uri and verifies the connection.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	// Ping to verify connection
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the unique and lookup indexes the collections rely on.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	_, err := database.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users.email index: %w", err)
	}
	_, err = database.Collection(LikesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "cafe_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create likes indexes: %w", err)
	}
	return nil
}

// MongoCafeCollection implements CafeCollection for MongoDB.
type MongoCafeCollection struct {
	Collection *mongo.Collection
}

// InsertCafe inserts a cafe record into the collection.
func (c *MongoCafeCollection) InsertCafe(ctx context.Context, cafe models.Cafe) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if cafe.CreatedAt.IsZero() {
		cafe.CreatedAt = time.Now()
	}
	_, err := c.Collection.InsertOne(ctx, cafe)
	return err
}

// FindCafes returns every cafe, oldest first.
func (c *MongoCafeCollection) FindCafes(ctx context.Context) ([]models.Cafe, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := c.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	cafes := []models.Cafe{}
	if err := cursor.All(ctx, &cafes); err != nil {
		return nil, err
	}
	return cafes, nil
}

// FindCafeByID finds a cafe by its ID.
func (c *MongoCafeCollection) FindCafeByID(ctx context.Context, id string) (*models.Cafe, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid cafe ID: %w", ErrNotFound)
	}

	var cafe models.Cafe
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&cafe)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("cafe %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	return &cafe, nil
}

// DeleteCafe deletes a cafe by its ID.
func (c *MongoCafeCollection) DeleteCafe(ctx context.Context, id string) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid cafe ID: %w", ErrNotFound)
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("cafe %s: %w", id, ErrNotFound)
	}

	return nil
}
