package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ukydev/cafe-discovery/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLikeCollection implements LikeCollection for MongoDB.
type MongoLikeCollection struct {
	Collection *mongo.Collection
}

// InsertLike inserts a like record into the collection.
func (c *MongoLikeCollection) InsertLike(ctx context.Context, like models.Like) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if like.CreatedAt.IsZero() {
		like.CreatedAt = time.Now()
	}
	_, err := c.Collection.InsertOne(ctx, like)
	return err
}

// FindLikesByUser returns the likes of one user, newest first.
func (c *MongoLikeCollection) FindLikesByUser(ctx context.Context, userID string) ([]models.Like, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := c.Collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	likes := []models.Like{}
	if err := cursor.All(ctx, &likes); err != nil {
		return nil, err
	}
	return likes, nil
}

// DeleteLike deletes a like owned by userID.
func (c *MongoLikeCollection) DeleteLike(ctx context.Context, id, userID string) (bool, error) {
	if c.Collection == nil {
		return false, fmt.Errorf("mongo collection is nil")
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return false, err
	}
	return result.DeletedCount == 1, nil
}

// DeleteLikesByCafe removes all likes of a cafe.
func (c *MongoLikeCollection) DeleteLikesByCafe(ctx context.Context, cafeID string) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{"cafe_id": cafeID})
	return err
}
