package models

import "time"

// Like links a user to a cafe. IDs are UUID strings.
type Like struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	CafeID    string    `bson:"cafe_id" json:"cafe_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
