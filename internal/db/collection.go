package db

import (
	"context"
	"errors"

	"github.com/ukydev/cafe-discovery/internal/models"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("not found")

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}

// CafeCollection defines the interface for cafe data operations.
type CafeCollection interface {
	InsertCafe(ctx context.Context, cafe models.Cafe) error
	FindCafes(ctx context.Context) ([]models.Cafe, error)
	FindCafeByID(ctx context.Context, id string) (*models.Cafe, error)
	DeleteCafe(ctx context.Context, id string) error
}

// LikeCollection defines the interface for like data operations.
type LikeCollection interface {
	InsertLike(ctx context.Context, like models.Like) error
	FindLikesByUser(ctx context.Context, userID string) ([]models.Like, error)
	// DeleteLike removes the like only when it belongs to userID and reports
	// whether a document was removed.
	DeleteLike(ctx context.Context, id, userID string) (bool, error)
	DeleteLikesByCafe(ctx context.Context, cafeID string) error
}
