package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/ukydev/cafe-discovery/internal/events"
	"github.com/ukydev/cafe-discovery/internal/models"
)

// MockUserCollection is a mock implementation of UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCafeCollection is a mock implementation of CafeCollection
type MockCafeCollection struct {
	mock.Mock
}

func (m *MockCafeCollection) InsertCafe(ctx context.Context, cafe models.Cafe) error {
	args := m.Called(ctx, cafe)
	return args.Error(0)
}

func (m *MockCafeCollection) FindCafes(ctx context.Context) ([]models.Cafe, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Cafe), args.Error(1)
}

func (m *MockCafeCollection) FindCafeByID(ctx context.Context, id string) (*models.Cafe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cafe), args.Error(1)
}

func (m *MockCafeCollection) DeleteCafe(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLikeCollection is a mock implementation of LikeCollection
type MockLikeCollection struct {
	mock.Mock
}

func (m *MockLikeCollection) InsertLike(ctx context.Context, like models.Like) error {
	args := m.Called(ctx, like)
	return args.Error(0)
}

func (m *MockLikeCollection) FindLikesByUser(ctx context.Context, userID string) ([]models.Like, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Like), args.Error(1)
}

func (m *MockLikeCollection) DeleteLike(ctx context.Context, id, userID string) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLikeCollection) DeleteLikesByCafe(ctx context.Context, cafeID string) error {
	args := m.Called(ctx, cafeID)
	return args.Error(0)
}

// MockPublisher is a mock implementation of events.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishLike(ctx context.Context, event events.LikeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() {
	m.Called()
}
