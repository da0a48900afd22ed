package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/cafe-discovery/internal/db"
	"github.com/ukydev/cafe-discovery/internal/events"
	"github.com/ukydev/cafe-discovery/internal/middleware"
	"github.com/ukydev/cafe-discovery/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.WithClaims(r.Context(), &models.Claims{UserID: userID, Role: models.RoleMember}))
}

func TestLikeHandler_Add(t *testing.T) {
	cafe := &models.Cafe{ID: primitive.NewObjectID(), Name: "Echo Park Beans"}

	t.Run("creates like and publishes event", func(t *testing.T) {
		cafes, likes, pub := new(MockCafeCollection), new(MockLikeCollection), new(MockPublisher)
		handler := &LikeHandler{Cafes: cafes, Likes: likes, Publisher: pub}

		cafes.On("FindCafeByID", mock.Anything, cafe.ID.Hex()).Return(cafe, nil)
		likes.On("InsertLike", mock.Anything, mock.MatchedBy(func(l models.Like) bool {
			_, err := uuid.Parse(l.ID)
			return err == nil && l.UserID == "u1" && l.CafeID == cafe.ID.Hex()
		})).Return(nil)
		pub.On("PublishLike", mock.Anything, mock.MatchedBy(func(e events.LikeEvent) bool {
			return e.Type == events.LikeAdded && e.CafeID == cafe.ID.Hex() && e.UserID == "u1"
		})).Return(nil)

		req := httptest.NewRequest("POST", "/api/cafes/"+cafe.ID.Hex()+"/likes", nil)
		req.SetPathValue("id", cafe.ID.Hex())
		w := httptest.NewRecorder()
		handler.Add(w, withUser(req, "u1"))

		require.Equal(t, http.StatusCreated, w.Code)
		var like models.Like
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &like))
		assert.Equal(t, "u1", like.UserID)
		cafes.AssertExpectations(t)
		likes.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		cafes, likes, pub := new(MockCafeCollection), new(MockLikeCollection), new(MockPublisher)
		handler := &LikeHandler{Cafes: cafes, Likes: likes, Publisher: pub}

		cafes.On("FindCafeByID", mock.Anything, cafe.ID.Hex()).Return(cafe, nil)
		likes.On("InsertLike", mock.Anything, mock.Anything).Return(nil)
		pub.On("PublishLike", mock.Anything, mock.Anything).Return(events.ErrPublishTimeout)

		req := httptest.NewRequest("POST", "/api/cafes/x/likes", nil)
		req.SetPathValue("id", cafe.ID.Hex())
		w := httptest.NewRecorder()
		handler.Add(w, withUser(req, "u1"))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("nil publisher", func(t *testing.T) {
		cafes, likes := new(MockCafeCollection), new(MockLikeCollection)
		handler := &LikeHandler{Cafes: cafes, Likes: likes}

		cafes.On("FindCafeByID", mock.Anything, cafe.ID.Hex()).Return(cafe, nil)
		likes.On("InsertLike", mock.Anything, mock.Anything).Return(nil)

		req := httptest.NewRequest("POST", "/api/cafes/x/likes", nil)
		req.SetPathValue("id", cafe.ID.Hex())
		w := httptest.NewRecorder()
		handler.Add(w, withUser(req, "u1"))

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("unknown cafe", func(t *testing.T) {
		cafes, likes := new(MockCafeCollection), new(MockLikeCollection)
		handler := &LikeHandler{Cafes: cafes, Likes: likes, Publisher: events.NoopPublisher{}}
		cafes.On("FindCafeByID", mock.Anything, "nope").Return(nil, db.ErrNotFound)

		req := httptest.NewRequest("POST", "/api/cafes/nope/likes", nil)
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()
		handler.Add(w, withUser(req, "u1"))

		assert.Equal(t, http.StatusNotFound, w.Code)
		likes.AssertNotCalled(t, "InsertLike", mock.Anything, mock.Anything)
	})

	t.Run("no user", func(t *testing.T) {
		handler := &LikeHandler{Cafes: new(MockCafeCollection), Likes: new(MockLikeCollection)}
		w := httptest.NewRecorder()
		handler.Add(w, httptest.NewRequest("POST", "/api/cafes/x/likes", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestLikeHandler_ListByUser(t *testing.T) {
	likes := new(MockLikeCollection)
	handler := &LikeHandler{Cafes: new(MockCafeCollection), Likes: likes}

	stored := []models.Like{{ID: "l2", UserID: "u1", CafeID: "c2"}, {ID: "l1", UserID: "u1", CafeID: "c1"}}
	likes.On("FindLikesByUser", mock.Anything, "u1").Return(stored, nil)
	likes.On("FindLikesByUser", mock.Anything, "u2").Return(nil, assert.AnError)

	req := httptest.NewRequest("GET", "/api/users/u1/likes", nil)
	req.SetPathValue("id", "u1")
	w := httptest.NewRecorder()
	handler.ListByUser(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got []models.Like
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, []string{"l2", "l1"}, []string{got[0].ID, got[1].ID})

	req = httptest.NewRequest("GET", "/api/users/u2/likes", nil)
	req.SetPathValue("id", "u2")
	w = httptest.NewRecorder()
	handler.ListByUser(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLikeHandler_Delete(t *testing.T) {
	t.Run("own like", func(t *testing.T) {
		likes, pub := new(MockLikeCollection), new(MockPublisher)
		handler := &LikeHandler{Cafes: new(MockCafeCollection), Likes: likes, Publisher: pub}
		likes.On("DeleteLike", mock.Anything, "l1", "u1").Return(true, nil)
		pub.On("PublishLike", mock.Anything, mock.MatchedBy(func(e events.LikeEvent) bool {
			return e.Type == events.LikeRemoved && e.LikeID == "l1"
		})).Return(nil)

		req := httptest.NewRequest("DELETE", "/api/likes/l1", nil)
		req.SetPathValue("id", "l1")
		w := httptest.NewRecorder()
		handler.Delete(w, withUser(req, "u1"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"deleted":true}`, w.Body.String())
		pub.AssertExpectations(t)
	})

	t.Run("someone else's like", func(t *testing.T) {
		likes, pub := new(MockLikeCollection), new(MockPublisher)
		handler := &LikeHandler{Cafes: new(MockCafeCollection), Likes: likes, Publisher: pub}
		likes.On("DeleteLike", mock.Anything, "l1", "u2").Return(false, nil)

		req := httptest.NewRequest("DELETE", "/api/likes/l1", nil)
		req.SetPathValue("id", "l1")
		w := httptest.NewRecorder()
		handler.Delete(w, withUser(req, "u2"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"deleted":false}`, w.Body.String())
		pub.AssertNotCalled(t, "PublishLike", mock.Anything, mock.Anything)
	})

	t.Run("store error", func(t *testing.T) {
		likes := new(MockLikeCollection)
		handler := &LikeHandler{Cafes: new(MockCafeCollection), Likes: likes}
		likes.On("DeleteLike", mock.Anything, "l1", "u1").Return(false, assert.AnError)

		req := httptest.NewRequest("DELETE", "/api/likes/l1", nil)
		req.SetPathValue("id", "l1")
		w := httptest.NewRecorder()
		handler.Delete(w, withUser(req, "u1"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
