package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/cafe-discovery/internal/db"
	"github.com/ukydev/cafe-discovery/internal/events"
	"github.com/ukydev/cafe-discovery/internal/middleware"
	"github.com/ukydev/cafe-discovery/internal/models"
)

// LikeHandler handles likes of cafes.
type LikeHandler struct {
	Cafes     db.CafeCollection
	Likes     db.LikeCollection
	Publisher events.Publisher
}

// Add likes the cafe in the path for the current user.
func (h *LikeHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "No user detected.")
		return
	}

	cafe, err := h.Cafes.FindCafeByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "Cafe not found.")
			return
		}
		log.WithError(err).Error("Failed to load cafe")
		writeError(w, r, http.StatusInternalServerError, "Failed to like cafe")
		return
	}

	like := models.Like{
		ID:        uuid.NewString(),
		UserID:    claims.UserID,
		CafeID:    cafe.ID.Hex(),
		CreatedAt: time.Now(),
	}
	if err := h.Likes.InsertLike(r.Context(), like); err != nil {
		log.WithError(err).Error("Failed to create like")
		writeError(w, r, http.StatusInternalServerError, "Failed to like cafe")
		return
	}

	h.publish(r.Context(), events.LikeAdded, like)
	writeJSON(w, r, http.StatusCreated, like)
}

// ListByUser returns the likes of the user in the path.
func (h *LikeHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	likes, err := h.Likes.FindLikesByUser(r.Context(), r.PathValue("id"))
	if err != nil {
		log.WithError(err).Error("Failed to list likes")
		writeError(w, r, http.StatusInternalServerError, "Failed to list likes")
		return
	}
	writeJSON(w, r, http.StatusOK, likes)
}

// Delete removes one of the current user's likes. Likes owned by other users
// are left alone and reported as not deleted.
func (h *LikeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "No user detected.")
		return
	}

	id := r.PathValue("id")
	deleted, err := h.Likes.DeleteLike(r.Context(), id, claims.UserID)
	if err != nil {
		log.WithError(err).Error("Failed to delete like")
		writeError(w, r, http.StatusInternalServerError, "Failed to delete like")
		return
	}

	if deleted {
		h.publish(r.Context(), events.LikeRemoved, models.Like{ID: id, UserID: claims.UserID})
	}
	writeJSON(w, r, http.StatusOK, map[string]bool{"deleted": deleted})
}

// publish sends a like event; failures are logged and never reach the caller.
func (h *LikeHandler) publish(ctx context.Context, kind string, like models.Like) {
	if h.Publisher == nil {
		return
	}
	event := events.LikeEvent{
		Type:      kind,
		LikeID:    like.ID,
		CafeID:    like.CafeID,
		UserID:    like.UserID,
		Timestamp: time.Now(),
	}
	if err := h.Publisher.PublishLike(ctx, event); err != nil {
		log.WithError(err).WithField("like_id", like.ID).Warn("Failed to publish like event")
	}
}
