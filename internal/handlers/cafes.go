package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/cafe-discovery/internal/db"
	"github.com/ukydev/cafe-discovery/internal/geo"
	"github.com/ukydev/cafe-discovery/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CafeHandler serves cafes annotated with their distance from a reference point.
type CafeHandler struct {
	Cafes     db.CafeCollection
	Likes     db.LikeCollection
	Registry  geo.Registry
	Reference geo.Point // used when the caller passes no ?lat=&lon=
}

// List returns every cafe with distance_miles from the query point.
func (h *CafeHandler) List(w http.ResponseWriter, r *http.Request) {
	from, err := queryPoint(r, h.Reference)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	cafes, err := h.Cafes.FindCafes(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list cafes")
		writeError(w, r, http.StatusInternalServerError, "Failed to list cafes")
		return
	}

	views := make([]models.CafeView, 0, len(cafes))
	for _, c := range cafes {
		views = append(views, models.NewCafeView(c, from, h.Registry))
	}
	writeJSON(w, r, http.StatusOK, views)
}

// Get returns a single cafe.
func (h *CafeHandler) Get(w http.ResponseWriter, r *http.Request) {
	from, err := queryPoint(r, h.Reference)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	cafe, err := h.Cafes.FindCafeByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "Cafe not found.")
			return
		}
		log.WithError(err).Error("Failed to load cafe")
		writeError(w, r, http.StatusInternalServerError, "Failed to load cafe")
		return
	}

	writeJSON(w, r, http.StatusOK, models.NewCafeView(*cafe, from, h.Registry))
}

// Add creates a cafe and records its nearest metro area.
func (h *CafeHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req models.AddCafeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}
	if req.Lat == nil || req.Long == nil {
		writeError(w, r, http.StatusBadRequest, "lat and long are required")
		return
	}
	if !validCoordinate(*req.Lat, 90) || !validCoordinate(*req.Long, 180) {
		writeError(w, r, http.StatusBadRequest, "lat must be within [-90, 90] and long within [-180, 180]")
		return
	}

	cafe := models.Cafe{
		ID:        primitive.NewObjectID(),
		Name:      req.Name,
		Latitude:  *req.Lat,
		Longitude: *req.Long,
		CreatedAt: time.Now(),
	}
	if nearest, ok := h.Registry.Nearest(cafe.Point()); ok {
		cafe.MetroSlug = nearest.Slug
	}

	if err := h.Cafes.InsertCafe(r.Context(), cafe); err != nil {
		log.WithError(err).Error("Failed to create cafe")
		writeError(w, r, http.StatusInternalServerError, "Failed to create cafe")
		return
	}

	log.WithFields(log.Fields{"cafe_id": cafe.ID.Hex(), "metro": cafe.MetroSlug}).Info("Created cafe")
	writeJSON(w, r, http.StatusCreated, models.NewCafeView(cafe, h.Reference, h.Registry))
}

// Delete removes a cafe and its likes.
func (h *CafeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.Cafes.DeleteCafe(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "Cafe not found.")
			return
		}
		log.WithError(err).Error("Failed to delete cafe")
		writeError(w, r, http.StatusInternalServerError, "Failed to delete cafe")
		return
	}

	if err := h.Likes.DeleteLikesByCafe(r.Context(), id); err != nil {
		log.WithError(err).WithField("cafe_id", id).Warn("Failed to delete likes of removed cafe")
	}

	w.WriteHeader(http.StatusNoContent)
}
