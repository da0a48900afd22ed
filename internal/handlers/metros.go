package handlers

import (
	"net/http"

	"github.com/ukydev/cafe-discovery/internal/geo"
)

// MetroHandler exposes the metro registry.
type MetroHandler struct {
	Registry geo.Registry
}

// List returns the registry in order.
func (h *MetroHandler) List(w http.ResponseWriter, r *http.Request) {
	reg := h.Registry
	if reg == nil {
		reg = geo.Registry{}
	}
	writeJSON(w, r, http.StatusOK, reg)
}

// Nearest returns the metro nearest to ?lat=&lon=.
func (h *MetroHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("lat") == "" || q.Get("lon") == "" {
		writeError(w, r, http.StatusBadRequest, "lat and lon are required")
		return
	}
	p, err := queryPoint(r, geo.Point{})
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	nearest, ok := h.Registry.Nearest(p)
	if !ok {
		writeError(w, r, http.StatusNotFound, "no metro areas configured")
		return
	}
	writeJSON(w, r, http.StatusOK, nearest)
}
