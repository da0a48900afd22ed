package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/cafe-discovery/internal/geo"
)

const maxBodyBytes = 1 << 20

// writeJSON encodes v before writing the header so an unencodable value
// becomes a 500 instead of an empty success response.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.WithError(err).WithFields(log.Fields{"method": r.Method, "path": r.URL.Path}).Error("encode failed")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to encode response"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

var errBadCoordinates = errors.New("lat must be a number within [-90, 90] and lon within [-180, 180]")

// queryPoint reads ?lat=&lon= from the request. When both are absent the
// fallback is returned.
func queryPoint(r *http.Request, fallback geo.Point) (geo.Point, error) {
	q := r.URL.Query()
	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr == "" && lonStr == "" {
		return fallback, nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || !validCoordinate(lat, 90) {
		return geo.Point{}, errBadCoordinates
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || !validCoordinate(lon, 180) {
		return geo.Point{}, errBadCoordinates
	}
	return geo.Point{Lat: lat, Lon: lon}, nil
}

// validCoordinate reports whether v is a finite degree value within ±limit.
func validCoordinate(v, limit float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -limit && v <= limit
}
