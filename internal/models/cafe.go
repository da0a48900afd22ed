package models

import (
	"time"

	"github.com/ukydev/cafe-discovery/internal/geo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cafe is a cafe with its stored coordinates.
type Cafe struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Latitude  float64            `bson:"latitude" json:"latitude"`
	Longitude float64            `bson:"longitude" json:"longitude"`
	MetroSlug string             `bson:"metro_slug,omitempty" json:"metro_slug,omitempty"` // nearest registry entry when created
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Point returns the cafe coordinates.
func (c Cafe) Point() geo.Point {
	return geo.Point{Lat: c.Latitude, Lon: c.Longitude}
}

// AddCafeRequest is the body of POST /api/cafes.
type AddCafeRequest struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Long *float64 `json:"long"`
}

// CafeView is a cafe annotated for a caller: distance from the reference point
// and the nearest metro area.
type CafeView struct {
	Cafe
	DistanceMiles float64             `json:"distance_miles"`
	NearestMetro  *geo.DistanceResult `json:"nearest_metro,omitempty"`
}

// NewCafeView annotates c relative to from using registry.
func NewCafeView(c Cafe, from geo.Point, registry geo.Registry) CafeView {
	v := CafeView{
		Cafe:          c,
		DistanceMiles: geo.Distance(c.Point(), from),
	}
	if nearest, ok := registry.Nearest(c.Point()); ok {
		v.NearestMetro = &nearest
	}
	return v
}
