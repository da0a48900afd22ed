// Package geo computes great-circle distances and finds the nearest entry of a
// registry of named locations.
package geo

import "math"

// EarthRadiusMiles is the mean Earth radius used by every distance in this package.
// Expected distances in tests are computed against this exact value.
const EarthRadiusMiles = 3958.8

const degToRad = math.Pi / 180

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lon float64 `json:"lon" bson:"lon"`
}

// DistanceMiles calculates the great-circle distance between two points
// on Earth in miles using the Haversine formula.
//
// Inputs are not range checked; out-of-range degrees still produce a number,
// while NaN or infinite degrees produce NaN.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * degToRad
	lat2Rad := lat2 * degToRad
	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding and out-of-range latitudes can push a outside [0, 1]
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

// Distance is DistanceMiles for two Points.
func Distance(a, b Point) float64 {
	return DistanceMiles(a.Lat, a.Lon, b.Lat, b.Lon)
}
