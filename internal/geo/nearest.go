package geo

// SentinelDistanceMiles seeds the nearest-location fold. It is larger than any
// real distance on Earth so the first registry entry always replaces it.
const SentinelDistanceMiles = 10_000_000.0

// NamedLocation is a registry entry: a point with a display name and a unique slug.
type NamedLocation struct {
	Name string  `json:"name" yaml:"name" bson:"name"`
	Slug string  `json:"slug" yaml:"slug" bson:"slug"`
	Lat  float64 `json:"lat" yaml:"lat" bson:"lat"`
	Lon  float64 `json:"long" yaml:"long" bson:"long"`
}

// Point returns the coordinates of the location.
func (l NamedLocation) Point() Point {
	return Point{Lat: l.Lat, Lon: l.Lon}
}

// DistanceResult is a registry entry together with its distance from a query point.
type DistanceResult struct {
	NamedLocation
	DistanceMiles float64 `json:"distance_miles"`
}

// NearestLocation returns the registry entry closest to (lat, lon).
//
// Entries are scanned in order and only a strictly smaller distance replaces the
// current best, so the first of several equally near entries wins. When the
// registry is empty ok is false and the result is the sentinel: empty name and
// slug at SentinelDistanceMiles.
func NearestLocation(lat, lon float64, registry Registry) (result DistanceResult, ok bool) {
	best := DistanceResult{DistanceMiles: SentinelDistanceMiles}
	for _, loc := range registry {
		d := DistanceMiles(lat, lon, loc.Lat, loc.Lon)
		if d < best.DistanceMiles {
			best = DistanceResult{NamedLocation: loc, DistanceMiles: d}
			ok = true
		}
	}
	return best, ok
}

// Nearest is NearestLocation over r.
func (r Registry) Nearest(p Point) (DistanceResult, bool) {
	return NearestLocation(p.Lat, p.Lon, r)
}
