package geo

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ErrInvalidRegistry is returned when a registry fails validation.
var ErrInvalidRegistry = errors.New("invalid registry")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Registry is an ordered, read-only list of named locations. Order matters:
// it decides ties in NearestLocation.
type Registry []NamedLocation

// metropolitanLocations are the metro areas used to seed load tests.
// Longitudes are negative because all four cities are in the western hemisphere.
var metropolitanLocations = Registry{
	{Name: "New York City", Slug: "new-york-city", Lat: 40.7128, Lon: -74.0060},
	{Name: "Los Angeles", Slug: "los-angeles", Lat: 34.0522, Lon: -118.2437},
	{Name: "Chicago", Slug: "chicago", Lat: 41.8781, Lon: -87.6298},
	{Name: "SF Bay Area", Slug: "sf-bay-area", Lat: 37.7749, Lon: -122.4194},
}

// MetropolitanLocations returns a copy of the built-in metro registry.
func MetropolitanLocations() Registry {
	out := make(Registry, len(metropolitanLocations))
	copy(out, metropolitanLocations)
	return out
}

// Validate checks that every entry has a name and a unique URL-safe slug.
func (r Registry) Validate() error {
	seen := make(map[string]int, len(r))
	for i, loc := range r {
		if loc.Name == "" {
			return fmt.Errorf("%w: entry %d has no name", ErrInvalidRegistry, i)
		}
		if !slugPattern.MatchString(loc.Slug) {
			return fmt.Errorf("%w: entry %d has invalid slug %q", ErrInvalidRegistry, i, loc.Slug)
		}
		if j, dup := seen[loc.Slug]; dup {
			return fmt.Errorf("%w: slug %q used by entries %d and %d", ErrInvalidRegistry, loc.Slug, j, i)
		}
		seen[loc.Slug] = i
	}
	return nil
}

// BySlug looks up an entry by slug.
func (r Registry) BySlug(slug string) (NamedLocation, bool) {
	for _, loc := range r {
		if loc.Slug == slug {
			return loc, true
		}
	}
	return NamedLocation{}, false
}

// ParseRegistry decodes a YAML sequence of {name, slug, lat, long} records.
func ParseRegistry(data []byte) (Registry, error) {
	var r Registry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegistry, err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadRegistry reads and validates a registry file. An empty path yields the
// built-in metropolitan registry.
func LoadRegistry(path string) (Registry, error) {
	if path == "" {
		return MetropolitanLocations(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry %q: %w", path, err)
	}
	r, err := ParseRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("load registry %q: %w", path, err)
	}
	return r, nil
}
