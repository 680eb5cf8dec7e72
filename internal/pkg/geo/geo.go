package geo

import "math"

// earthRadiusMeters is the mean Earth radius (6371 km).
const earthRadiusMeters = 6371000

// Coordinate is a WGS84 point in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinate returns nil unless both components are present.
func NewCoordinate(lat, lon *float64) *Coordinate {
	if lat == nil || lon == nil {
		return nil
	}
	return &Coordinate{Latitude: *lat, Longitude: *lon}
}

// Valid reports whether the coordinate lies within the latitude/longitude ranges.
func (c Coordinate) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// DistanceMeters returns the great-circle distance between a and b using the
// Haversine formula.
func DistanceMeters(a, b Coordinate) float64 {
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	lat1Rad := toRadians(a.Latitude)
	lat2Rad := toRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	// Rounding can push h a hair past 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// IsWithinRadius fails closed: a missing point or center, an out-of-range
// coordinate, or a non-positive radius is never inside.
func IsWithinRadius(center, point *Coordinate, radiusMeters float64) bool {
	if center == nil || point == nil {
		return false
	}
	if !center.Valid() || !point.Valid() {
		return false
	}
	if radiusMeters <= 0 || math.IsNaN(radiusMeters) {
		return false
	}
	return DistanceMeters(*center, *point) <= radiusMeters
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
