package store

import "github.com/albamate/albamate-backend/internal/pkg/geo"

// StoreLocation is the geofence of a store.
type StoreLocation struct {
	StoreID      string
	Location     geo.Coordinate
	RadiusMeters float64
}

// Contains fails closed on a nil point.
func (s StoreLocation) Contains(point *geo.Coordinate) bool {
	center := s.Location
	return geo.IsWithinRadius(&center, point, s.RadiusMeters)
}
