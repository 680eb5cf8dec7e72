package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var cityHall = Coordinate{Latitude: 37.5665, Longitude: 126.9780}

func TestDistanceMeters_Symmetric(t *testing.T) {
	pairs := [][2]Coordinate{
		{cityHall, {Latitude: 37.5660, Longitude: 126.9785}},
		{cityHall, {Latitude: 35.1796, Longitude: 129.0756}},
		{{Latitude: -33.8688, Longitude: 151.2093}, {Latitude: 51.5074, Longitude: -0.1278}},
		{{Latitude: 0, Longitude: 179.9}, {Latitude: 0, Longitude: -179.9}},
	}
	for _, p := range pairs {
		assert.InDelta(t, DistanceMeters(p[0], p[1]), DistanceMeters(p[1], p[0]), 1e-9)
	}
}

func TestDistanceMeters_ZeroForIdenticalPoints(t *testing.T) {
	assert.Equal(t, 0.0, DistanceMeters(cityHall, cityHall))
}

func TestDistanceMeters_MonotonicInSeparation(t *testing.T) {
	prev := 0.0
	for i := 1; i <= 10; i++ {
		p := Coordinate{Latitude: cityHall.Latitude + float64(i)*0.001, Longitude: cityHall.Longitude}
		d := DistanceMeters(cityHall, p)
		assert.Greater(t, d, prev)
		prev = d
	}
}

func TestDistanceMeters_KnownDistance(t *testing.T) {
	// Seoul City Hall to Busan City Hall is roughly 325 km.
	busan := Coordinate{Latitude: 35.1796, Longitude: 129.0756}
	assert.InDelta(t, 325000, DistanceMeters(cityHall, busan), 5000)
}

func TestIsWithinRadius(t *testing.T) {
	near := &Coordinate{Latitude: 37.5660, Longitude: 126.9785}
	far := &Coordinate{Latitude: 37.5000, Longitude: 126.9000}
	center := cityHall

	assert.True(t, IsWithinRadius(&center, near, 100))
	assert.False(t, IsWithinRadius(&center, far, 100))
}

func TestIsWithinRadius_FailsClosed(t *testing.T) {
	center := cityHall
	point := cityHall

	assert.False(t, IsWithinRadius(nil, &point, 100))
	assert.False(t, IsWithinRadius(&center, nil, 100))
	assert.False(t, IsWithinRadius(&center, &point, 0))
	assert.False(t, IsWithinRadius(&center, &Coordinate{Latitude: 91, Longitude: 0}, 1e9))
}

func TestNewCoordinate(t *testing.T) {
	lat, lon := 37.5, 127.0
	assert.Nil(t, NewCoordinate(nil, &lon))
	assert.Nil(t, NewCoordinate(&lat, nil))
	assert.Equal(t, &Coordinate{Latitude: 37.5, Longitude: 127.0}, NewCoordinate(&lat, &lon))
}
