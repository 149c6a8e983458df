package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// Earth radius in kilometers
	EarthRadiusKm = 6371.0
)

// Haversine calculates the great-circle distance between two points
// Returns distance in kilometers
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Point is a geographic coordinate pair
type Point struct {
	Latitude  float64
	Longitude float64
}

// ParsePoint parses "lat,lng"
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("invalid point %q: want lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return Point{}, fmt.Errorf("invalid latitude in %q", s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || lng < -180 || lng > 180 {
		return Point{}, fmt.Errorf("invalid longitude in %q", s)
	}
	return Point{Latitude: lat, Longitude: lng}, nil
}

// DistanceTo returns the distance to q in kilometers
func (p Point) DistanceTo(q Point) float64 {
	return Haversine(p.Latitude, p.Longitude, q.Latitude, q.Longitude)
}

// Within reports whether q lies within radiusKm of p
func (p Point) Within(q Point, radiusKm float64) bool {
	return p.DistanceTo(q) <= radiusKm
}
