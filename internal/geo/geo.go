// Package geo provides the great-circle math shared by the tracking engine:
// haversine distance, initial bearing, and path length over a fix history.
package geo

import (
	"math"

	"nav-tracking-service/internal/domain"
)

const earthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle (haversine) distance between two
// coordinates in meters.
func DistanceMeters(a, b domain.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// BearingDegrees returns the initial course from a toward b as a compass
// heading in [0, 360), 0 = north. Identical points yield 0.
func BearingDegrees(a, b domain.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)

	deg := math.Atan2(y, x) * 180 / math.Pi
	deg = math.Mod(deg+360, 360)
	if deg == 360 {
		deg = 0
	}
	return deg
}

// PathMeters sums consecutive great-circle segment distances over an ordered
// sequence of fixes. Used for the distance-traveled summary on session stop.
func PathMeters(fixes []domain.Fix) float64 {
	total := 0.0
	for i := 1; i < len(fixes); i++ {
		total += DistanceMeters(fixes[i-1].Coordinate, fixes[i].Coordinate)
	}
	return total
}
