package services

import (
	"time"

	"nav-tracking-service/internal/domain"
	"nav-tracking-service/internal/geo"
)

// NearestGeometryIndex returns the index of the route geometry coordinate
// closest to pos by great-circle distance. Linear scan: geometries are
// bounded in size and updates are infrequent, so no spatial index is kept.
// Ties go to the lowest index.
func NearestGeometryIndex(pos domain.Coordinate, geometry []domain.Coordinate) int {
	best := 0
	bestDist := -1.0

	for i, c := range geometry {
		d := geo.DistanceMeters(pos, c)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = i
		}
	}

	return best
}

// EstimateProgress projects the current position onto the route geometry and
// derives the completion fraction, remaining distance/time, and ETA.
//
// The fraction is matchedIndex over the last geometry index, so it can move
// backward when the live position regresses along the route; no forward-only
// clamp is applied.
func EstimateProgress(
	pos domain.Coordinate,
	route *domain.Route,
	speedKmh float64,
	bearingDeg float64,
	now time.Time,
) domain.ProgressState {
	state := domain.ProgressState{
		SpeedKmh:   speedKmh,
		BearingDeg: bearingDeg,
	}

	if route == nil || len(route.Geometry) == 0 {
		return state
	}

	idx := NearestGeometryIndex(pos, route.Geometry)
	state.MatchedIndex = idx

	if len(route.Geometry) > 1 {
		state.Fraction = float64(idx) / float64(len(route.Geometry)-1)
	}

	state.RemainingMeters = route.DistanceMeters * (1 - state.Fraction)
	state.RemainingTime = time.Duration((1 - state.Fraction) * float64(route.Duration))

	// A live speed gives a real prediction; otherwise fall back to the
	// route's own estimate and flag it as such.
	if speedKmh > 0 {
		hours := (state.RemainingMeters / 1000) / speedKmh
		state.RemainingTime = time.Duration(hours * float64(time.Hour))
		state.ETAFromSpeed = true
	}
	state.ETA = now.Add(state.RemainingTime)

	return state
}
