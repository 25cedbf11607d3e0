package services

import (
	"math"

	"nav-tracking-service/internal/domain"
	"nav-tracking-service/internal/geo"
)

// TrackUpdate is the derived motion state after ingesting one fix.
type TrackUpdate struct {
	SpeedKmh   float64
	BearingDeg float64
}

// PositionTracker ingests raw position fixes, validates them, derives
// instantaneous speed and bearing, and appends accepted fixes to the
// session's movement history.
//
// Not safe for concurrent use: it is owned by the session event loop.
type PositionTracker struct {
	history  domain.MovementHistory
	speedKmh float64
	bearing  float64
}

func NewPositionTracker() *PositionTracker {
	return &PositionTracker{}
}

// Ingest validates and records a fix, returning the updated speed and
// bearing. A rejected fix returns *domain.InvalidFixError and leaves the
// history untouched.
func (t *PositionTracker) Ingest(fix domain.Fix) (TrackUpdate, error) {
	if !fix.Valid() {
		reason := "latitude/longitude out of range"
		if math.IsNaN(fix.Lat) || math.IsNaN(fix.Lng) || math.IsInf(fix.Lat, 0) || math.IsInf(fix.Lng, 0) {
			reason = "latitude/longitude not finite"
		}
		return TrackUpdate{}, &domain.InvalidFixError{Lat: fix.Lat, Lng: fix.Lng, Reason: reason}
	}

	if prev, ok := t.history.Last(); ok {
		meters := geo.DistanceMeters(prev.Coordinate, fix.Coordinate)
		elapsed := fix.Time.Sub(prev.Time)

		// Non-positive elapsed time keeps the previous speed instead of
		// producing a divide-by-zero spike.
		if elapsed > 0 {
			t.speedKmh = (meters / 1000) / elapsed.Hours()
		}

		t.bearing = geo.BearingDegrees(prev.Coordinate, fix.Coordinate)
	}

	t.history.Append(fix)

	return TrackUpdate{SpeedKmh: t.speedKmh, BearingDeg: t.bearing}, nil
}

// Latest returns the most recently accepted fix.
func (t *PositionTracker) Latest() (domain.Fix, bool) { return t.history.Last() }

// History returns a copy of the movement history in arrival order.
func (t *PositionTracker) History() []domain.Fix { return t.history.Fixes() }

func (t *PositionTracker) FixCount() int { return t.history.Len() }

// TraveledMeters sums consecutive great-circle segment distances over the
// movement history. Reported in the trip summary on stop.
func (t *PositionTracker) TraveledMeters() float64 {
	return geo.PathMeters(t.history.Fixes())
}
