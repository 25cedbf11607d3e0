package domain

import "time"

// ProgressState is the live navigation snapshot recomputed on every accepted
// fix and on the progress timer while a route is active.
//
// Fraction is derived from nearest-point matching against the route geometry
// and may move backward if the live position regresses along the route.
type ProgressState struct {
	Fraction        float64
	RemainingMeters float64
	RemainingTime   time.Duration
	ETA             time.Time

	// ETAFromSpeed distinguishes a live prediction (remaining distance over
	// current speed) from the route's own duration estimate used when the
	// vehicle is stationary.
	ETAFromSpeed bool

	SpeedKmh     float64
	BearingDeg   float64
	MatchedIndex int
}
