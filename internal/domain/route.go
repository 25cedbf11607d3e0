package domain

import (
	"fmt"
	"time"
)

// TravelMode selects the routing profile. Changing it invalidates the
// cached route.
type TravelMode string

const (
	ModeDriving TravelMode = "driving"
	ModeWalking TravelMode = "walking"
	ModeCycling TravelMode = "cycling"
)

// ParseTravelMode validates a wire-format mode string.
func ParseTravelMode(s string) (TravelMode, error) {
	switch TravelMode(s) {
	case ModeDriving, ModeWalking, ModeCycling:
		return TravelMode(s), nil
	}
	return "", fmt.Errorf("unknown travel mode %q", s)
}

// Step is one raw maneuver as returned by the routing service, before
// instruction processing.
type Step struct {
	Instruction    string
	Maneuver       string
	Modifier       string
	DistanceMeters float64
	Duration       time.Duration
}

// Route is the path returned by the routing service between two or more
// waypoints. It is owned by the route manager: replaced wholesale on
// recomputation, never mutated in place. Geometry is ordered origin first.
type Route struct {
	Geometry       []Coordinate
	DistanceMeters float64
	Duration       time.Duration
	Steps          []Step

	// Fallback marks a synthesized straight-line route offered when the
	// routing service failed, so presentation can render it distinctly.
	Fallback bool
}

// NewStraightLineRoute synthesizes a two-point fallback route between the
// outer waypoints when the routing service is unavailable or found no route.
// distanceMeters is the great-circle distance between the two points; no
// duration or maneuvers are estimated.
func NewStraightLineRoute(origin, destination Coordinate, distanceMeters float64) *Route {
	return &Route{
		Geometry:       []Coordinate{origin, destination},
		DistanceMeters: distanceMeters,
		Fallback:       true,
	}
}

// Instruction is one presentable turn-by-turn maneuver derived from a route
// step. Derived data: discarded and recomputed whenever the route changes.
type Instruction struct {
	Text           string
	DistanceMeters float64
	Duration       time.Duration
	Maneuver       string
	Modifier       string
	Icon           string
}

// TripSummary is the terminal artifact of a stopped session.
type TripSummary struct {
	SessionID      string
	Mode           TravelMode
	StartedAt      time.Time
	EndedAt        time.Time
	FixCount       int
	DistanceMeters float64
}
