package domain

import (
	"errors"
	"fmt"
)

// ErrStaleRouteResponse marks a route response that arrived after a newer
// request superseded it. Discarded silently; never an observable failure.
var ErrStaleRouteResponse = errors.New("route response superseded by a newer request")

// InvalidFixError reports a malformed position fix. The fix is rejected at
// the boundary and never enters the movement history.
type InvalidFixError struct {
	Lat    float64
	Lng    float64
	Reason string
}

func (e *InvalidFixError) Error() string {
	return fmt.Sprintf("invalid fix (%g, %g): %s", e.Lat, e.Lng, e.Reason)
}

// InvalidWaypointError reports a malformed route waypoint. Rejected locally,
// never sent to the routing service.
type InvalidWaypointError struct {
	Index  int
	Lat    float64
	Lng    float64
	Reason string
}

func (e *InvalidWaypointError) Error() string {
	return fmt.Sprintf("invalid waypoint %d (%g, %g): %s", e.Index, e.Lat, e.Lng, e.Reason)
}

// GeolocationError reports a failure of the geolocation source (permission
// denied, timeout). Tracking halts when one is received; there is no
// automatic retry.
type GeolocationError struct {
	Reason string
	Err    error
}

func (e *GeolocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geolocation: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("geolocation: %s", e.Reason)
}

func (e *GeolocationError) Unwrap() error { return e.Err }

// RouteServiceError reports a routing-service failure: network error, no
// route found, or a malformed response. The previous route (if any) stays
// active and the session remains usable.
type RouteServiceError struct {
	Code    string
	Message string
	Err     error
}

func (e *RouteServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("route service: %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("route service: %s: %s", e.Code, e.Message)
}

func (e *RouteServiceError) Unwrap() error { return e.Err }
