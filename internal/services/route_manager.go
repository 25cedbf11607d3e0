package services

import (
	"context"
	"errors"
	"fmt"

	"nav-tracking-service/internal/domain"
	"nav-tracking-service/internal/geo"
	"nav-tracking-service/internal/ports"
)

// RouteResult is the sequence-tagged outcome of one route request, delivered
// back to the session event loop when the asynchronous fetch completes.
type RouteResult struct {
	Seq    uint64
	Origin domain.Coordinate
	Route  *domain.Route
	Err    error
}

// RouteManager owns the active route for one session. Each Request issues
// one asynchronous call to the routing service under a monotonically
// increasing sequence number; Apply installs a result only when it carries
// the newest issued sequence, so a superseded response can never overwrite a
// route fetched by a later request.
//
// Not safe for concurrent use: Request and Apply run on the session loop;
// only the service call itself leaves the loop.
type RouteManager struct {
	service ports.RouteService

	seq       uint64
	active    *domain.Route
	origin    domain.Coordinate
	hasOrigin bool
}

func NewRouteManager(service ports.RouteService) *RouteManager {
	return &RouteManager{service: service}
}

// Request validates the waypoints, assigns the next sequence number, and
// launches the route fetch. deliver is invoked exactly once with the tagged
// result, normally by sending it back into the session's event channel.
func (m *RouteManager) Request(
	ctx context.Context,
	waypoints []domain.Coordinate,
	mode domain.TravelMode,
	deliver func(RouteResult),
) (uint64, error) {
	if len(waypoints) < 2 {
		return 0, fmt.Errorf("request route: need at least 2 waypoints, got %d", len(waypoints))
	}
	for i, w := range waypoints {
		if !w.Valid() {
			return 0, &domain.InvalidWaypointError{
				Index:  i,
				Lat:    w.Lat,
				Lng:    w.Lng,
				Reason: "latitude/longitude out of range or not finite",
			}
		}
	}

	m.seq++
	seq := m.seq
	origin := waypoints[0]

	wps := make([]domain.Coordinate, len(waypoints))
	copy(wps, waypoints)

	go func() {
		route, err := m.service.GetRoute(ctx, wps, mode)
		deliver(RouteResult{Seq: seq, Origin: origin, Route: route, Err: err})
	}()

	return seq, nil
}

// Apply installs a fetched route. Results from superseded requests return
// domain.ErrStaleRouteResponse; service failures return the underlying error.
// In both cases the previously active route is left intact.
func (m *RouteManager) Apply(result RouteResult) (*domain.Route, error) {
	if result.Seq != m.seq {
		return nil, domain.ErrStaleRouteResponse
	}

	if result.Err != nil {
		var svcErr *domain.RouteServiceError
		if errors.As(result.Err, &svcErr) {
			return nil, result.Err
		}
		return nil, &domain.RouteServiceError{
			Code:    "Unknown",
			Message: "route request failed",
			Err:     result.Err,
		}
	}

	m.active = result.Route
	m.origin = result.Origin
	m.hasOrigin = true
	return m.active, nil
}

// Active returns the cached route, nil when none has been installed.
func (m *RouteManager) Active() *domain.Route { return m.active }

// Clear discards the active route and its routed origin, and supersedes any
// request still in flight: its result would otherwise carry the newest
// sequence and re-install a route nobody asked for anymore.
func (m *RouteManager) Clear() {
	m.active = nil
	m.hasOrigin = false
	m.seq++
}

// DisplacementExceeded reports whether pos has drifted more than threshold
// meters from the origin the active route was computed for. Always false
// until a route has been applied, so GPS jitter before the first route never
// triggers a re-route.
func (m *RouteManager) DisplacementExceeded(pos domain.Coordinate, thresholdMeters float64) bool {
	if !m.hasOrigin {
		return false
	}
	return geo.DistanceMeters(m.origin, pos) > thresholdMeters
}
