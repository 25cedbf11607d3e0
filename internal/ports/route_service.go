package ports

import (
	"context"

	"nav-tracking-service/internal/domain"
)

// RouteService is the contract for retrieving a route between two or more
// waypoints for a travel mode. The first waypoint is the live position, the
// last is the destination.
//
// Implementations return *domain.RouteServiceError for service-level
// failures (network error, no route found, malformed response).
type RouteService interface {
	GetRoute(ctx context.Context, waypoints []domain.Coordinate, mode domain.TravelMode) (*domain.Route, error)
}
