package ports

import (
	"context"

	"nav-tracking-service/internal/domain"
)

// RouteCache is a short-TTL cache of full route responses, consulted by the
// routing adapter to suppress request churn for repeated waypoint/mode pairs.
type RouteCache interface {
	Get(ctx context.Context, key string) (*domain.Route, bool, error)
	Put(ctx context.Context, key string, route *domain.Route) error
}
