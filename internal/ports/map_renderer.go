package ports

import "nav-tracking-service/internal/domain"

// MapRenderer is the contract for the map rendering surface. The engine only
// issues drawing commands and asks for map-level distances; how layers are
// actually displayed is a presentation concern.
type MapRenderer interface {
	SetView(c domain.Coordinate, zoom int)
	DrawMarker(id string, c domain.Coordinate, bearingDeg float64)
	RemoveLayer(id string)
	DrawPolyline(id string, coords []domain.Coordinate)
	FitBounds(coords []domain.Coordinate, padding int)

	// DistanceBetween is the renderer's great-circle distance helper, used
	// for the straight-line fallback figure.
	DistanceBetween(a, b domain.Coordinate) float64
}
