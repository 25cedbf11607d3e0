package routing

import (
	"context"
	"sync"
	"time"

	"nav-tracking-service/internal/domain"
	"nav-tracking-service/internal/geo"
)

// MockRouteService is a test double for ports.RouteService. By default it
// synthesizes a route whose geometry is the waypoint list itself, with the
// great-circle leg sum as distance and a fixed 36 km/h pace as duration.
type MockRouteService struct {
	mu            sync.Mutex
	err           error
	calls         int
	lastWaypoints []domain.Coordinate
	lastMode      domain.TravelMode
	block         chan struct{}
}

func NewMockRouteService() *MockRouteService {
	return &MockRouteService{}
}

// FailWith makes subsequent calls return err instead of a route.
func (m *MockRouteService) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// BlockUntil makes subsequent calls wait on release before returning,
// letting tests interleave the resolution order of in-flight requests.
func (m *MockRouteService) BlockUntil(release chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.block = release
}

func (m *MockRouteService) GetRoute(
	ctx context.Context,
	waypoints []domain.Coordinate,
	mode domain.TravelMode,
) (*domain.Route, error) {
	m.mu.Lock()
	m.calls++
	m.lastWaypoints = append([]domain.Coordinate(nil), waypoints...)
	m.lastMode = mode
	err := m.err
	block := m.block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}

	total := 0.0
	for i := 1; i < len(waypoints); i++ {
		total += geo.DistanceMeters(waypoints[i-1], waypoints[i])
	}

	geometry := append([]domain.Coordinate(nil), waypoints...)
	return &domain.Route{
		Geometry:       geometry,
		DistanceMeters: total,
		Duration:       time.Duration(total/10) * time.Second,
		Steps: []domain.Step{
			{Instruction: "Depart", Maneuver: "depart", DistanceMeters: total, Duration: time.Duration(total/10) * time.Second},
			{Instruction: "Arrive", Maneuver: "arrive", DistanceMeters: 0},
		},
	}, nil
}

func (m *MockRouteService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockRouteService) LastWaypoints() []domain.Coordinate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Coordinate(nil), m.lastWaypoints...)
}

func (m *MockRouteService) LastMode() domain.TravelMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastMode
}
