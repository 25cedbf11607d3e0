package routing

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"nav-tracking-service/internal/domain"
)

const osrmOkBody = `{
  "code": "Ok",
  "routes": [{
    "distance": 1113.2,
    "duration": 120.5,
    "geometry": {"type": "LineString", "coordinates": [[-74.0, 40.0], [-74.0, 40.005], [-74.0, 40.01]]},
    "legs": [{
      "steps": [
        {"distance": 556.6, "duration": 60, "maneuver": {"instruction": "Head north", "type": "depart", "modifier": ""}},
        {"distance": 556.6, "duration": 60, "maneuver": {"instruction": "Turn right", "type": "turn", "modifier": "right"}},
        {"distance": 0, "duration": 0, "maneuver": {"instruction": "You have arrived", "type": "arrive", "modifier": ""}}
      ]
    }]
  }]
}`

type memoryRouteCache struct {
	mu   sync.Mutex
	m    map[string]*domain.Route
	gets int
	puts int
}

func newMemoryRouteCache() *memoryRouteCache {
	return &memoryRouteCache{m: make(map[string]*domain.Route)}
}

func (c *memoryRouteCache) Get(ctx context.Context, key string) (*domain.Route, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	r, ok := c.m[key]
	return r, ok, nil
}

func (c *memoryRouteCache) Put(ctx context.Context, key string, route *domain.Route) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.m[key] = route
	return nil
}

func waypointsNY() []domain.Coordinate {
	return []domain.Coordinate{{Lat: 40.0, Lng: -74.0}, {Lat: 40.01, Lng: -74.0}}
}

func TestOSRMGetRouteParsesResponse(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(osrmOkBody))
	}))
	defer srv.Close()

	svc, err := NewOSRMRouteService(srv.URL, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	route, err := svc.GetRoute(context.Background(), waypointsNY(), domain.ModeDriving)
	if err != nil {
		t.Fatalf("get route: %v", err)
	}

	if !strings.HasPrefix(gotPath, "/route/v1/driving/-74.000000,40.000000;-74.000000,40.010000") {
		t.Fatalf("request path = %q", gotPath)
	}
	if !strings.Contains(gotPath, "geometries=geojson") || !strings.Contains(gotPath, "steps=true") {
		t.Fatalf("request path missing flags: %q", gotPath)
	}

	if math.Abs(route.DistanceMeters-1113.2) > 0.01 {
		t.Fatalf("DistanceMeters = %f, want 1113.2", route.DistanceMeters)
	}
	if route.Duration != time.Duration(120.5*float64(time.Second)) {
		t.Fatalf("Duration = %v, want 2m0.5s", route.Duration)
	}

	// Wire order is lng,lat; internal order must be lat,lng.
	if len(route.Geometry) != 3 {
		t.Fatalf("geometry len = %d, want 3", len(route.Geometry))
	}
	if route.Geometry[0].Lat != 40.0 || route.Geometry[0].Lng != -74.0 {
		t.Fatalf("geometry[0] = %+v, axis order not swapped", route.Geometry[0])
	}

	if len(route.Steps) != 3 {
		t.Fatalf("steps len = %d, want 3", len(route.Steps))
	}
	if route.Steps[1].Maneuver != "turn" || route.Steps[1].Modifier != "right" {
		t.Fatalf("step[1] = %+v", route.Steps[1])
	}
}

func TestOSRMGetRouteZeroRoutes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "Ok", "routes": []}`))
	}))
	defer srv.Close()

	svc, _ := NewOSRMRouteService(srv.URL, nil)

	_, err := svc.GetRoute(context.Background(), waypointsNY(), domain.ModeDriving)
	var svcErr *domain.RouteServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("err = %v, want RouteServiceError", err)
	}
	if svcErr.Code != "NoRoute" {
		t.Fatalf("Code = %q, want NoRoute", svcErr.Code)
	}
}

func TestOSRMGetRouteServiceErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code": "InvalidQuery", "message": "coordinates are invalid"}`))
	}))
	defer srv.Close()

	svc, _ := NewOSRMRouteService(srv.URL, nil)

	_, err := svc.GetRoute(context.Background(), waypointsNY(), domain.ModeDriving)
	var svcErr *domain.RouteServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("err = %v, want RouteServiceError", err)
	}
	if svcErr.Code != "InvalidQuery" {
		t.Fatalf("Code = %q, want InvalidQuery", svcErr.Code)
	}
}

func TestOSRMGetRouteNoRouteCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "NoRoute", "message": "impossible route"}`))
	}))
	defer srv.Close()

	svc, _ := NewOSRMRouteService(srv.URL, nil)

	_, err := svc.GetRoute(context.Background(), waypointsNY(), domain.ModeDriving)
	var svcErr *domain.RouteServiceError
	if !errors.As(err, &svcErr) || svcErr.Code != "NoRoute" {
		t.Fatalf("err = %v, want NoRoute", err)
	}
}

func TestOSRMGetRouteUsesCache(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(osrmOkBody))
	}))
	defer srv.Close()

	cache := newMemoryRouteCache()
	svc, _ := NewOSRMRouteService(srv.URL, cache)
	ctx := context.Background()

	if _, err := svc.GetRoute(ctx, waypointsNY(), domain.ModeDriving); err != nil {
		t.Fatalf("first get: %v", err)
	}
	if _, err := svc.GetRoute(ctx, waypointsNY(), domain.ModeDriving); err != nil {
		t.Fatalf("second get: %v", err)
	}

	if hits != 1 {
		t.Fatalf("upstream hits = %d, want 1 (second served from cache)", hits)
	}

	// A different mode must not share the cache entry.
	if _, err := svc.GetRoute(ctx, waypointsNY(), domain.ModeWalking); err != nil {
		t.Fatalf("walking get: %v", err)
	}
	if hits != 2 {
		t.Fatalf("upstream hits = %d, want 2", hits)
	}
}

func TestOSRMGetRouteProfiles(t *testing.T) {
	cases := []struct {
		mode domain.TravelMode
		want string
	}{
		{domain.ModeDriving, "/route/v1/driving/"},
		{domain.ModeWalking, "/route/v1/walking/"},
		{domain.ModeCycling, "/route/v1/cycling/"},
	}

	for _, tc := range cases {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.Write([]byte(osrmOkBody))
		}))

		svc, _ := NewOSRMRouteService(srv.URL, nil)
		if _, err := svc.GetRoute(context.Background(), waypointsNY(), tc.mode); err != nil {
			t.Fatalf("%s: %v", tc.mode, err)
		}
		if !strings.HasPrefix(gotPath, tc.want) {
			t.Errorf("%s: path = %q, want prefix %q", tc.mode, gotPath, tc.want)
		}
		srv.Close()
	}
}
