package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nav-tracking-service/internal/adapters/routing"
	"nav-tracking-service/internal/api/dto"
	"nav-tracking-service/internal/api/handlers"
	"nav-tracking-service/internal/services"
)

func newTestServer(t *testing.T) (*httptest.Server, *routing.MockRouteService) {
	t.Helper()

	routes := routing.NewMockRouteService()
	router := NewRouter(handlers.NewSessionRegistry(), routes, nil, services.Options{
		RerouteThresholdMeters: 5000,
	}, handlers.FixSourceConfig{})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, routes
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestSessionFlowOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	var created dto.CreateSessionResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/sessions", dto.CreateSessionRequest{Mode: "driving"}, &created)
	if status != http.StatusCreated {
		t.Fatalf("create session status = %d, want 201", status)
	}
	if created.SessionID == "" {
		t.Fatal("create session returned empty id")
	}

	base := srv.URL + "/sessions/" + created.SessionID

	status = doJSON(t, http.MethodPost, base+"/fixes", dto.FixRequest{Lat: 40.0, Lng: -74.0}, nil)
	if status != http.StatusAccepted {
		t.Fatalf("push fix status = %d, want 202", status)
	}

	status = doJSON(t, http.MethodPut, base+"/destination", dto.DestinationRequest{Lat: 40.01, Lng: -74.0}, nil)
	if status != http.StatusOK {
		t.Fatalf("set destination status = %d, want 200", status)
	}

	// Route resolution is asynchronous; poll the snapshot until it lands.
	deadline := time.Now().Add(2 * time.Second)
	var snap dto.SnapshotResponse
	for {
		doJSON(t, http.MethodGet, base, nil, &snap)
		if snap.Route != nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("route never appeared in snapshot: %+v", snap)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if snap.State != "routed" {
		t.Fatalf("state = %q, want routed", snap.State)
	}
	if snap.Route.DistanceMeters <= 0 {
		t.Fatalf("route distance = %v, want > 0", snap.Route.DistanceMeters)
	}
	if len(snap.Instructions) == 0 {
		t.Fatal("expected turn instructions after routing")
	}

	var summary dto.TripSummaryResponse
	status = doJSON(t, http.MethodDelete, base, nil, &summary)
	if status != http.StatusOK {
		t.Fatalf("stop status = %d, want 200", status)
	}
	if summary.FixCount != 1 {
		t.Fatalf("summary fix count = %d, want 1", summary.FixCount)
	}

	// Stopped sessions are gone from the registry.
	status = doJSON(t, http.MethodGet, base, nil, nil)
	if status != http.StatusNotFound {
		t.Fatalf("get after stop status = %d, want 404", status)
	}
}

func TestSessionValidationOverHTTP(t *testing.T) {
	srv, routes := newTestServer(t)

	var created dto.CreateSessionResponse
	doJSON(t, http.MethodPost, srv.URL+"/sessions", dto.CreateSessionRequest{}, &created)
	base := srv.URL + "/sessions/" + created.SessionID

	status := doJSON(t, http.MethodPost, base+"/fixes", map[string]any{"lat": 91.0, "lng": 0.0}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("out-of-range fix status = %d, want 400", status)
	}

	status = doJSON(t, http.MethodPost, base+"/fixes", map[string]any{"lat": 1.0, "lng": 1.0, "bogus": true}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("unknown field status = %d, want 400", status)
	}

	status = doJSON(t, http.MethodPut, base+"/mode", dto.ModeRequest{Mode: "hovercraft"}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("bad mode status = %d, want 400", status)
	}

	if n := routes.Calls(); n != 0 {
		t.Fatalf("route service calls = %d, want 0", n)
	}

	status = doJSON(t, http.MethodGet, srv.URL+"/sessions/no-such-id", nil, nil)
	if status != http.StatusNotFound {
		t.Fatalf("unknown session status = %d, want 404", status)
	}
}

func TestTripsUnconfiguredOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(fmt.Sprintf("%s/trips", srv.URL))
	if err != nil {
		t.Fatalf("GET /trips: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("trips without store status = %d, want 503", resp.StatusCode)
	}
}
