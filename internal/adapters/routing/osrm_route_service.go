package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"nav-tracking-service/internal/domain"
	"nav-tracking-service/internal/platform/obs"
	"nav-tracking-service/internal/ports"
)

// OSRMRouteService implements RouteService against an OSRM-compatible HTTP
// endpoint.
//
// It coordinates:
//   - Profile mapping from travel mode
//   - Short-TTL route response caching
//   - External API calls with retry/backoff
//   - Axis-order normalization (the wire carries lng,lat pairs)
//
// The service is safe for concurrent use.
type OSRMRouteService struct {
	session *http.Client
	baseURL string
	cache   ports.RouteCache
}

func NewOSRMRouteService(baseURL string, cache ports.RouteCache) (*OSRMRouteService, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("OSRM base URL is empty")
	}

	return &OSRMRouteService{
		session: &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   cache,
	}, nil
}

type osrmManeuver struct {
	Instruction string `json:"instruction"`
	Type        string `json:"type"`
	Modifier    string `json:"modifier"`
}

type osrmStep struct {
	Distance float64      `json:"distance"`
	Duration float64      `json:"duration"`
	Maneuver osrmManeuver `json:"maneuver"`
}

type osrmLeg struct {
	Steps []osrmStep `json:"steps"`
}

type osrmRoute struct {
	Distance float64           `json:"distance"`
	Duration float64           `json:"duration"`
	Geometry *geojson.Geometry `json:"geometry"`
	Legs     []osrmLeg         `json:"legs"`
}

type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

// GetRoute fetches a route for the waypoints and mode. Failures surface as
// *domain.RouteServiceError; the caller decides whether to fall back.
func (o *OSRMRouteService) GetRoute(
	ctx context.Context,
	waypoints []domain.Coordinate,
	mode domain.TravelMode,
) (_ *domain.Route, err error) {
	defer obs.Time(ctx, "osrm.GetRoute")(&err)

	if len(waypoints) < 2 {
		return nil, fmt.Errorf("get route: need at least 2 waypoints, got %d", len(waypoints))
	}

	key := cacheKey(waypoints, mode)
	if o.cache != nil {
		route, ok, cerr := o.cache.Get(ctx, key)
		if cerr != nil {
			log.Printf("route cache read failed: %v", cerr)
		} else if ok {
			return route, nil
		}
	}

	url := o.routeURL(waypoints, mode)
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, url)
	})
	if err != nil {
		var he *httpStatusError
		if errors.As(err, &he) {
			return nil, serviceErrorFromBody(he)
		}
		return nil, &domain.RouteServiceError{Code: "Network", Message: "route request failed", Err: err}
	}
	defer resp.Body.Close()

	var parsed osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &domain.RouteServiceError{Code: "Malformed", Message: "decode route response", Err: err}
	}

	if parsed.Code != "" && parsed.Code != "Ok" {
		return nil, &domain.RouteServiceError{Code: parsed.Code, Message: parsed.Message}
	}
	if len(parsed.Routes) == 0 {
		return nil, &domain.RouteServiceError{Code: "NoRoute", Message: "service returned zero routes"}
	}

	route, err := toDomainRoute(parsed.Routes[0])
	if err != nil {
		return nil, &domain.RouteServiceError{Code: "Malformed", Message: "invalid route payload", Err: err}
	}

	if o.cache != nil {
		if err := o.cache.Put(ctx, key, route); err != nil {
			log.Printf("route cache write failed: %v", err)
		}
	}

	return route, nil
}

// routeURL builds the OSRM route query: lng,lat pairs separated by ';',
// full GeoJSON geometry and step detail requested.
func (o *OSRMRouteService) routeURL(waypoints []domain.Coordinate, mode domain.TravelMode) string {
	coords := make([]string, 0, len(waypoints))
	for _, w := range waypoints {
		coords = append(coords, fmt.Sprintf("%.6f,%.6f", w.Lng, w.Lat))
	}

	return fmt.Sprintf(
		"%s/route/v1/%s/%s?overview=full&geometries=geojson&steps=true",
		o.baseURL, profileFor(mode), strings.Join(coords, ";"),
	)
}

func profileFor(mode domain.TravelMode) string {
	switch mode {
	case domain.ModeWalking:
		return "walking"
	case domain.ModeCycling:
		return "cycling"
	default:
		return "driving"
	}
}

// cacheKey rounds waypoints to ~1 m precision so GPS jitter maps repeated
// requests onto the same entry.
func cacheKey(waypoints []domain.Coordinate, mode domain.TravelMode) string {
	var b strings.Builder
	b.WriteString("route:")
	b.WriteString(string(mode))
	for _, w := range waypoints {
		fmt.Fprintf(&b, ":%.5f,%.5f", w.Lat, w.Lng)
	}
	return b.String()
}

// serviceErrorFromBody lifts the service's code/message pair out of an HTTP
// error body when present.
func serviceErrorFromBody(he *httpStatusError) *domain.RouteServiceError {
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(he.Body), &body); err == nil && body.Code != "" {
		return &domain.RouteServiceError{Code: body.Code, Message: body.Message}
	}
	return &domain.RouteServiceError{
		Code:    fmt.Sprintf("HTTP%d", he.Code),
		Message: he.Body,
	}
}

// toDomainRoute converts the wire route, swapping the lng,lat axis order to
// the internal lat,lng convention.
func toDomainRoute(r osrmRoute) (*domain.Route, error) {
	if r.Geometry == nil {
		return nil, errors.New("route has no geometry")
	}

	line, ok := r.Geometry.Geometry().(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("route geometry is %T, want LineString", r.Geometry.Geometry())
	}
	if len(line) == 0 {
		return nil, errors.New("route geometry is empty")
	}

	geometry := make([]domain.Coordinate, 0, len(line))
	for _, p := range line {
		geometry = append(geometry, domain.Coordinate{Lat: p.Lat(), Lng: p.Lon()})
	}

	var steps []domain.Step
	for _, leg := range r.Legs {
		for _, s := range leg.Steps {
			steps = append(steps, domain.Step{
				Instruction:    s.Maneuver.Instruction,
				Maneuver:       s.Maneuver.Type,
				Modifier:       s.Maneuver.Modifier,
				DistanceMeters: s.Distance,
				Duration:       time.Duration(s.Duration * float64(time.Second)),
			})
		}
	}

	return &domain.Route{
		Geometry:       geometry,
		DistanceMeters: r.Distance,
		Duration:       time.Duration(r.Duration * float64(time.Second)),
		Steps:          steps,
	}, nil
}
