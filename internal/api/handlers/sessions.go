package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"nav-tracking-service/internal/adapters/geolocation"
	"nav-tracking-service/internal/adapters/render"
	"nav-tracking-service/internal/api/dto"
	"nav-tracking-service/internal/domain"
	"nav-tracking-service/internal/ports"
	"nav-tracking-service/internal/services"
)

// FixSourceConfig tells the handler where MQTT-backed sessions get their
// fixes. An empty BrokerURL disables the "mqtt" source option.
type FixSourceConfig struct {
	BrokerURL   string
	TopicPrefix string
}

// SessionHandler exposes the tracking-session lifecycle over HTTP. Fixes are
// pushed through an in-process channel source or arrive over MQTT; everything
// else the session does is readable only as snapshots.
type SessionHandler struct {
	Registry *SessionRegistry
	Routes   ports.RouteService
	Trips    ports.TripStore
	Defaults services.Options
	Sources  FixSourceConfig
}

// Create starts a new tracking session and subscribes it to its fix source.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSessionRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	mode := domain.ModeDriving
	if req.Mode != "" {
		m, err := domain.ParseTravelMode(req.Mode)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		mode = m
	}

	opts := h.Defaults
	opts.HighAccuracy = req.HighAccuracy
	opts.RotateMarker = req.RotateMarker
	opts.TurnIcons = req.TurnIcons
	opts.AllowModeChange = req.AllowModeChange
	opts.DistanceMarkerMeters = req.DistanceMarkerMeters

	id := uuid.NewString()
	entry := &sessionEntry{events: render.NewBroadcaster()}

	var source ports.GeolocationSource
	switch req.Source {
	case "", "push":
		push := geolocation.NewChannelSource()
		entry.source = push
		source = push
	case "mqtt":
		if h.Sources.BrokerURL == "" {
			writeError(w, r, http.StatusBadRequest, "mqtt fix source is not configured")
			return
		}
		mq, err := geolocation.NewMQTTSource(h.Sources.BrokerURL, "nav-"+id, h.Sources.TopicPrefix+id)
		if err != nil {
			log.Printf("mqtt source failed: %v", err)
			writeError(w, r, http.StatusBadGateway, "mqtt broker unavailable")
			return
		}
		entry.closeSource = mq.Close
		source = mq
	default:
		writeError(w, r, http.StatusBadRequest, "unknown fix source "+req.Source)
		return
	}

	session, err := services.NewTrackingSession(id, mode, services.Deps{
		Source:   source,
		Routes:   h.Routes,
		Renderer: entry.events,
		Trips:    h.Trips,
	}, opts)
	if err != nil {
		log.Printf("create session failed: %v", err)
		if entry.closeSource != nil {
			entry.closeSource()
		}
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	// The session outlives this request; its lifetime is bounded by Stop.
	if err := session.Start(context.Background()); err != nil {
		log.Printf("start session failed: %v", err)
		if entry.closeSource != nil {
			entry.closeSource()
		}
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	entry.session = session
	h.Registry.add(id, entry)
	log.Printf("session created id=%s mode=%s", id, mode)

	writeJSON(w, r, http.StatusCreated, dto.CreateSessionResponse{
		SessionID: id,
		State:     string(session.State()),
	})
}

// Get returns the session's current snapshot.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}
	writeJSON(w, r, http.StatusOK, toSnapshotResponse(entry.session.Snapshot()))
}

// PushFix feeds one position fix into the session's geolocation stream.
func (h *SessionHandler) PushFix(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}

	if entry.source == nil {
		writeError(w, r, http.StatusConflict, "session receives fixes over mqtt")
		return
	}

	var req dto.FixRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	fix := domain.Fix{
		Coordinate: domain.Coordinate{Lat: req.Lat, Lng: req.Lng},
		Time:       time.UnixMilli(req.TimestampMS).UTC(),
	}
	if req.TimestampMS == 0 {
		fix.Time = time.Now()
	}

	if err := entry.source.Push(fix); err != nil {
		writeError(w, r, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// SetDestination sets or replaces the session's destination.
func (h *SessionHandler) SetDestination(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}

	var req dto.DestinationRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := entry.session.SetDestination(domain.Coordinate{Lat: req.Lat, Lng: req.Lng}); err != nil {
		var invalid *domain.InvalidWaypointError
		if errors.As(err, &invalid) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, r, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// ClearDestination drops the destination, route, and progress.
func (h *SessionHandler) ClearDestination(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}

	if err := entry.session.ClearDestination(); err != nil {
		writeError(w, r, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// SetMode changes the travel mode, triggering a re-route if a destination
// is set.
func (h *SessionHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}

	var req dto.ModeRequest
	if err := decodeStrict(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	mode, err := domain.ParseTravelMode(req.Mode)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := entry.session.SetMode(mode); err != nil {
		writeError(w, r, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Stop ends the session and returns its trip summary.
func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}

	summary, err := entry.session.Stop()
	if err != nil {
		writeError(w, r, http.StatusConflict, err.Error())
		return
	}

	if entry.closeSource != nil {
		entry.closeSource()
	}
	h.Registry.remove(summary.SessionID)
	log.Printf("session stopped id=%s fixes=%d distance_m=%.1f",
		summary.SessionID, summary.FixCount, summary.DistanceMeters)

	writeJSON(w, r, http.StatusOK, toTripResponse(summary))
}

func (h *SessionHandler) entry(w http.ResponseWriter, r *http.Request) (*sessionEntry, bool) {
	id := r.PathValue("id")
	entry, ok := h.Registry.get(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, "session not found")
		return nil, false
	}
	return entry, true
}

func toCoordResponse(c domain.Coordinate) *dto.CoordinateResponse {
	return &dto.CoordinateResponse{Lat: c.Lat, Lng: c.Lng}
}

func toSnapshotResponse(s services.Snapshot) dto.SnapshotResponse {
	res := dto.SnapshotResponse{
		SessionID:      s.SessionID,
		State:          string(s.State),
		Mode:           string(s.Mode),
		Warning:        s.Warning,
		FixCount:       s.FixCount,
		TraveledMeters: s.TraveledMeters,
	}
	if !s.StartedAt.IsZero() {
		started := s.StartedAt
		res.StartedAt = &started
	}
	if s.Destination != nil {
		res.Destination = toCoordResponse(*s.Destination)
	}
	if s.Position != nil {
		res.Position = toCoordResponse(s.Position.Coordinate)
	}
	if s.Route != nil {
		route := dto.RouteResponse{
			DistanceMeters:  s.Route.DistanceMeters,
			DurationSeconds: s.Route.Duration.Seconds(),
			Fallback:        s.Route.Fallback,
			Geometry:        make([]dto.CoordinateResponse, 0, len(s.Route.Geometry)),
		}
		for _, c := range s.Route.Geometry {
			route.Geometry = append(route.Geometry, dto.CoordinateResponse{Lat: c.Lat, Lng: c.Lng})
		}
		res.Route = &route
	}
	for _, in := range s.Instructions {
		res.Instructions = append(res.Instructions, dto.InstructionResponse{
			Text:            in.Text,
			DistanceMeters:  in.DistanceMeters,
			DistanceDisplay: domain.PresentableDistance(in.DistanceMeters),
			DurationSeconds: in.Duration.Seconds(),
			Maneuver:        in.Maneuver,
			Modifier:        in.Modifier,
			Icon:            in.Icon,
		})
	}
	if s.Progress != nil {
		p := s.Progress
		res.Progress = &dto.ProgressResponse{
			Fraction:         p.Fraction,
			RemainingMeters:  p.RemainingMeters,
			RemainingDisplay: domain.PresentableDistance(p.RemainingMeters),
			RemainingSeconds: p.RemainingTime.Seconds(),
			ETA:              p.ETA.UTC().Format(time.RFC3339),
			ETADisplay:       domain.PresentableETA(p.ETA),
			ETAIsLive:        p.ETAFromSpeed,
			SpeedKmh:         p.SpeedKmh,
			BearingDeg:       p.BearingDeg,
		}
	}
	return res
}

func toTripResponse(t domain.TripSummary) dto.TripSummaryResponse {
	return dto.TripSummaryResponse{
		SessionID:       t.SessionID,
		Mode:            string(t.Mode),
		StartedAt:       t.StartedAt,
		EndedAt:         t.EndedAt,
		FixCount:        t.FixCount,
		DistanceMeters:  t.DistanceMeters,
		DistanceDisplay: domain.PresentableDistance(t.DistanceMeters),
	}
}
