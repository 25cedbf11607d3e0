package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"nav-tracking-service/internal/domain"
	"nav-tracking-service/internal/geo"
	"nav-tracking-service/internal/ports"
)

// SessionState is the lifecycle state of a tracking session.
type SessionState string

const (
	// StateIdle: not tracking. Initial state, and terminal after Stop or a
	// geolocation failure.
	StateIdle SessionState = "idle"
	// StateTracking: consuming fixes, no destination set.
	StateTracking SessionState = "tracking"
	// StateRouted: consuming fixes with an active route to a destination.
	StateRouted SessionState = "routed"
)

// Options are the per-session tunables and feature flags. The variant
// features (marker rotation, distance markers, turn icons, mode toggle) are
// configuration here, not separate session implementations.
type Options struct {
	RerouteThresholdMeters float64       // displacement from routed origin that forces a re-route
	ProgressInterval       time.Duration // progress recomputation period while a route is active
	DebounceWindow         time.Duration // quiet window for destination changes; 0 disables
	HighAccuracy           bool
	FixTimeout             time.Duration
	ViewZoom               int

	RotateMarker         bool    // rotate the position marker to the live bearing
	DistanceMarkerMeters float64 // drop a marker every N traveled meters; 0 disables
	TurnIcons            bool    // attach icon identifiers to instructions
	AllowModeChange      bool    // permit travel-mode changes mid-session
}

func (o *Options) applyDefaults() {
	if o.RerouteThresholdMeters <= 0 {
		o.RerouteThresholdMeters = 50
	}
	if o.ProgressInterval <= 0 {
		o.ProgressInterval = 5 * time.Second
	}
	if o.FixTimeout <= 0 {
		o.FixTimeout = 10 * time.Second
	}
	if o.ViewZoom <= 0 {
		o.ViewZoom = 16
	}
}

// Deps are the external collaborators a session is wired to. Renderer and
// Trips are optional.
type Deps struct {
	Source   ports.GeolocationSource
	Routes   ports.RouteService
	Renderer ports.MapRenderer
	Trips    ports.TripStore
}

// Snapshot is the read-only presentation view of a session. The route
// pointer is shared but routes are immutable once fetched.
type Snapshot struct {
	SessionID      string
	State          SessionState
	Mode           domain.TravelMode
	Destination    *domain.Coordinate
	Position       *domain.Fix
	Route          *domain.Route
	Instructions   []domain.Instruction
	Progress       *domain.ProgressState
	Warning        string
	FixCount       int
	TraveledMeters float64
	StartedAt      time.Time
}

type eventKind int

const (
	evRouteResult eventKind = iota
	evCommand
)

type cmdKind int

const (
	cmdSetDestination cmdKind = iota
	cmdClearDestination
	cmdSetMode
	cmdStop
)

type stopReply struct {
	summary domain.TripSummary
	err     error
}

type command struct {
	kind  cmdKind
	dest  domain.Coordinate
	mode  domain.TravelMode
	reply chan stopReply
}

type event struct {
	kind  eventKind
	fix   ports.FixEvent
	route RouteResult
	cmd   command
}

// TrackingSession orchestrates one navigation session: it owns the position
// tracker, route manager, and progress state, and applies the re-route
// policy. All mutable state is confined to a single event-loop goroutine;
// the three external event sources (geolocation, progress timer, user
// commands) feed one channel and are processed strictly in arrival order.
//
// Construct one session per navigation; nothing is shared across sessions.
type TrackingSession struct {
	id   string
	opts Options

	source   ports.GeolocationSource
	renderer ports.MapRenderer
	trips    ports.TripStore

	tracker  *PositionTracker
	routes   *RouteManager
	debounce *Debouncer

	events chan event
	done   chan struct{}

	// loop-owned state, never touched outside the event loop
	state        SessionState
	mode         domain.TravelMode
	dest         *domain.Coordinate
	fallback     *domain.Route
	instructions []domain.Instruction
	progress     *domain.ProgressState
	speedKmh     float64
	bearingDeg   float64
	warn         string
	routePending bool
	startedAt    time.Time
	nextMarkerAt float64
	markerCount  int
	sub          ports.Subscription
	subEvents    <-chan ports.FixEvent
	ticker       *time.Ticker
	tickC        <-chan time.Time

	mu      sync.Mutex
	started bool
	snap    Snapshot
}

func NewTrackingSession(id string, mode domain.TravelMode, deps Deps, opts Options) (*TrackingSession, error) {
	if deps.Source == nil {
		return nil, errors.New("new tracking session: geolocation source is required")
	}
	if deps.Routes == nil {
		return nil, errors.New("new tracking session: route service is required")
	}
	if _, err := domain.ParseTravelMode(string(mode)); err != nil {
		return nil, fmt.Errorf("new tracking session: %w", err)
	}

	opts.applyDefaults()

	s := &TrackingSession{
		id:       id,
		opts:     opts,
		source:   deps.Source,
		renderer: deps.Renderer,
		trips:    deps.Trips,
		tracker:  NewPositionTracker(),
		routes:   NewRouteManager(deps.Routes),
		debounce: NewDebouncer(opts.DebounceWindow),
		events:   make(chan event, 64),
		done:     make(chan struct{}),
		state:    StateIdle,
		mode:     mode,
	}
	s.snap = Snapshot{SessionID: id, State: StateIdle, Mode: mode}

	return s, nil
}

func (s *TrackingSession) ID() string { return s.id }

// Start subscribes to the geolocation source and launches the event loop.
func (s *TrackingSession) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.New("session already started")
	}
	s.started = true
	s.mu.Unlock()

	sub, err := s.source.Subscribe(ctx, ports.SubscribeOptions{
		HighAccuracy: s.opts.HighAccuracy,
		Timeout:      s.opts.FixTimeout,
	})
	if err != nil {
		return &domain.GeolocationError{Reason: "subscribe failed", Err: err}
	}

	s.sub = sub
	s.subEvents = sub.Events()
	s.state = StateTracking
	s.startedAt = time.Now()
	s.publish()

	go s.loop(ctx)
	return nil
}

// SetDestination schedules a (debounced) destination change. The coordinate
// is validated here so malformed input never reaches the routing service.
func (s *TrackingSession) SetDestination(c domain.Coordinate) error {
	if !c.Valid() {
		return &domain.InvalidWaypointError{Index: 1, Lat: c.Lat, Lng: c.Lng, Reason: "latitude/longitude out of range or not finite"}
	}

	s.debounce.Schedule(func() {
		_ = s.send(event{kind: evCommand, cmd: command{kind: cmdSetDestination, dest: c}})
	})
	return nil
}

// ClearDestination discards the route, instructions, and progress, returning
// the session to plain tracking.
func (s *TrackingSession) ClearDestination() error {
	return s.send(event{kind: evCommand, cmd: command{kind: cmdClearDestination}})
}

// SetMode changes the travel mode, invalidating the cached route.
func (s *TrackingSession) SetMode(mode domain.TravelMode) error {
	if !s.opts.AllowModeChange {
		return errors.New("travel mode changes are disabled for this session")
	}
	if _, err := domain.ParseTravelMode(string(mode)); err != nil {
		return err
	}
	return s.send(event{kind: evCommand, cmd: command{kind: cmdSetMode, mode: mode}})
}

// Stop ends the session, releases the geolocation subscription and progress
// timer, and returns the trip summary.
func (s *TrackingSession) Stop() (domain.TripSummary, error) {
	reply := make(chan stopReply, 1)
	if err := s.send(event{kind: evCommand, cmd: command{kind: cmdStop, reply: reply}}); err != nil {
		return domain.TripSummary{}, err
	}
	r := <-reply
	return r.summary, r.err
}

// Snapshot returns the current read-only presentation state.
func (s *TrackingSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// State returns the current lifecycle state.
func (s *TrackingSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.State
}

// Done is closed when the event loop has exited.
func (s *TrackingSession) Done() <-chan struct{} { return s.done }

func (s *TrackingSession) send(ev event) error {
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return errors.New("session stopped")
	}
}

func (s *TrackingSession) loop(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			s.teardown()
			s.state = StateIdle
			s.publish()
			return

		case fe, ok := <-s.subEvents:
			if !ok {
				// Source exhausted (e.g. replayed trace ended). Keep serving
				// commands and snapshots until Stop.
				s.subEvents = nil
				continue
			}
			if fe.Err != nil {
				s.handleGeoError(fe.Err)
			} else {
				s.handleFix(fe.Fix)
			}
			s.publish()

		case <-s.tickC:
			s.recomputeProgress()
			s.publish()

		case ev := <-s.events:
			switch ev.kind {
			case evRouteResult:
				s.handleRouteResult(ev.route)
			case evCommand:
				if ev.cmd.kind == cmdStop {
					s.handleStop(ev.cmd.reply)
					s.publish()
					return
				}
				s.handleCommand(ev.cmd)
			}
			s.publish()
		}
	}
}

// handleGeoError halts tracking: the subscription is released and no retry
// is attempted. The session stays answerable for snapshots and Stop.
func (s *TrackingSession) handleGeoError(err error) {
	var geoErr *domain.GeolocationError
	if !errors.As(err, &geoErr) {
		geoErr = &domain.GeolocationError{Reason: "source failure", Err: err}
	}

	log.Printf("session=%s geolocation error: %v", s.id, geoErr)
	s.warn = geoErr.Error()

	if s.sub != nil {
		_ = s.sub.Close()
		s.sub = nil
	}
	s.subEvents = nil
	s.stopTicker()
	s.state = StateIdle
}

func (s *TrackingSession) handleFix(fix domain.Fix) {
	firstFix := s.tracker.FixCount() == 0

	up, err := s.tracker.Ingest(fix)
	if err != nil {
		s.warn = err.Error()
		return
	}
	s.speedKmh = up.SpeedKmh
	s.bearingDeg = up.BearingDeg

	if s.renderer != nil {
		if firstFix {
			s.renderer.SetView(fix.Coordinate, s.opts.ViewZoom)
		}
		bearing := 0.0
		if s.opts.RotateMarker {
			bearing = up.BearingDeg
		}
		s.renderer.DrawMarker("position", fix.Coordinate, bearing)
		s.drawDistanceMarkers()
	}

	switch {
	case s.dest != nil && s.activeRoute() == nil && !s.routePending:
		// Destination was set before the first fix arrived.
		s.requestRoute(fix.Coordinate)
	case s.state == StateRouted && !s.routePending &&
		s.routes.DisplacementExceeded(fix.Coordinate, s.opts.RerouteThresholdMeters):
		s.requestRoute(fix.Coordinate)
	}

	s.recomputeProgress()
}

// drawDistanceMarkers drops a marker each time traveled distance crosses the
// next configured multiple.
func (s *TrackingSession) drawDistanceMarkers() {
	if s.opts.DistanceMarkerMeters <= 0 {
		return
	}
	if s.nextMarkerAt == 0 {
		s.nextMarkerAt = s.opts.DistanceMarkerMeters
	}

	traveled := s.tracker.TraveledMeters()
	for traveled >= s.nextMarkerAt {
		fix, ok := s.tracker.Latest()
		if !ok {
			return
		}
		s.markerCount++
		s.renderer.DrawMarker(fmt.Sprintf("distance-%d", s.markerCount), fix.Coordinate, 0)
		s.nextMarkerAt += s.opts.DistanceMarkerMeters
	}
}

func (s *TrackingSession) requestRoute(origin domain.Coordinate) {
	if s.dest == nil {
		return
	}

	waypoints := []domain.Coordinate{origin, *s.dest}
	_, err := s.routes.Request(context.Background(), waypoints, s.mode, func(r RouteResult) {
		_ = s.send(event{kind: evRouteResult, route: r})
	})
	if err != nil {
		s.warn = err.Error()
		return
	}
	s.routePending = true
}

func (s *TrackingSession) handleRouteResult(r RouteResult) {
	route, err := s.routes.Apply(r)
	if errors.Is(err, domain.ErrStaleRouteResponse) {
		return
	}
	s.routePending = false

	if err != nil {
		log.Printf("session=%s route request failed: %v", s.id, err)
		s.warn = err.Error()

		// Fall back to a straight-line path when there is no previous route
		// to keep navigating against.
		if s.routes.Active() == nil && s.dest != nil {
			origin := r.Origin
			if fix, ok := s.tracker.Latest(); ok {
				origin = fix.Coordinate
			}
			s.installRoute(domain.NewStraightLineRoute(origin, *s.dest, s.distanceBetween(origin, *s.dest)))
		}
		return
	}

	s.warn = ""
	s.fallback = nil
	s.installRoute(route)
}

func (s *TrackingSession) installRoute(route *domain.Route) {
	if route.Fallback {
		s.fallback = route
	}

	s.instructions = ProcessInstructions(route.Steps)
	if !s.opts.TurnIcons {
		for i := range s.instructions {
			s.instructions[i].Icon = ""
		}
	}

	if s.renderer != nil {
		s.renderer.DrawPolyline("route", route.Geometry)
		s.renderer.FitBounds(route.Geometry, 40)
	}

	s.state = StateRouted
	s.startTicker()
	s.recomputeProgress()
}

func (s *TrackingSession) handleCommand(cmd command) {
	switch cmd.kind {
	case cmdSetDestination:
		dest := cmd.dest
		s.dest = &dest
		s.fallback = nil
		if s.renderer != nil {
			s.renderer.DrawMarker("destination", dest, 0)
		}
		if fix, ok := s.tracker.Latest(); ok {
			s.requestRoute(fix.Coordinate)
		}

	case cmdClearDestination:
		s.dest = nil
		s.fallback = nil
		s.routes.Clear()
		s.instructions = nil
		s.progress = nil
		s.routePending = false
		s.stopTicker()
		if s.renderer != nil {
			s.renderer.RemoveLayer("route")
			s.renderer.RemoveLayer("destination")
		}
		if s.state == StateRouted {
			s.state = StateTracking
		}

	case cmdSetMode:
		if cmd.mode == s.mode {
			return
		}
		s.mode = cmd.mode
		// Mode change invalidates the cached route.
		if s.dest != nil {
			if fix, ok := s.tracker.Latest(); ok {
				s.requestRoute(fix.Coordinate)
			}
		}
	}
}

func (s *TrackingSession) handleStop(reply chan stopReply) {
	summary := domain.TripSummary{
		SessionID:      s.id,
		Mode:           s.mode,
		StartedAt:      s.startedAt,
		EndedAt:        time.Now(),
		FixCount:       s.tracker.FixCount(),
		DistanceMeters: s.tracker.TraveledMeters(),
	}

	if s.trips != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.trips.Record(ctx, summary); err != nil {
			log.Printf("session=%s trip record failed: %v", s.id, err)
		}
		cancel()
	}

	s.teardown()
	s.state = StateIdle
	reply <- stopReply{summary: summary}
}

// teardown releases every session-scoped resource: subscription, progress
// ticker, pending debounce. Safe to call on any exit path.
func (s *TrackingSession) teardown() {
	s.debounce.Cancel()
	s.stopTicker()
	if s.sub != nil {
		_ = s.sub.Close()
		s.sub = nil
	}
	s.subEvents = nil
}

func (s *TrackingSession) startTicker() {
	if s.ticker != nil {
		return
	}
	s.ticker = time.NewTicker(s.opts.ProgressInterval)
	s.tickC = s.ticker.C
}

func (s *TrackingSession) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
		s.tickC = nil
	}
}

// activeRoute is the route progress runs against: the managed route when one
// is installed, otherwise the straight-line fallback.
func (s *TrackingSession) activeRoute() *domain.Route {
	if r := s.routes.Active(); r != nil {
		return r
	}
	return s.fallback
}

func (s *TrackingSession) recomputeProgress() {
	route := s.activeRoute()
	fix, ok := s.tracker.Latest()
	if route == nil || !ok {
		return
	}

	p := EstimateProgress(fix.Coordinate, route, s.speedKmh, s.bearingDeg, time.Now())
	s.progress = &p
}

// distanceBetween prefers the renderer's map-level helper for the fallback
// figure, matching what the user sees on the map.
func (s *TrackingSession) distanceBetween(a, b domain.Coordinate) float64 {
	if s.renderer != nil {
		return s.renderer.DistanceBetween(a, b)
	}
	return geo.DistanceMeters(a, b)
}

// publish copies loop-owned state into the snapshot read by other goroutines.
func (s *TrackingSession) publish() {
	snap := Snapshot{
		SessionID:      s.id,
		State:          s.state,
		Mode:           s.mode,
		Route:          s.activeRoute(),
		Instructions:   s.instructions,
		Warning:        s.warn,
		FixCount:       s.tracker.FixCount(),
		TraveledMeters: s.tracker.TraveledMeters(),
		StartedAt:      s.startedAt,
	}
	if s.dest != nil {
		d := *s.dest
		snap.Destination = &d
	}
	if fix, ok := s.tracker.Latest(); ok {
		f := fix
		snap.Position = &f
	}
	if s.progress != nil {
		p := *s.progress
		snap.Progress = &p
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}
