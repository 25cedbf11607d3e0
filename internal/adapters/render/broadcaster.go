package render

import (
	"sync"

	"nav-tracking-service/internal/domain"
	"nav-tracking-service/internal/geo"
	"nav-tracking-service/internal/ports"
)

// Event is one map drawing command, serialized for streaming clients. The
// presentation layer replays these against its actual map widget.
type Event struct {
	Type       string       `json:"type"` // set_view | draw_marker | remove_layer | draw_polyline | fit_bounds
	Layer      string       `json:"layer,omitempty"`
	Coord      *[2]float64  `json:"coord,omitempty"` // [lat, lng]
	Coords     [][2]float64 `json:"coords,omitempty"`
	Zoom       int          `json:"zoom,omitempty"`
	Padding    int          `json:"padding,omitempty"`
	BearingDeg float64      `json:"bearing_deg,omitempty"`
}

// Broadcaster implements the map rendering surface as a fan-out of drawing
// commands to streaming subscribers. Slow subscribers drop events rather
// than stalling the session loop.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan Event]struct{})}
}

// Subscribe returns a stream of drawing commands and a cancel function.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 64)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *Broadcaster) emit(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func pair(c domain.Coordinate) [2]float64 { return [2]float64{c.Lat, c.Lng} }

func (b *Broadcaster) SetView(c domain.Coordinate, zoom int) {
	p := pair(c)
	b.emit(Event{Type: "set_view", Coord: &p, Zoom: zoom})
}

func (b *Broadcaster) DrawMarker(id string, c domain.Coordinate, bearingDeg float64) {
	p := pair(c)
	b.emit(Event{Type: "draw_marker", Layer: id, Coord: &p, BearingDeg: bearingDeg})
}

func (b *Broadcaster) RemoveLayer(id string) {
	b.emit(Event{Type: "remove_layer", Layer: id})
}

func (b *Broadcaster) DrawPolyline(id string, coords []domain.Coordinate) {
	out := make([][2]float64, 0, len(coords))
	for _, c := range coords {
		out = append(out, pair(c))
	}
	b.emit(Event{Type: "draw_polyline", Layer: id, Coords: out})
}

func (b *Broadcaster) FitBounds(coords []domain.Coordinate, padding int) {
	out := make([][2]float64, 0, len(coords))
	for _, c := range coords {
		out = append(out, pair(c))
	}
	b.emit(Event{Type: "fit_bounds", Coords: out, Padding: padding})
}

func (b *Broadcaster) DistanceBetween(a, c domain.Coordinate) float64 {
	return geo.DistanceMeters(a, c)
}

var _ ports.MapRenderer = (*Broadcaster)(nil)
