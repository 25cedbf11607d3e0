package handlers

import (
	"sync"

	"nav-tracking-service/internal/adapters/geolocation"
	"nav-tracking-service/internal/adapters/render"
	"nav-tracking-service/internal/services"
)

// sessionEntry bundles a session with the per-session adapters the API layer
// feeds and drains. source is nil for sessions whose fixes arrive over MQTT
// instead of HTTP pushes; closeSource releases the MQTT connection on Stop.
type sessionEntry struct {
	session     *services.TrackingSession
	source      *geolocation.ChannelSource
	events      *render.Broadcaster
	closeSource func()
}

// SessionRegistry owns the live sessions. Each session exclusively owns its
// own history, route cache, and timers; the registry only maps IDs to them.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*sessionEntry)}
}

func (r *SessionRegistry) add(id string, e *sessionEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = e
}

func (r *SessionRegistry) get(id string) (*sessionEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	return e, ok
}

func (r *SessionRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len reports the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
