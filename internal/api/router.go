package api

import (
	"net/http"

	"nav-tracking-service/internal/api/handlers"
	"nav-tracking-service/internal/ports"
	"nav-tracking-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root (handlers stay unaware of
// concrete adapters).
func NewRouter(
	registry *handlers.SessionRegistry,
	routes ports.RouteService,
	trips ports.TripStore,
	sessionDefaults services.Options,
	sources handlers.FixSourceConfig,
) http.Handler {
	mux := http.NewServeMux()

	sessionHandler := &handlers.SessionHandler{
		Registry: registry,
		Routes:   routes,
		Trips:    trips,
		Defaults: sessionDefaults,
		Sources:  sources,
	}
	tripHandler := &handlers.TripHandler{Store: trips}

	mux.HandleFunc("GET /health", handlers.Health)

	mux.HandleFunc("POST /sessions", sessionHandler.Create)
	mux.HandleFunc("GET /sessions/{id}", sessionHandler.Get)
	mux.HandleFunc("DELETE /sessions/{id}", sessionHandler.Stop)
	mux.HandleFunc("POST /sessions/{id}/fixes", sessionHandler.PushFix)
	mux.HandleFunc("PUT /sessions/{id}/destination", sessionHandler.SetDestination)
	mux.HandleFunc("DELETE /sessions/{id}/destination", sessionHandler.ClearDestination)
	mux.HandleFunc("PUT /sessions/{id}/mode", sessionHandler.SetMode)
	mux.HandleFunc("GET /sessions/{id}/stream", sessionHandler.Stream)

	mux.HandleFunc("GET /trips", tripHandler.List)

	return loggingMiddleware(requestIDMiddleware(mux))
}
