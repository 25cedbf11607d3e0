package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"nav-tracking-service/internal/adapters/render"
	"nav-tracking-service/internal/api/dto"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browser clients are served from other origins in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamMessage is the WebSocket envelope: either a periodic snapshot or a
// forwarded map drawing command.
type streamMessage struct {
	Type     string                `json:"type"` // snapshot | render
	Snapshot *dto.SnapshotResponse `json:"snapshot,omitempty"`
	Render   *render.Event         `json:"render,omitempty"`
}

// Stream pushes live session state over a WebSocket: a snapshot every second
// plus every map drawing command as it happens. The connection ends when the
// client goes away or the session stops.
func (h *SessionHandler) Stream(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("stream upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, cancel := entry.events.Subscribe()
	defer cancel()

	// Reader goroutine: we never expect client messages, but reading is how
	// close frames are noticed.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	snap := toSnapshotResponse(entry.session.Snapshot())
	if err := conn.WriteJSON(streamMessage{Type: "snapshot", Snapshot: &snap}); err != nil {
		return
	}

	for {
		select {
		case <-clientGone:
			return

		case <-entry.session.Done():
			snap := toSnapshotResponse(entry.session.Snapshot())
			_ = conn.WriteJSON(streamMessage{Type: "snapshot", Snapshot: &snap})
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(streamMessage{Type: "render", Render: &ev}); err != nil {
				return
			}

		case <-ticker.C:
			snap := toSnapshotResponse(entry.session.Snapshot())
			if err := conn.WriteJSON(streamMessage{Type: "snapshot", Snapshot: &snap}); err != nil {
				return
			}
		}
	}
}
