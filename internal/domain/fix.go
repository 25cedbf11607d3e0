package domain

import "time"

// Fix is a single reported geographic position with its wall-clock timestamp.
// Produced externally (geolocation source); immutable once recorded.
type Fix struct {
	Coordinate
	Time time.Time
}

// MovementHistory is the append-only sequence of fixes accepted during one
// tracking session, in arrival order. It is cleared only when a session
// restarts; rejected fixes never enter it.
type MovementHistory struct {
	fixes []Fix
}

// Append records a fix. Ordering is the caller's arrival order; the history
// never reorders or drops entries.
func (h *MovementHistory) Append(f Fix) {
	h.fixes = append(h.fixes, f)
}

func (h *MovementHistory) Len() int { return len(h.fixes) }

// Last returns the most recently appended fix.
func (h *MovementHistory) Last() (Fix, bool) {
	if len(h.fixes) == 0 {
		return Fix{}, false
	}
	return h.fixes[len(h.fixes)-1], true
}

// Fixes returns a copy of the history so callers cannot mutate it.
func (h *MovementHistory) Fixes() []Fix {
	out := make([]Fix, len(h.fixes))
	copy(out, h.fixes)
	return out
}
