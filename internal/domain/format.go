package domain

import (
	"fmt"
	"time"
)

// PresentableDistance formats a distance in meters for display:
// meters below one kilometer, kilometers with one decimal above.
func PresentableDistance(meters float64) string {
	if meters < 0 {
		meters = 0
	}
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// PresentableDuration formats a duration for display: whole minutes below an
// hour, hours and minutes above, "< 1 min" under a minute.
func PresentableDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Minute {
		return "< 1 min"
	}
	if d < time.Hour {
		return fmt.Sprintf("%d min", int(d.Minutes()))
	}
	h := int(d.Hours())
	m := int(d.Minutes()) - h*60
	return fmt.Sprintf("%d h %d min", h, m)
}

// PresentableETA renders an arrival time as a 24-hour clock reading.
func PresentableETA(eta time.Time) string {
	return eta.Format("15:04")
}
