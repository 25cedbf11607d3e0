package dto

import "time"

type CreateSessionRequest struct {
	Mode                 string  `json:"mode" validate:"omitempty,oneof=driving walking cycling"`
	Source               string  `json:"source" validate:"omitempty,oneof=push mqtt"`
	HighAccuracy         bool    `json:"high_accuracy"`
	RotateMarker         bool    `json:"rotate_marker"`
	TurnIcons            bool    `json:"turn_icons"`
	AllowModeChange      bool    `json:"allow_mode_change"`
	DistanceMarkerMeters float64 `json:"distance_marker_meters" validate:"gte=0"`
}

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	State     string `json:"state"`
}

type FixRequest struct {
	Lat         float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng         float64 `json:"lng" validate:"gte=-180,lte=180"`
	TimestampMS int64   `json:"timestamp_ms" validate:"gte=0"`
}

type DestinationRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type ModeRequest struct {
	Mode string `json:"mode" validate:"required,oneof=driving walking cycling"`
}

type CoordinateResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type InstructionResponse struct {
	Text            string  `json:"text"`
	DistanceMeters  float64 `json:"distance_meters"`
	DistanceDisplay string  `json:"distance_display"`
	DurationSeconds float64 `json:"duration_seconds"`
	Maneuver        string  `json:"maneuver"`
	Modifier        string  `json:"modifier,omitempty"`
	Icon            string  `json:"icon,omitempty"`
}

type ProgressResponse struct {
	Fraction         float64 `json:"fraction"`
	RemainingMeters  float64 `json:"remaining_meters"`
	RemainingDisplay string  `json:"remaining_display"`
	RemainingSeconds float64 `json:"remaining_seconds"`
	ETA              string  `json:"eta"`
	ETADisplay       string  `json:"eta_display"`
	ETAIsLive        bool    `json:"eta_is_live"`
	SpeedKmh         float64 `json:"speed_kmh"`
	BearingDeg       float64 `json:"bearing_deg"`
}

type RouteResponse struct {
	Geometry        []CoordinateResponse `json:"geometry"`
	DistanceMeters  float64              `json:"distance_meters"`
	DurationSeconds float64              `json:"duration_seconds"`
	Fallback        bool                 `json:"fallback"`
}

type SnapshotResponse struct {
	SessionID      string                `json:"session_id"`
	State          string                `json:"state"`
	Mode           string                `json:"mode"`
	Destination    *CoordinateResponse   `json:"destination,omitempty"`
	Position       *CoordinateResponse   `json:"position,omitempty"`
	Route          *RouteResponse        `json:"route,omitempty"`
	Instructions   []InstructionResponse `json:"instructions,omitempty"`
	Progress       *ProgressResponse     `json:"progress,omitempty"`
	Warning        string                `json:"warning,omitempty"`
	FixCount       int                   `json:"fix_count"`
	TraveledMeters float64               `json:"traveled_meters"`
	StartedAt      *time.Time            `json:"started_at,omitempty"`
}

type TripSummaryResponse struct {
	SessionID       string    `json:"session_id"`
	Mode            string    `json:"mode"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	FixCount        int       `json:"fix_count"`
	DistanceMeters  float64   `json:"distance_meters"`
	DistanceDisplay string    `json:"distance_display"`
}

type ListTripsResponse struct {
	Trips []TripSummaryResponse `json:"trips"`
}
