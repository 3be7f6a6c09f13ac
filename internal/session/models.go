package session

import "errors"

var (
	ErrInvalidConfiguration = errors.New("session duration must be positive")
	ErrInvalidState         = errors.New("operation not allowed in current session state")
)

type State string

const (
	Idle    State = "idle"
	Running State = "running"
)

type Config struct {
	DurationSeconds int64 `json:"duration_seconds"`
}

// FromMinutes converts a duration entered in minutes.
func FromMinutes(minutes int64) Config {
	return Config{DurationSeconds: minutes * 60}
}

// Entry is one qualifying reading recorded during a session.
type Entry struct {
	TimestampMs         int64   `json:"timestamp_ms"`
	SpeedKmh            float64 `json:"speed_kmh"`
	AccelerationKmhPerS float64 `json:"acceleration_kmh_per_s"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
}

// Analytics summarizes a completed session.
type Analytics struct {
	AvgSpeedKmh            float64 `json:"avg_speed_kmh"`
	AvgAccelerationKmhPerS float64 `json:"avg_acceleration_kmh_per_s"`
	MaxSpeedKmh            float64 `json:"max_speed_kmh"`
	DistanceKm             float64 `json:"distance_km"`
	SampleCount            int64   `json:"sample_count"`
	DurationSeconds        int64   `json:"duration_seconds"`
}
