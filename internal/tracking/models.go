package tracking

import (
	"errors"

	"backend-speedtrack/internal/session"
)

// ErrInvalidSample rejects samples whose timestamp is not epoch milliseconds.
// Trackers measure time deltas from their creation time, so a relative or
// missing timestamp would yield a negative first delta.
var ErrInvalidSample = errors.New("timestamp_ms must be a positive epoch time in milliseconds")

type CreateTrackerRequest struct {
	Profile string `json:"profile"`
}

// StartSessionRequest accepts the duration either in minutes, as entered on
// the device, or in seconds. Seconds win when both are set.
type StartSessionRequest struct {
	DurationMinutes int64 `json:"duration_minutes"`
	DurationSeconds int64 `json:"duration_seconds"`
}

func (r StartSessionRequest) Config() session.Config {
	if r.DurationSeconds != 0 {
		return session.Config{DurationSeconds: r.DurationSeconds}
	}
	return session.FromMinutes(r.DurationMinutes)
}
