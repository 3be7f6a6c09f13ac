package tracker

import (
	"errors"
	"time"

	"backend-speedtrack/internal/session"
	"backend-speedtrack/internal/speed"
)

var (
	ErrNotFound = errors.New("tracker not found")
	ErrClosed   = errors.New("tracker closed")
	ErrLimit    = errors.New("tracker limit reached")
)

type EventType string

const (
	EventReading   EventType = "reading"
	EventCountdown EventType = "countdown"
	EventAnalytics EventType = "analytics"
	EventSession   EventType = "session"
)

// Event is what live subscribers of a tracker receive.
type Event struct {
	Type             EventType          `json:"type"`
	TrackerID        string             `json:"tracker_id"`
	At               time.Time          `json:"at"`
	Reading          *speed.Reading     `json:"reading,omitempty"`
	RemainingSeconds *int64             `json:"remaining_seconds,omitempty"`
	Analytics        *session.Analytics `json:"analytics,omitempty"`
	State            session.State      `json:"state,omitempty"`
}

// Result is the answer to a submitted sample.
type Result struct {
	Outcome  speed.Outcome  `json:"outcome"`
	Reading  *speed.Reading `json:"reading,omitempty"`
	Recorded bool           `json:"recorded"`
}

type Status struct {
	ID               string             `json:"id"`
	Profile          string             `json:"profile"`
	State            session.State      `json:"state"`
	RemainingSeconds int64              `json:"remaining_seconds"`
	Recorded         int                `json:"recorded"`
	LastReading      *speed.Reading     `json:"last_reading,omitempty"`
	Analytics        *session.Analytics `json:"analytics,omitempty"`
}

// Broadcaster delivers encoded events to live subscribers of a tracker.
type Broadcaster interface {
	Broadcast(trackerID string, payload []byte)
}

// Observer receives counters from every tracker of a manager.
type Observer interface {
	SampleProcessed(profile string, outcome speed.Outcome)
	SessionStarted()
	SessionFinished(summarized bool)
	TrackersActive(n int)
}

// TickerFunc starts a periodic tick source and returns its stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func systemTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

type nopObserver struct{}

func (nopObserver) SampleProcessed(string, speed.Outcome) {}
func (nopObserver) SessionStarted()                       {}
func (nopObserver) SessionFinished(bool)                  {}
func (nopObserver) TrackersActive(int)                    {}
