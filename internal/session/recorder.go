package session

import (
	"backend-speedtrack/internal/shared/geo"
	"backend-speedtrack/internal/speed"
)

const (
	minQualifyingSpeedKmh  = 0.5
	maxQualifyingAccuracyM = 10.0
)

// Recorder accumulates qualifying readings over a timed session. The countdown
// is driven from outside through Tick.
type Recorder struct {
	state      State
	cfg        Config
	remaining  int64
	record     []Entry
	steps      int64
	generation uint64
	analytics  *Analytics
}

func NewRecorder() *Recorder {
	return &Recorder{state: Idle}
}

func (r *Recorder) State() State { return r.state }

// Remaining returns the seconds left in the running session.
func (r *Recorder) Remaining() int64 { return r.remaining }

// Generation increments on every successful Start.
func (r *Recorder) Generation() uint64 { return r.generation }

// Recorded returns the number of entries collected so far.
func (r *Recorder) Recorded() int { return len(r.record) }

// Analytics returns the last completed session summary.
func (r *Recorder) Analytics() (Analytics, bool) {
	if r.analytics == nil {
		return Analytics{}, false
	}
	return *r.analytics, true
}

func (r *Recorder) Start(cfg Config) error {
	if r.state != Idle {
		return ErrInvalidState
	}
	if cfg.DurationSeconds <= 0 {
		return ErrInvalidConfiguration
	}
	r.cfg = cfg
	r.record = nil
	r.steps = 0
	r.remaining = cfg.DurationSeconds
	r.generation++
	r.state = Running
	return nil
}

// Tick advances the countdown by one second and stops the session when it
// runs out. It reports whether this tick completed the session.
func (r *Recorder) Tick() (bool, error) {
	if r.state != Running {
		return false, ErrInvalidState
	}
	r.remaining--
	if r.remaining <= 0 {
		return true, r.Stop()
	}
	return false, nil
}

// OnReading records the reading if it qualifies and reports whether it did.
func (r *Recorder) OnReading(reading speed.Reading) (bool, error) {
	if r.state != Running {
		return false, ErrInvalidState
	}
	if reading.SmoothedSpeedKmh <= minQualifyingSpeedKmh || reading.AccuracyMeters >= maxQualifyingAccuracyM {
		return false, nil
	}
	r.record = append(r.record, Entry{
		TimestampMs:         reading.TimestampMs,
		SpeedKmh:            reading.SmoothedSpeedKmh,
		AccelerationKmhPerS: reading.AccelerationKmhPerS,
		Latitude:            reading.Latitude,
		Longitude:           reading.Longitude,
	})
	r.steps++
	return true, nil
}

// Stop ends the session. An empty record leaves the previous analytics as is.
func (r *Recorder) Stop() error {
	if r.state != Running {
		return ErrInvalidState
	}
	r.state = Idle
	r.remaining = 0
	if a, ok := summarize(r.record, r.steps); ok {
		a.DurationSeconds = r.cfg.DurationSeconds
		r.analytics = &a
	}
	r.record = nil
	return nil
}

func summarize(record []Entry, steps int64) (Analytics, bool) {
	if len(record) == 0 {
		return Analytics{}, false
	}
	var sumSpeed, sumAccel, maxSpeed, distance float64
	for i, e := range record {
		sumSpeed += e.SpeedKmh
		sumAccel += e.AccelerationKmhPerS
		if e.SpeedKmh > maxSpeed {
			maxSpeed = e.SpeedKmh
		}
		if i > 0 {
			prev := record[i-1]
			distance += geo.HaversineKm(prev.Latitude, prev.Longitude, e.Latitude, e.Longitude)
		}
	}
	n := float64(len(record))
	return Analytics{
		AvgSpeedKmh:            sumSpeed / n,
		AvgAccelerationKmhPerS: sumAccel / n,
		MaxSpeedKmh:            maxSpeed,
		DistanceKm:             distance,
		SampleCount:            steps,
	}, true
}
