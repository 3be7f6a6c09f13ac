package speed

import "math"

const mpsToKmh = 3.6

// State is the mutable filter state carried between samples.
type State struct {
	LastPosition         *Position
	LastSmoothedSpeedKmh float64
	LastUpdateTimeMs     int64
	History              *History
}

// Processor turns raw samples into denoised readings. It is not safe for
// concurrent use; callers serialize access (see tracker.Tracker).
type Processor struct {
	cfg   Config
	state State
}

// NewProcessor builds a processor whose last-update clock starts at startMs.
func NewProcessor(cfg Config, startMs int64) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Processor{
		cfg: cfg,
		state: State{
			LastUpdateTimeMs: startMs,
			History:          NewHistory(cfg.WindowSize),
		},
	}, nil
}

func (p *Processor) Config() Config { return p.cfg }

// State returns a copy of the current filter state.
func (p *Processor) State() State {
	st := p.state
	st.History = p.state.History.clone()
	if p.state.LastPosition != nil {
		pos := *p.state.LastPosition
		st.LastPosition = &pos
	}
	return st
}

// Process runs one sample through the gates in order: accuracy, repeated
// position, jitter floor, moving average, derivative. State only changes when
// the outcome is Emitted.
func (p *Processor) Process(s Sample) (Reading, Outcome) {
	if p.cfg.GateAccuracy && s.AccuracyMeters > p.cfg.AccuracyGateMeters {
		return Reading{}, LowAccuracy
	}

	if p.cfg.DetectStationary && p.samePosition(s) {
		if s.TimestampMs-p.state.LastUpdateTimeMs > p.cfg.StaleAfterMs {
			// LastPosition and the history stay untouched here, so the next
			// fresh position differentiates against the pre-stop speed.
			return Reading{
				AccuracyMeters: s.AccuracyMeters,
				TimestampMs:    s.TimestampMs,
				Latitude:       s.Latitude,
				Longitude:      s.Longitude,
				Forced:         true,
			}, ForcedZero
		}
		return Reading{}, DuplicatePosition
	}

	deltaMs := s.TimestampMs - p.state.LastUpdateTimeMs
	if deltaMs == 0 {
		return Reading{}, ZeroDeltaTime
	}

	p.state.History.Push(p.convert(s.RawSpeedMps))
	smoothed := p.state.History.Mean()

	accel := (smoothed - p.state.LastSmoothedSpeedKmh) / (float64(deltaMs) / 1000)
	if math.IsNaN(accel) || math.IsInf(accel, 0) {
		accel = 0
	}

	p.state.LastPosition = &Position{Latitude: s.Latitude, Longitude: s.Longitude}
	p.state.LastSmoothedSpeedKmh = smoothed
	p.state.LastUpdateTimeMs = s.TimestampMs

	return Reading{
		SmoothedSpeedKmh:    smoothed,
		AccelerationKmhPerS: accel,
		AccuracyMeters:      s.AccuracyMeters,
		TimestampMs:         s.TimestampMs,
		Latitude:            s.Latitude,
		Longitude:           s.Longitude,
		Overspeed:           p.cfg.SpeedLimitKmh > 0 && smoothed > p.cfg.SpeedLimitKmh,
	}, Emitted
}

func (p *Processor) samePosition(s Sample) bool {
	last := p.state.LastPosition
	return last != nil && last.Latitude == s.Latitude && last.Longitude == s.Longitude
}

func (p *Processor) convert(rawMps *float64) float64 {
	var kmh float64
	if rawMps != nil && !math.IsNaN(*rawMps) {
		kmh = *rawMps * mpsToKmh
	}
	if kmh < p.cfg.JitterFloorKmh {
		return 0
	}
	return kmh
}
