package speed

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid processor config")

// Config holds the filter parameters of a Processor.
type Config struct {
	AccuracyGateMeters float64 // samples less accurate than this are dropped
	StaleAfterMs       int64   // repeated positions older than this force a zero reading
	JitterFloorKmh     float64 // converted speeds below this become 0
	WindowSize         int     // moving average window
	SpeedLimitKmh      float64 // readings above this are flagged as overspeed, 0 disables
	GateAccuracy       bool
	DetectStationary   bool
}

const (
	ProfileSmoothed = "smoothed"
	ProfileBasic    = "basic"
)

// DefaultConfig returns the smoothed tracker configuration.
func DefaultConfig() Config {
	return Config{
		AccuracyGateMeters: 10,
		StaleAfterMs:       1500,
		JitterFloorKmh:     0.3,
		WindowSize:         7,
		SpeedLimitKmh:      110,
		GateAccuracy:       true,
		DetectStationary:   true,
	}
}

// BasicConfig returns the unsmoothed speedometer configuration: raw speed with a
// 2 km/h floor and no position checks.
func BasicConfig() Config {
	return Config{
		AccuracyGateMeters: 10,
		StaleAfterMs:       1500,
		JitterFloorKmh:     2,
		WindowSize:         1,
		SpeedLimitKmh:      110,
	}
}

// ConfigForProfile resolves a profile name; an empty name selects the smoothed profile.
func ConfigForProfile(profile string) (Config, error) {
	switch profile {
	case "", ProfileSmoothed:
		return DefaultConfig(), nil
	case ProfileBasic:
		return BasicConfig(), nil
	default:
		return Config{}, fmt.Errorf("%w: unknown profile %q", ErrInvalidConfig, profile)
	}
}

func (c Config) Validate() error {
	if c.WindowSize < 1 {
		return fmt.Errorf("%w: window size must be at least 1", ErrInvalidConfig)
	}
	if c.AccuracyGateMeters < 0 || c.JitterFloorKmh < 0 || c.SpeedLimitKmh < 0 || c.StaleAfterMs < 0 {
		return fmt.Errorf("%w: thresholds must not be negative", ErrInvalidConfig)
	}
	return nil
}
