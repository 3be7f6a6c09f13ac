package config

import "backend-speedtrack/internal/speed"

// Processor resolves a tracker profile and applies the configured filter
// thresholds. The window and jitter floor only tune the smoothed profile.
func (c Config) Processor(profile string) (speed.Config, error) {
	pc, err := speed.ConfigForProfile(profile)
	if err != nil {
		return speed.Config{}, err
	}
	if c.AccuracyGateM != nil {
		pc.AccuracyGateMeters = *c.AccuracyGateM
	}
	if c.StaleAfterMs != nil {
		pc.StaleAfterMs = *c.StaleAfterMs
	}
	if c.SpeedLimitKmh != nil {
		pc.SpeedLimitKmh = *c.SpeedLimitKmh
	}
	if profile == speed.ProfileBasic {
		return pc, pc.Validate()
	}
	if c.WindowSize != nil {
		pc.WindowSize = *c.WindowSize
	}
	if c.JitterFloorKmh != nil {
		pc.JitterFloorKmh = *c.JitterFloorKmh
	}
	return pc, pc.Validate()
}
