package speed

import "fmt"

// Sample is a single raw location fix as delivered by the device.
type Sample struct {
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	RawSpeedMps    *float64 `json:"raw_speed_mps"`
	AccuracyMeters float64  `json:"accuracy_m"`
	TimestampMs    int64    `json:"timestamp_ms"`
}

// Reading is the denoised output for one accepted sample.
type Reading struct {
	SmoothedSpeedKmh    float64 `json:"smoothed_speed_kmh"`
	AccelerationKmhPerS float64 `json:"acceleration_kmh_per_s"`
	AccuracyMeters      float64 `json:"accuracy_m"`
	TimestampMs         int64   `json:"timestamp_ms"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	Forced              bool    `json:"forced,omitempty"`
	Overspeed           bool    `json:"overspeed,omitempty"`
}

type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Outcome tells the caller what Process did with a sample.
type Outcome int

const (
	Emitted Outcome = iota
	ForcedZero
	LowAccuracy
	DuplicatePosition
	ZeroDeltaTime
)

var outcomeNames = map[Outcome]string{
	Emitted:           "emitted",
	ForcedZero:        "forced_zero",
	LowAccuracy:       "low_accuracy",
	DuplicatePosition: "duplicate_position",
	ZeroDeltaTime:     "zero_delta_time",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Emits reports whether the outcome carries a reading for display.
func (o Outcome) Emits() bool {
	return o == Emitted || o == ForcedZero
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	for out, name := range outcomeNames {
		if name == string(text) {
			*o = out
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Outcomes lists every outcome in declaration order.
func Outcomes() []Outcome {
	return []Outcome{Emitted, ForcedZero, LowAccuracy, DuplicatePosition, ZeroDeltaTime}
}
