package replay

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"backend-speedtrack/internal/speed"

	"github.com/muktihari/fit/decoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/proto"
)

var ErrNoSamples = errors.New("no positioned records in FIT data")

const (
	semicircleConst = 11930464.7111 // 2^31 / 180

	// Assumed when a record has no gps_accuracy field.
	DefaultAccuracyMeters = 5.0

	invalidPosition      = 0x7FFFFFFF
	invalidSpeed         = 0xFFFF
	invalidEnhancedSpeed = 0xFFFFFFFF
	invalidAccuracy      = 0xFF
)

// Decode extracts location samples from the record messages of a FIT
// activity, ordered by timestamp. Records without a position or timestamp
// are skipped.
func Decode(data []byte) ([]speed.Sample, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty FIT data")
	}

	dec := decoder.New(bytes.NewReader(data))

	var samples []speed.Sample
	for dec.Next() {
		fit, err := dec.Decode()
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIT file: %w", err)
		}
		for i := range fit.Messages {
			if fit.Messages[i].Num != typedef.MesgNumRecord {
				continue
			}
			if s, ok := sampleFromRecord(&fit.Messages[i]); ok {
				samples = append(samples, s)
			}
		}
	}

	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	slices.SortStableFunc(samples, func(a, b speed.Sample) int {
		switch {
		case a.TimestampMs < b.TimestampMs:
			return -1
		case a.TimestampMs > b.TimestampMs:
			return 1
		}
		return 0
	})
	return samples, nil
}

func sampleFromRecord(msg *proto.Message) (speed.Sample, bool) {
	rec := mesgdef.NewRecord(msg)
	if rec.Timestamp.IsZero() {
		return speed.Sample{}, false
	}
	if rec.PositionLat == invalidPosition || rec.PositionLong == invalidPosition {
		return speed.Sample{}, false
	}

	s := speed.Sample{
		Latitude:       float64(rec.PositionLat) / semicircleConst,
		Longitude:      float64(rec.PositionLong) / semicircleConst,
		AccuracyMeters: DefaultAccuracyMeters,
		TimestampMs:    rec.Timestamp.UnixMilli(),
	}

	// FIT speeds are mm/s.
	switch {
	case rec.EnhancedSpeed != invalidEnhancedSpeed:
		v := float64(rec.EnhancedSpeed) / 1000
		s.RawSpeedMps = &v
	case rec.Speed != invalidSpeed:
		v := float64(rec.Speed) / 1000
		s.RawSpeedMps = &v
	}

	if rec.GpsAccuracy != invalidAccuracy {
		s.AccuracyMeters = float64(rec.GpsAccuracy)
	}
	return s, true
}
