package replay

import (
	"bytes"
	"testing"
	"time"

	"backend-speedtrack/internal/session"
	"backend-speedtrack/internal/speed"

	"github.com/muktihari/fit/encoder"
	"github.com/muktihari/fit/profile/mesgdef"
	"github.com/muktihari/fit/profile/typedef"
	"github.com/muktihari/fit/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var activityStart = time.Date(2024, 5, 1, 7, 30, 0, 0, time.UTC)

type fix struct {
	offset   time.Duration
	lat, lon float64
	speedMms uint16
	accuracy uint8
	noPos    bool
	noAcc    bool
}

func semicircles(deg float64) int32 {
	return int32(deg * semicircleConst)
}

func encodeActivity(t *testing.T, fixes []fix) []byte {
	t.Helper()

	fit := &proto.FIT{Messages: []proto.Message{
		mesgdef.NewFileId(nil).
			SetType(typedef.FileActivity).
			SetManufacturer(typedef.ManufacturerDevelopment).
			SetTimeCreated(activityStart).
			ToMesg(nil),
	}}
	for _, f := range fixes {
		rec := mesgdef.NewRecord(nil).
			SetTimestamp(activityStart.Add(f.offset)).
			SetSpeed(f.speedMms)
		if !f.noPos {
			rec.SetPositionLat(semicircles(f.lat)).SetPositionLong(semicircles(f.lon))
		}
		if !f.noAcc {
			rec.SetGpsAccuracy(f.accuracy)
		}
		fit.Messages = append(fit.Messages, rec.ToMesg(nil))
	}

	var buf bytes.Buffer
	require.NoError(t, encoder.New(&buf).Encode(fit))
	return buf.Bytes()
}

func steadyRun(n int, speedMms uint16) []fix {
	fixes := make([]fix, n)
	for i := range fixes {
		fixes[i] = fix{
			offset:   time.Duration(i) * time.Second,
			lat:      48.85 + float64(i)*0.0001,
			lon:      2.35,
			speedMms: speedMms,
			accuracy: 4,
		}
	}
	return fixes
}

func TestDecodeRecords(t *testing.T) {
	fixes := steadyRun(3, 5000)
	fixes = append(fixes,
		fix{offset: 3 * time.Second, speedMms: 5000, accuracy: 4, noPos: true},
		fix{offset: 4 * time.Second, lat: 48.86, lon: 2.35, speedMms: 1500, noAcc: true},
	)

	samples, err := Decode(encodeActivity(t, fixes))
	require.NoError(t, err)
	require.Len(t, samples, 4, "record without position is skipped")

	first := samples[0]
	assert.Equal(t, activityStart.UnixMilli(), first.TimestampMs)
	assert.InDelta(t, 48.85, first.Latitude, 1e-6)
	assert.InDelta(t, 2.35, first.Longitude, 1e-6)
	require.NotNil(t, first.RawSpeedMps)
	assert.InDelta(t, 5.0, *first.RawSpeedMps, 1e-9)
	assert.Equal(t, 4.0, first.AccuracyMeters)

	last := samples[3]
	assert.Equal(t, activityStart.Add(4*time.Second).UnixMilli(), last.TimestampMs)
	assert.InDelta(t, 1.5, *last.RawSpeedMps, 1e-9)
	assert.Equal(t, DefaultAccuracyMeters, last.AccuracyMeters)
}

func TestDecodeRejectsEmptyInput(t *testing.T) {
	_, err := Decode(nil)
	require.Error(t, err)

	_, err = Decode(encodeActivity(t, []fix{{speedMms: 1000, accuracy: 3, noPos: true}}))
	require.ErrorIs(t, err, ErrNoSamples)
}

func TestRunSessionCompletesFromSampleTime(t *testing.T) {
	samples, err := Decode(encodeActivity(t, steadyRun(10, 5000)))
	require.NoError(t, err)

	report, err := Run(samples, Options{Processor: speed.DefaultConfig(), DurationSeconds: 5})
	require.NoError(t, err)

	assert.Equal(t, 10, report.Samples)
	assert.Equal(t, 10, report.Outcomes[speed.Emitted])
	assert.True(t, report.SessionCompleted)
	assert.Equal(t, 5, report.Recorded, "samples after the countdown ran out are not recorded")
	assert.InDelta(t, 18.0, report.MaxReadingKmh, 1e-9)

	require.NotNil(t, report.Analytics)
	a := report.Analytics
	assert.Equal(t, int64(5), a.SampleCount)
	assert.Equal(t, int64(5), a.DurationSeconds)
	assert.InDelta(t, 18.0, a.AvgSpeedKmh, 1e-9)
	// only the first reading accelerates, from 0 to 18 km/h over one second
	assert.InDelta(t, 18.0/5, a.AvgAccelerationKmhPerS, 1e-9)
	assert.InDelta(t, 4*0.0111, a.DistanceKm, 0.001)
}

func TestRunStopsUnfinishedSession(t *testing.T) {
	samples, err := Decode(encodeActivity(t, steadyRun(3, 5000)))
	require.NoError(t, err)

	report, err := Run(samples, Options{Processor: speed.DefaultConfig(), DurationSeconds: 60})
	require.NoError(t, err)
	assert.False(t, report.SessionCompleted)
	require.NotNil(t, report.Analytics)
	assert.Equal(t, int64(3), report.Analytics.SampleCount)
}

func TestRunWithoutSession(t *testing.T) {
	fixes := steadyRun(4, 40000)
	fixes[2].accuracy = 30

	samples, err := Decode(encodeActivity(t, fixes))
	require.NoError(t, err)

	report, err := Run(samples, Options{Processor: speed.DefaultConfig()})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Outcomes[speed.Emitted])
	assert.Equal(t, 1, report.Outcomes[speed.LowAccuracy])
	assert.Equal(t, 3, report.Overspeed, "144 km/h is above the default limit")
	assert.Zero(t, report.Recorded)
	assert.Nil(t, report.Analytics)
}

func TestRunRejectsBadOptions(t *testing.T) {
	samples := []speed.Sample{{Latitude: 1, Longitude: 1, AccuracyMeters: 3, TimestampMs: 1000}}

	_, err := Run(samples, Options{Processor: speed.Config{}})
	require.ErrorIs(t, err, speed.ErrInvalidConfig)

	_, err = Run(samples, Options{Processor: speed.DefaultConfig(), DurationSeconds: -1})
	require.ErrorIs(t, err, session.ErrInvalidConfiguration)

	_, err = Run(nil, Options{Processor: speed.DefaultConfig()})
	require.ErrorIs(t, err, ErrNoSamples)
}
