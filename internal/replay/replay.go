package replay

import (
	"fmt"

	"backend-speedtrack/internal/session"
	"backend-speedtrack/internal/speed"
)

const tickMs = 1000

type Options struct {
	Processor speed.Config
	// DurationSeconds is the session length; zero replays without recording.
	DurationSeconds int64
}

// Report summarizes one replay.
type Report struct {
	Samples          int                   `json:"samples"`
	Outcomes         map[speed.Outcome]int `json:"outcomes"`
	Overspeed        int                   `json:"overspeed_readings"`
	MaxReadingKmh    float64               `json:"max_reading_kmh"`
	Recorded         int                   `json:"recorded"`
	SessionCompleted bool                  `json:"session_completed"`
	Analytics        *session.Analytics    `json:"analytics,omitempty"`
}

// Run feeds samples through a processor and, when a duration is set, a
// session recorder started at the first sample. Countdown ticks are derived
// from sample time, one per elapsed second, so the result only depends on
// the input. A session still running after the last sample is stopped.
func Run(samples []speed.Sample, opts Options) (Report, error) {
	report := Report{Outcomes: map[speed.Outcome]int{}}
	if len(samples) == 0 {
		return report, ErrNoSamples
	}

	// The processor clock starts one interval before the first fix so the
	// first sample has a non-zero time delta.
	start := samples[0].TimestampMs
	proc, err := speed.NewProcessor(opts.Processor, start-tickMs)
	if err != nil {
		return report, err
	}

	rec := session.NewRecorder()
	if opts.DurationSeconds != 0 {
		if err := rec.Start(session.Config{DurationSeconds: opts.DurationSeconds}); err != nil {
			return report, fmt.Errorf("start session: %w", err)
		}
	}

	nextTick := start + tickMs
	for _, s := range samples {
		for rec.State() == session.Running && s.TimestampMs >= nextTick {
			done, err := rec.Tick()
			if err != nil {
				return report, fmt.Errorf("tick: %w", err)
			}
			if done {
				report.SessionCompleted = true
			}
			nextTick += tickMs
		}

		report.Samples++
		reading, outcome := proc.Process(s)
		report.Outcomes[outcome]++
		if !outcome.Emits() {
			continue
		}
		if reading.Overspeed {
			report.Overspeed++
		}
		if reading.SmoothedSpeedKmh > report.MaxReadingKmh {
			report.MaxReadingKmh = reading.SmoothedSpeedKmh
		}
		if rec.State() != session.Running {
			continue
		}
		recorded, err := rec.OnReading(reading)
		if err != nil {
			return report, fmt.Errorf("record reading: %w", err)
		}
		if recorded {
			report.Recorded++
		}
	}

	if rec.State() == session.Running {
		if err := rec.Stop(); err != nil {
			return report, fmt.Errorf("stop session: %w", err)
		}
	}
	if a, ok := rec.Analytics(); ok {
		report.Analytics = &a
	}
	return report, nil
}
