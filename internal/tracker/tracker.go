package tracker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"backend-speedtrack/internal/session"
	"backend-speedtrack/internal/speed"
)

const countdownInterval = time.Second

// Tracker owns one signal processor and one session recorder. Samples,
// session commands and countdown ticks are all executed on a single loop
// goroutine, so the processor and recorder never see concurrent calls.
type Tracker struct {
	id      string
	profile string

	proc *speed.Processor
	rec  *session.Recorder
	last *speed.Reading

	cmds chan func()
	quit chan struct{}
	done chan struct{}
	once sync.Once

	stopCountdown func()

	hub    Broadcaster
	obs    Observer
	ticker TickerFunc
	now    func() time.Time
	lg     *slog.Logger
}

type options struct {
	hub    Broadcaster
	obs    Observer
	ticker TickerFunc
	now    func() time.Time
	lg     *slog.Logger
}

func newTracker(id, profile string, cfg speed.Config, o options) (*Tracker, error) {
	proc, err := speed.NewProcessor(cfg, o.now().UnixMilli())
	if err != nil {
		return nil, err
	}
	t := &Tracker{
		id:      id,
		profile: profile,
		proc:    proc,
		rec:     session.NewRecorder(),
		cmds:    make(chan func()),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		hub:     o.hub,
		obs:     o.obs,
		ticker:  o.ticker,
		now:     o.now,
		lg:      o.lg.With("tracker_id", id),
	}
	go t.loop()
	return t, nil
}

func (t *Tracker) ID() string { return t.id }

func (t *Tracker) Profile() string { return t.profile }

func (t *Tracker) loop() {
	defer close(t.done)
	for {
		select {
		case fn := <-t.cmds:
			fn()
		case <-t.quit:
			t.cancelCountdown()
			return
		}
	}
}

// do runs fn on the loop goroutine and waits for it to finish.
func (t *Tracker) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		fn()
		close(finished)
	}
	select {
	case t.cmds <- wrapped:
	case <-t.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	// Once accepted the command runs to completion; ctx only bounds the wait
	// for the loop to pick it up.
	<-finished
	return nil
}

// Submit runs a raw sample through the processor and, while a session is
// running, hands the resulting reading to the recorder.
func (t *Tracker) Submit(ctx context.Context, s speed.Sample) (Result, error) {
	var res Result
	err := t.do(ctx, func() {
		reading, outcome := t.proc.Process(s)
		t.obs.SampleProcessed(t.profile, outcome)
		res.Outcome = outcome
		if !outcome.Emits() {
			t.lg.Debug("sample suppressed", "outcome", outcome.String(), "timestamp_ms", s.TimestampMs)
			return
		}
		res.Reading = &reading
		t.last = &reading
		if t.rec.State() == session.Running {
			recorded, err := t.rec.OnReading(reading)
			if err != nil {
				t.lg.Warn("recorder rejected reading", "error", err)
			}
			res.Recorded = recorded
		}
		t.publish(Event{Type: EventReading, Reading: &reading})
	})
	return res, err
}

// StartSession begins a timed session and its one second countdown.
func (t *Tracker) StartSession(ctx context.Context, cfg session.Config) (Status, error) {
	var (
		st     Status
		runErr error
	)
	err := t.do(ctx, func() {
		if runErr = t.rec.Start(cfg); runErr != nil {
			return
		}
		t.startCountdown(t.rec.Generation())
		t.obs.SessionStarted()
		t.lg.Info("session started", "duration_s", cfg.DurationSeconds)
		t.publish(Event{Type: EventSession, State: session.Running})
		st = t.status()
	})
	if err != nil {
		return Status{}, err
	}
	return st, runErr
}

// StopSession ends the running session early and computes its analytics.
func (t *Tracker) StopSession(ctx context.Context) (Status, error) {
	var (
		st     Status
		runErr error
	)
	err := t.do(ctx, func() {
		summarized := t.rec.Recorded() > 0
		if runErr = t.rec.Stop(); runErr != nil {
			return
		}
		t.finish(summarized)
		st = t.status()
	})
	if err != nil {
		return Status{}, err
	}
	return st, runErr
}

func (t *Tracker) Status(ctx context.Context) (Status, error) {
	var st Status
	err := t.do(ctx, func() { st = t.status() })
	return st, err
}

// Close stops the loop and any running countdown. It is safe to call twice.
func (t *Tracker) Close() {
	t.once.Do(func() { close(t.quit) })
	<-t.done
}

func (t *Tracker) status() Status {
	st := Status{
		ID:               t.id,
		Profile:          t.profile,
		State:            t.rec.State(),
		RemainingSeconds: t.rec.Remaining(),
		Recorded:         t.rec.Recorded(),
	}
	if t.last != nil {
		r := *t.last
		st.LastReading = &r
	}
	if a, ok := t.rec.Analytics(); ok {
		st.Analytics = &a
	}
	return st
}

func (t *Tracker) startCountdown(generation uint64) {
	ticks, stop := t.ticker(countdownInterval)
	halt := make(chan struct{})
	var once sync.Once
	t.stopCountdown = func() {
		once.Do(func() {
			stop()
			close(halt)
		})
	}

	go func() {
		for {
			select {
			case <-ticks:
			case <-halt:
				return
			case <-t.quit:
				return
			}
			select {
			case t.cmds <- func() { t.tick(generation) }:
			case <-halt:
				return
			case <-t.quit:
				return
			}
		}
	}()
}

func (t *Tracker) cancelCountdown() {
	if t.stopCountdown != nil {
		t.stopCountdown()
		t.stopCountdown = nil
	}
}

// tick is dropped when it belongs to a session that already ended.
func (t *Tracker) tick(generation uint64) {
	if t.rec.State() != session.Running || t.rec.Generation() != generation {
		return
	}
	summarized := t.rec.Recorded() > 0
	completed, err := t.rec.Tick()
	if err != nil {
		t.lg.Warn("countdown tick rejected", "error", err)
		return
	}
	remaining := t.rec.Remaining()
	t.publish(Event{Type: EventCountdown, RemainingSeconds: &remaining})
	if completed {
		t.finish(summarized)
	}
}

func (t *Tracker) finish(summarized bool) {
	t.cancelCountdown()
	t.obs.SessionFinished(summarized)
	t.publish(Event{Type: EventSession, State: session.Idle})
	if !summarized {
		t.lg.Info("session ended without qualifying readings")
		return
	}
	a, _ := t.rec.Analytics()
	t.lg.Info("session completed",
		"avg_speed_kmh", a.AvgSpeedKmh,
		"avg_acceleration_kmh_per_s", a.AvgAccelerationKmhPerS,
		"sample_count", a.SampleCount,
	)
	t.publish(Event{Type: EventAnalytics, Analytics: &a})
}

func (t *Tracker) publish(ev Event) {
	if t.hub == nil {
		return
	}
	ev.TrackerID = t.id
	ev.At = t.now()
	payload, err := json.Marshal(ev)
	if err != nil {
		t.lg.Error("encode event", "error", err)
		return
	}
	t.hub.Broadcast(t.id, payload)
}
