package tracking

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend-speedtrack/internal/session"
	"backend-speedtrack/internal/speed"
	"backend-speedtrack/internal/tracker"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	mgr := tracker.NewManager(tracker.ManagerOptions{
		Now: func() time.Time { return time.UnixMilli(0) },
	})
	t.Cleanup(mgr.Close)
	return NewService(mgr)
}

func fix(i int, mps float64) speed.Sample {
	return speed.Sample{
		Latitude:       -6.2 + float64(i)*0.0001,
		Longitude:      106.8,
		RawSpeedMps:    &mps,
		AccuracyMeters: 5,
		TimestampMs:    int64(i+1) * 1000,
	}
}

func TestServiceSessionFlow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	st, err := svc.CreateTracker(ctx, CreateTrackerRequest{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if st.ID == "" || st.Profile != speed.ProfileSmoothed {
		t.Fatalf("unexpected tracker: %+v", st)
	}

	if _, err := svc.StartSession(ctx, st.ID, StartSessionRequest{DurationMinutes: 4}); err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; i < 4; i++ {
		res, err := svc.AddSample(ctx, st.ID, fix(i, 2.78))
		if err != nil {
			t.Fatalf("sample: %v", err)
		}
		if !res.Recorded {
			t.Fatalf("expected sample %d recorded", i)
		}
	}
	stopped, err := svc.StopSession(ctx, st.ID)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if stopped.State != session.Idle {
		t.Fatalf("expected idle after stop")
	}

	a, ok, err := svc.Analytics(ctx, st.ID)
	if err != nil || !ok {
		t.Fatalf("analytics: %v %v", ok, err)
	}
	if a.SampleCount != 4 || a.DurationSeconds != 240 {
		t.Fatalf("unexpected analytics: %+v", a)
	}
}

func TestServiceUnknownTracker(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Status(ctx, "missing"); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.AddSample(ctx, "missing", fix(0, 1)); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.StartSession(ctx, "missing", StartSessionRequest{DurationSeconds: 1}); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.StopSession(ctx, "missing"); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, _, err := svc.Analytics(ctx, "missing"); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.RemoveTracker(ctx, "missing"); !errors.Is(err, tracker.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStartSessionRequestConfig(t *testing.T) {
	if got := (StartSessionRequest{DurationMinutes: 2}).Config(); got.DurationSeconds != 120 {
		t.Fatalf("unexpected minutes conversion: %+v", got)
	}
	if got := (StartSessionRequest{DurationMinutes: 2, DurationSeconds: 5}).Config(); got.DurationSeconds != 5 {
		t.Fatalf("seconds must win: %+v", got)
	}
	if got := (StartSessionRequest{}).Config(); got.DurationSeconds != 0 {
		t.Fatalf("expected zero duration: %+v", got)
	}
}

var errTest = errors.New("boom")

func TestServiceRejectsSampleWithoutTimestamp(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	st, err := svc.CreateTracker(ctx, CreateTrackerRequest{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	sample := fix(0, 2)
	sample.TimestampMs = 0
	if _, err := svc.AddSample(ctx, st.ID, sample); !errors.Is(err, ErrInvalidSample) {
		t.Fatalf("expected invalid sample, got %v", err)
	}
	after, err := svc.Status(ctx, st.ID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if after.LastReading != nil {
		t.Fatalf("rejected sample reached the processor: %+v", after.LastReading)
	}
}
