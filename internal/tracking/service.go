package tracking

import (
	"context"

	"backend-speedtrack/internal/session"
	"backend-speedtrack/internal/speed"
	"backend-speedtrack/internal/tracker"
)

type Service struct {
	trackers *tracker.Manager
}

func NewService(trackers *tracker.Manager) *Service {
	return &Service{trackers: trackers}
}

func (s *Service) CreateTracker(ctx context.Context, req CreateTrackerRequest) (tracker.Status, error) {
	t, err := s.trackers.Create(req.Profile)
	if err != nil {
		return tracker.Status{}, err
	}
	return t.Status(ctx)
}

func (s *Service) RemoveTracker(_ context.Context, id string) error {
	return s.trackers.Remove(id)
}

func (s *Service) Status(ctx context.Context, id string) (tracker.Status, error) {
	t, err := s.trackers.Get(id)
	if err != nil {
		return tracker.Status{}, err
	}
	return t.Status(ctx)
}

func (s *Service) AddSample(ctx context.Context, id string, sample speed.Sample) (tracker.Result, error) {
	if sample.TimestampMs <= 0 {
		return tracker.Result{}, ErrInvalidSample
	}
	t, err := s.trackers.Get(id)
	if err != nil {
		return tracker.Result{}, err
	}
	return t.Submit(ctx, sample)
}

func (s *Service) StartSession(ctx context.Context, id string, req StartSessionRequest) (tracker.Status, error) {
	t, err := s.trackers.Get(id)
	if err != nil {
		return tracker.Status{}, err
	}
	return t.StartSession(ctx, req.Config())
}

func (s *Service) StopSession(ctx context.Context, id string) (tracker.Status, error) {
	t, err := s.trackers.Get(id)
	if err != nil {
		return tracker.Status{}, err
	}
	return t.StopSession(ctx)
}

// Analytics returns the last completed session summary of a tracker.
func (s *Service) Analytics(ctx context.Context, id string) (session.Analytics, bool, error) {
	st, err := s.Status(ctx, id)
	if err != nil {
		return session.Analytics{}, false, err
	}
	if st.Analytics == nil {
		return session.Analytics{}, false, nil
	}
	return *st.Analytics, true, nil
}
