package tracker

import (
	"log/slog"
	"sync"
	"time"

	"backend-speedtrack/internal/speed"

	"github.com/google/uuid"
)

type ManagerOptions struct {
	Broadcaster Broadcaster
	Observer    Observer
	Ticker      TickerFunc
	Now         func() time.Time
	Logger      *slog.Logger
	// Limit caps the number of live trackers, 0 means unlimited.
	Limit int
	// ProcessorConfig resolves a profile name into filter parameters.
	ProcessorConfig func(profile string) (speed.Config, error)
}

// Manager keeps independent trackers keyed by id.
type Manager struct {
	mu       sync.RWMutex
	trackers map[string]*Tracker
	opts     ManagerOptions
}

func NewManager(opts ManagerOptions) *Manager {
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Ticker == nil {
		opts.Ticker = systemTicker
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ProcessorConfig == nil {
		opts.ProcessorConfig = speed.ConfigForProfile
	}
	return &Manager{
		trackers: map[string]*Tracker{},
		opts:     opts,
	}
}

func (m *Manager) Create(profile string) (*Tracker, error) {
	if profile == "" {
		profile = speed.ProfileSmoothed
	}
	cfg, err := m.opts.ProcessorConfig(profile)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.opts.Limit > 0 && len(m.trackers) >= m.opts.Limit {
		return nil, ErrLimit
	}

	id := uuid.NewString()
	t, err := newTracker(id, profile, cfg, options{
		hub:    m.opts.Broadcaster,
		obs:    m.opts.Observer,
		ticker: m.opts.Ticker,
		now:    m.opts.Now,
		lg:     m.opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	m.trackers[id] = t
	m.opts.Observer.TrackersActive(len(m.trackers))
	m.opts.Logger.Info("tracker created", "tracker_id", id, "profile", profile)
	return t, nil
}

func (m *Manager) Get(id string) (*Tracker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.trackers[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	t, ok := m.trackers[id]
	if ok {
		delete(m.trackers, id)
		m.opts.Observer.TrackersActive(len(m.trackers))
	}
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	t.Close()
	m.opts.Logger.Info("tracker removed", "tracker_id", id)
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trackers)
}

// Close shuts down every tracker.
func (m *Manager) Close() {
	m.mu.Lock()
	trackers := m.trackers
	m.trackers = map[string]*Tracker{}
	m.opts.Observer.TrackersActive(0)
	m.mu.Unlock()

	for _, t := range trackers {
		t.Close()
	}
}
