package metrics

import (
	"backend-speedtrack/internal/speed"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements tracker.Observer on top of a private Prometheus registry.
type Collector struct {
	registry *prometheus.Registry
	samples  *prometheus.CounterVec
	sessions *prometheus.CounterVec
	started  prometheus.Counter
	active   prometheus.Gauge
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "speedtrack",
			Name:      "samples_total",
			Help:      "Location samples processed, by tracker profile and outcome.",
		}, []string{"profile", "outcome"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "speedtrack",
			Name:      "sessions_finished_total",
			Help:      "Finished sessions, by whether analytics were produced.",
		}, []string{"result"}),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "speedtrack",
			Name:      "sessions_started_total",
			Help:      "Sessions started.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "speedtrack",
			Name:      "trackers_active",
			Help:      "Live trackers.",
		}),
	}
	c.registry.MustRegister(c.samples, c.sessions, c.started, c.active)
	return c
}

func (c *Collector) SampleProcessed(profile string, outcome speed.Outcome) {
	c.samples.WithLabelValues(profile, outcome.String()).Inc()
}

func (c *Collector) SessionStarted() {
	c.started.Inc()
}

func (c *Collector) SessionFinished(summarized bool) {
	result := "empty"
	if summarized {
		result = "summarized"
	}
	c.sessions.WithLabelValues(result).Inc()
}

func (c *Collector) TrackersActive(n int) {
	c.active.Set(float64(n))
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
}
