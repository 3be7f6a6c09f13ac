package server

import (
	"log/slog"

	"backend-speedtrack/internal/auth"
	"backend-speedtrack/internal/config"
	"backend-speedtrack/internal/metrics"
	"backend-speedtrack/internal/stream"
	"backend-speedtrack/internal/tracker"
	"backend-speedtrack/internal/tracking"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	Redis    *redis.Client
	Stream   *stream.Hub
	Trackers *tracker.Manager
	Metrics  *metrics.Collector
}

func NewServer(cfg config.Config, redisClient *redis.Client, lg *slog.Logger) *Server {
	if lg == nil {
		lg = slog.Default()
	}
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(logger.New())

	hub := stream.NewHub(redisClient)
	collector := metrics.New()

	s := &Server{
		App:     app,
		Cfg:     cfg,
		Redis:   redisClient,
		Stream:  hub,
		Metrics: collector,
		Trackers: tracker.NewManager(tracker.ManagerOptions{
			Broadcaster:     hub,
			Observer:        collector,
			Logger:          lg,
			Limit:           cfg.MaxTrackers,
			ProcessorConfig: cfg.Processor,
		}),
	}

	registerRoutes(s)
	return s
}

// Close stops every tracker and the stream relay.
func (s *Server) Close() {
	s.Trackers.Close()
	s.Stream.Close()
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "trackers": s.Trackers.Len()})
	})
	s.App.Get("/metrics", s.Metrics.Handler())

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.Cfg.DeviceKeyHash))
	tracking.RegisterRoutes(s.App.Group("/tracking"), tracking.NewService(s.Trackers), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
