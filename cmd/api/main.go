package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend-speedtrack/internal/config"
	"backend-speedtrack/internal/db"
	"backend-speedtrack/internal/logging"
	"backend-speedtrack/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig   func() config.Config
	connectRedis func(config.Config) *redis.Client
	pingRedis    func(*redis.Client) error
	notify       func(chan<- os.Signal, ...os.Signal)
	run          func(context.Context, config.Config, *redis.Client, *slog.Logger, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:   config.Load,
		connectRedis: db.ConnectRedis,
		pingRedis:    db.PingRedis,
		notify:       signal.Notify,
		run:          Run,
	}
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()
	lg := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(lg)

	rdb := deps.connectRedis(cfg)
	if err := deps.pingRedis(rdb); err != nil {
		lg.Warn("redis unavailable, live events stay local", "addr", cfg.RedisAddr, "error", err)
	}

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, rdb, lg, signals, nil); err != nil {
		lg.Error("server exited with error", "error", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run starts the HTTP server and waits for termination signals.
func Run(ctx context.Context, cfg config.Config, rdb *redis.Client, lg *slog.Logger, signals <-chan os.Signal, listen ListenFunc) error {
	if lg == nil {
		lg = slog.Default()
	}
	srv := server.NewServer(cfg, rdb, lg)

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()
	lg.Info("server listening", "addr", cfg.ServerPort)

	select {
	case sig := <-signals:
		lg.Info("shutdown requested", "signal", sig)
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			srv.Close()
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	srv.Close()
	if rdb != nil {
		_ = rdb.Close()
	}
	return nil
}
