package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mystic-arcana/oracle/internal/api"
	"github.com/mystic-arcana/oracle/internal/config"
	"github.com/mystic-arcana/oracle/internal/database"
	"github.com/mystic-arcana/oracle/internal/journey"
	inats "github.com/mystic-arcana/oracle/internal/nats"
	iredis "github.com/mystic-arcana/oracle/internal/redis"
	"github.com/mystic-arcana/oracle/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]api.HealthCheck{}

	// Storage
	var repo journey.Repository
	switch cfg.Journey.Driver {
	case config.JourneyDriverRedis:
		redisClient, err := iredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Error("connecting to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		repo = journey.NewRedisRepository(redisClient, cfg.Journey.MaxEntries, cfg.Journey.TTL)
		checks["redis"] = iredis.HealthCheck(redisClient)

	case config.JourneyDriverInMemory:
		slog.Warn("journey entries are kept in memory and lost on restart")
		repo = journey.NewInMemoryRepository(cfg.Journey.MaxEntries)

	default:
		pool, err := database.NewPostgresPool(ctx, cfg.DB, "oracle-journey")
		if err != nil {
			slog.Error("connecting to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := database.RunMigrations(cfg.DB.DSN(), cfg.Migrations.Path); err != nil {
			slog.Error("running migrations", "error", err)
			os.Exit(1)
		}

		repo = journey.NewPostgresRepository(pool, cfg.Journey.MaxEntries)
		checks["database"] = database.HealthCheck(pool)
	}

	svc := journey.NewService(repo)

	// NATS (optional): record level-ups as journey milestones
	if cfg.NATS.URL != "" {
		natsClient, err := inats.NewClient(ctx, cfg.NATS, "oracle-journey")
		if err != nil {
			slog.Warn("NATS unavailable, level milestones will not be recorded", "error", err)
		} else {
			defer natsClient.Close()
			checks["nats"] = natsClient.Ping

			recorder := journey.NewMilestoneRecorder(svc, inats.NewConsumerManager(natsClient.JetStream()))
			go func() {
				if err := recorder.Start(ctx); err != nil {
					slog.Error("milestone recorder stopped", "error", err)
				}
			}()
		}
	}
	router := api.NewJourneyRouter(
		api.RouterConfig{
			CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
			Checks:             checks,
		},
		journey.NewHandler(svc, journey.DefaultServerName),
	)

	srv := server.New(journey.DefaultServerName, cfg.Server.Host, cfg.Journey.Port, router)
	if err := srv.Start(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
