package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mystic-arcana/oracle/internal/api"
	"github.com/mystic-arcana/oracle/internal/config"
	"github.com/mystic-arcana/oracle/internal/database"
	"github.com/mystic-arcana/oracle/internal/interpretation"
	"github.com/mystic-arcana/oracle/internal/learning"
	"github.com/mystic-arcana/oracle/internal/memory"
	mw "github.com/mystic-arcana/oracle/internal/middleware"
	inats "github.com/mystic-arcana/oracle/internal/nats"
	"github.com/mystic-arcana/oracle/internal/orchestrator"
	iredis "github.com/mystic-arcana/oracle/internal/redis"
	"github.com/mystic-arcana/oracle/internal/server"
)

const sweepInterval = time.Minute

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

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB, "oracle")
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), cfg.Migrations.Path); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	checks := map[string]api.HealthCheck{
		"database": database.HealthCheck(pool),
		"redis":    iredis.HealthCheck(redisClient),
	}

	// NATS (optional)
	engineOpts := []learning.Option{learning.WithReader(cfg.Reading.Reader)}
	if cfg.NATS.URL != "" {
		natsClient, err := inats.NewClient(ctx, cfg.NATS, "oracle")
		if err != nil {
			slog.Warn("NATS unavailable, learning events will not be published", "error", err)
		} else {
			defer natsClient.Close()
			engineOpts = append(engineOpts, learning.WithPublisher(inats.NewPublisher(natsClient.JetStream())))
			checks["nats"] = natsClient.Ping
		}
	}

	// Memory service
	var memClient memory.Client
	switch cfg.Memory.Driver {
	case config.MemoryDriverInMemory:
		memClient = memory.NewInMemoryClient()
	default:
		memClient = memory.NewHTTPClient(cfg.Memory)
	}

	// Learning
	engine := learning.NewEngine(memClient, learning.NewRedisLevelStore(redisClient), engineOpts...)

	// Interpretation
	lookup := interpretation.NewCachedLookup(
		interpretation.NewPostgresLookup(pool),
		redisClient,
		cfg.Cache.InterpretationTTL,
	)
	phrases := interpretation.NewRandomPhrases(cfg.Reading.Reader, cfg.Reading.PhraseSeed)
	synthesizer := interpretation.NewSynthesizer(phrases, interpretation.WithReader(cfg.Reading.Reader))

	// Conversation
	orch := orchestrator.NewOrchestrator(synthesizer, lookup, engine, phrases)
	go sweepSessions(ctx, orch.Sessions(), cfg.Reading.SessionTTL)

	turnLimiter := mw.NewRateLimiter(redisClient, "turn", cfg.RateLimit.TurnMaxRequests, cfg.RateLimit.TurnWindowSec).
		WithKey(mw.ByURLParam("sessionID"))

	// Router
	router := api.NewRouter(
		api.RouterConfig{
			CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
			Checks:             checks,
		},
		orchestrator.NewHandler(orch).WithTurnLimiter(turnLimiter.Middleware),
		learning.NewHandler(engine),
	)

	// Start server
	srv := server.New("oracle", cfg.Server.Host, cfg.Server.Port, router)
	if err := srv.Start(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// sweepSessions drops conversations idle for longer than ttl until ctx ends.
func sweepSessions(ctx context.Context, sessions *orchestrator.SessionStore, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := sessions.Sweep(now.Add(-ttl)); n > 0 {
				slog.Info("expired idle reading sessions", "count", n)
			}
		}
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
