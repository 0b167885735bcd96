package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	NATS       NATSConfig
	Memory     MemoryConfig
	Journey    JourneyConfig
	Reading    ReadingConfig
	Cache      CacheConfig
	RateLimit  RateLimitConfig
	CORS       CORSConfig
	Log        LogConfig
	Migrations MigrationsConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int32
	ConnMaxIdle time.Duration
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NATSConfig configures event publishing. An empty URL disables it.
type NATSConfig struct {
	URL string
}

// Memory drivers.
const (
	MemoryDriverHTTP     = "http"
	MemoryDriverInMemory = "inmemory"
)

// MemoryConfig points the reading service at the journey memory service.
// WriteRate caps writes per second; zero disables the cap.
type MemoryConfig struct {
	Driver       string
	URL          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	WriteRate    float64
	WriteBurst   int
}

// Journey storage drivers.
const (
	JourneyDriverPostgres = "postgres"
	JourneyDriverRedis    = "redis"
	JourneyDriverInMemory = "inmemory"
)

// JourneyConfig configures the journey memory service binary.
type JourneyConfig struct {
	Port       int
	Driver     string
	MaxEntries int
	TTL        time.Duration
}

type ReadingConfig struct {
	// PhraseSeed seeds the flavor text generator. Zero seeds from the clock.
	PhraseSeed int64
	Reader     string
	// SessionTTL bounds how long an idle conversation is kept.
	SessionTTL time.Duration
}

type CacheConfig struct {
	InterpretationTTL time.Duration
}

type RateLimitConfig struct {
	TurnMaxRequests int
	TurnWindowSec   int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type MigrationsConfig struct {
	Path string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: k.String("server.host"),
			Port: k.Int("server.port"),
		},
		DB: DBConfig{
			Host:     k.String("db.host"),
			Port:     k.Int("db.port"),
			User:     k.String("db.user"),
			Password: k.String("db.password"),
			Name:     k.String("db.name"),
			SSLMode:  k.String("db.sslmode"),
			MaxConns: int32(k.Int("db.max.conns")),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
			PoolSize: k.Int("redis.pool.size"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		Memory: MemoryConfig{
			Driver:     k.String("memory.driver"),
			URL:        k.String("memory.url"),
			WriteRate:  k.Float64("memory.write.rate"),
			WriteBurst: k.Int("memory.write.burst"),
		},
		Journey: JourneyConfig{
			Port:       k.Int("journey.port"),
			Driver:     k.String("journey.driver"),
			MaxEntries: k.Int("journey.max.entries"),
		},
		Reading: ReadingConfig{
			PhraseSeed: k.Int64("reading.phrase.seed"),
			Reader:     k.String("reading.reader"),
		},
		RateLimit: RateLimitConfig{
			TurnMaxRequests: k.Int("ratelimit.turn.max"),
			TurnWindowSec:   k.Int("ratelimit.turn.window"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
		Migrations: MigrationsConfig{
			Path: k.String("migrations.path"),
		},
	}

	if origins := k.String("cors.allowed.origins"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORS.AllowedOrigins = append(cfg.CORS.AllowedOrigins, o)
			}
		}
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "oracle"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "oracle"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 20
	}
	if cfg.Memory.Driver == "" {
		cfg.Memory.Driver = MemoryDriverHTTP
	}
	if cfg.Memory.URL == "" {
		cfg.Memory.URL = "http://localhost:4001"
	}
	if !k.Exists("memory.write.rate") {
		cfg.Memory.WriteRate = 50
	}
	if cfg.Memory.WriteBurst == 0 {
		cfg.Memory.WriteBurst = 10
	}
	if cfg.Journey.Port == 0 {
		cfg.Journey.Port = 4001
	}
	if cfg.Journey.Driver == "" {
		cfg.Journey.Driver = JourneyDriverPostgres
	}
	if cfg.Journey.MaxEntries == 0 {
		cfg.Journey.MaxEntries = 500
	}
	if cfg.Reading.Reader == "" {
		cfg.Reading.Reader = "Sophia"
	}
	if cfg.RateLimit.TurnMaxRequests == 0 {
		cfg.RateLimit.TurnMaxRequests = 60
	}
	if cfg.RateLimit.TurnWindowSec == 0 {
		cfg.RateLimit.TurnWindowSec = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "debug"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Migrations.Path == "" {
		cfg.Migrations.Path = "migrations"
	}

	// Parse durations
	if cfg.DB.ConnMaxIdle, err = duration(k, "db.conn.max.idle", "5m"); err != nil {
		return nil, err
	}
	if cfg.Memory.ReadTimeout, err = duration(k, "memory.read.timeout", "5s"); err != nil {
		return nil, err
	}
	if cfg.Memory.WriteTimeout, err = duration(k, "memory.write.timeout", "5s"); err != nil {
		return nil, err
	}
	if cfg.Journey.TTL, err = duration(k, "journey.ttl", "2160h"); err != nil {
		return nil, err
	}
	if cfg.Reading.SessionTTL, err = duration(k, "reading.session.ttl", "24h"); err != nil {
		return nil, err
	}
	if cfg.Cache.InterpretationTTL, err = duration(k, "cache.interpretation.ttl", "1h"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func duration(k *koanf.Koanf, key, def string) (time.Duration, error) {
	s := k.String(key)
	if s == "" {
		s = def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}
