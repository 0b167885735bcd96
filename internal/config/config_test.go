package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Memory.Driver != MemoryDriverHTTP || cfg.Memory.URL != "http://localhost:4001" {
		t.Errorf("memory = %+v", cfg.Memory)
	}
	if cfg.Memory.ReadTimeout != 5*time.Second {
		t.Errorf("memory read timeout = %v, want 5s", cfg.Memory.ReadTimeout)
	}
	if cfg.Memory.WriteRate != 50 || cfg.Memory.WriteBurst != 10 {
		t.Errorf("memory write rate = %v burst %d", cfg.Memory.WriteRate, cfg.Memory.WriteBurst)
	}
	if cfg.Journey.Port != 4001 || cfg.Journey.Driver != JourneyDriverPostgres {
		t.Errorf("journey = %+v", cfg.Journey)
	}
	if cfg.Cache.InterpretationTTL != time.Hour {
		t.Errorf("interpretation ttl = %v, want 1h", cfg.Cache.InterpretationTTL)
	}
	if cfg.DB.ConnMaxIdle != 5*time.Minute || cfg.Redis.PoolSize != 20 {
		t.Errorf("pool defaults: idle %v, redis pool %d", cfg.DB.ConnMaxIdle, cfg.Redis.PoolSize)
	}
	if cfg.Reading.SessionTTL != 24*time.Hour {
		t.Errorf("session ttl = %v, want 24h", cfg.Reading.SessionTTL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MEMORY_URL", "http://memory:4001")
	t.Setenv("MEMORY_READ_TIMEOUT", "750ms")
	t.Setenv("READING_PHRASE_SEED", "42")
	t.Setenv("MEMORY_WRITE_RATE", "0")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Memory.URL != "http://memory:4001" {
		t.Errorf("memory url = %q", cfg.Memory.URL)
	}
	if cfg.Memory.ReadTimeout != 750*time.Millisecond {
		t.Errorf("memory read timeout = %v", cfg.Memory.ReadTimeout)
	}
	if cfg.Memory.WriteRate != 0 {
		t.Errorf("memory write rate = %v, want 0", cfg.Memory.WriteRate)
	}
	if cfg.Reading.PhraseSeed != 42 {
		t.Errorf("phrase seed = %d, want 42", cfg.Reading.PhraseSeed)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("cors origins = %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MEMORY_WRITE_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Fatal("expected duration parse error")
	}
}
