package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "TOKEN_TTL", "DEV_AUTH", "REDIS_ADDR", "SUMMARY_CACHE_TTL", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "" {
		t.Errorf("an explicitly empty PORT should be kept, got %q", cfg.Port)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("TokenTTL = %v, want 24h", cfg.TokenTTL)
	}
	if cfg.DevAuth {
		t.Error("DevAuth should default to false")
	}
	if cfg.SummaryCacheTTL != 30*time.Second {
		t.Errorf("SummaryCacheTTL = %v, want 30s", cfg.SummaryCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("DEV_AUTH", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SUMMARY_CACHE_TTL", "5s")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %v, want 1h", cfg.TokenTTL)
	}
	if !cfg.DevAuth {
		t.Error("DevAuth should be true")
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 {
		t.Errorf("redis = %q db %d", cfg.RedisAddr, cfg.RedisDB)
	}
	if cfg.SummaryCacheTTL != 5*time.Second {
		t.Errorf("SummaryCacheTTL = %v, want 5s", cfg.SummaryCacheTTL)
	}
}
