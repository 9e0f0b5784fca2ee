package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("FAVICON_TIMEOUT", "not-a-duration")
	t.Setenv("S3_USE_SSL", "false")
	t.Setenv("JWT_SECRET", "something-long-and-random")
	t.Setenv("ADMIN_PASSWORD", "hunter22")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("TokenTTL = %v, want 2h", cfg.TokenTTL)
	}
	if cfg.FaviconTimeout != 2*time.Second {
		t.Errorf("FaviconTimeout = %v, want fallback 2s", cfg.FaviconTimeout)
	}
	if cfg.S3UseSSL {
		t.Error("S3UseSSL should be false")
	}
	if got := cfg.InsecureDefaults(); len(got) != 0 {
		t.Errorf("InsecureDefaults() = %v, want none", got)
	}
}

func TestInsecureDefaults(t *testing.T) {
	cfg := &Config{JWTSecret: defaultJWTSecret, AdminPassword: defaultAdminPassword}
	got := cfg.InsecureDefaults()
	if len(got) != 2 || got[0] != "JWT_SECRET" || got[1] != "ADMIN_PASSWORD" {
		t.Errorf("InsecureDefaults() = %v", got)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.in}
		if got := cfg.SlogLevel(); got != tt.want {
			t.Errorf("SlogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
