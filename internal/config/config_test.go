package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("INVITE_TTL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.HTTPPort == "" {
		t.Fatal("expected default port")
	}
	if cfg.InviteTTL != 14*24*time.Hour {
		t.Fatalf("expected 14 day invite ttl, got %s", cfg.InviteTTL)
	}
	if cfg.NotificationQueue == "" {
		t.Fatal("expected default notification queue")
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when JWT_SECRET is empty")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("INVITE_TTL", "72h")
	t.Setenv("APPLY_RATE_LIMIT_PER_MIN", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.InviteTTL != 72*time.Hour {
		t.Fatalf("expected 72h, got %s", cfg.InviteTTL)
	}
	if cfg.ApplyPerMin != 7 {
		t.Fatalf("expected 7, got %d", cfg.ApplyPerMin)
	}
}
