package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("TREE_COUNT_STRATEGY", "")
	t.Setenv("NOTIFICATION_PUBLISH_TIMEOUT", "")
	t.Setenv("SMTP_HOST", "")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.TreeCountStrategy != "cte" {
		t.Errorf("TreeCountStrategy = %q, want cte", cfg.TreeCountStrategy)
	}
	if cfg.NotificationPublishTimeout != 2*time.Second {
		t.Errorf("NotificationPublishTimeout = %v, want 2s", cfg.NotificationPublishTimeout)
	}
	if cfg.EmailEnabled() {
		t.Error("email should be disabled without SMTP_HOST")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("NOTIFICATION_WORKERS", "8")
	t.Setenv("NOTIFICATION_PUBLISH_TIMEOUT", "750ms")
	t.Setenv("DB_SEED", "true")
	t.Setenv("SMTP_HOST", "smtp.example.com")

	cfg := Load()
	if cfg.DatabaseDriver != "postgres" {
		t.Errorf("DatabaseDriver = %q", cfg.DatabaseDriver)
	}
	if cfg.NotificationWorkers != 8 {
		t.Errorf("NotificationWorkers = %d", cfg.NotificationWorkers)
	}
	if cfg.NotificationPublishTimeout != 750*time.Millisecond {
		t.Errorf("NotificationPublishTimeout = %v", cfg.NotificationPublishTimeout)
	}
	if !cfg.SeedDatabase {
		t.Error("SeedDatabase should be true")
	}
	if !cfg.EmailEnabled() {
		t.Error("email should be enabled")
	}
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("NOTIFICATION_WORKERS", "many")
	t.Setenv("NOTIFICATION_TIMEOUT", "soon")

	cfg := Load()
	if cfg.NotificationWorkers != 4 {
		t.Errorf("NotificationWorkers = %d, want default 4", cfg.NotificationWorkers)
	}
	if cfg.NotificationTimeout != 10*time.Second {
		t.Errorf("NotificationTimeout = %v, want default", cfg.NotificationTimeout)
	}
}
