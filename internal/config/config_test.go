package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DOCTORS_TABLE_NAME", "")
	t.Setenv("SLOT_LIMIT", "")
	t.Setenv("EMAIL_PROVIDER", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.DoctorsTable != "doctors" || cfg.SchedulesTable != "doctor_schedules" {
		t.Fatalf("expected default table names, got %s / %s", cfg.DoctorsTable, cfg.SchedulesTable)
	}
	if cfg.SlotLimit != 3 {
		t.Fatalf("expected default slot limit, got %d", cfg.SlotLimit)
	}
	if cfg.EmailProvider != "ses" {
		t.Fatalf("expected default email provider, got %s", cfg.EmailProvider)
	}
	if cfg.NotifyPollInterval != 5*time.Second {
		t.Fatalf("expected default poll interval, got %s", cfg.NotifyPollInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("AWS_REGION", "ap-south-1")
	t.Setenv("DOCTORS_TABLE_NAME", "doctors_v2")
	t.Setenv("NOTIFICATION_QUEUE_URL", "https://sqs.local/notifications")
	t.Setenv("NOTIFY_POLL_INTERVAL", "45s")
	t.Setenv("SLOT_LIMIT", "5")
	t.Setenv("EMAIL_PROVIDER", "sendgrid")
	t.Setenv("SENDGRID_API_KEY", "sg-key")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.AWSRegion != "ap-south-1" {
		t.Fatalf("expected region override, got %s", cfg.AWSRegion)
	}
	if cfg.DoctorsTable != "doctors_v2" {
		t.Fatalf("expected table override, got %s", cfg.DoctorsTable)
	}
	if cfg.NotificationQueue != "https://sqs.local/notifications" {
		t.Fatalf("expected queue override, got %s", cfg.NotificationQueue)
	}
	if cfg.NotifyPollInterval != 45*time.Second {
		t.Fatalf("expected poll interval override, got %s", cfg.NotifyPollInterval)
	}
	if cfg.SlotLimit != 5 {
		t.Fatalf("expected slot limit override, got %d", cfg.SlotLimit)
	}
	if cfg.EmailProvider != "sendgrid" || cfg.SendGridAPIKey != "sg-key" {
		t.Fatalf("expected email overrides, got %s / %s", cfg.EmailProvider, cfg.SendGridAPIKey)
	}
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("SLOT_LIMIT", "many")
	t.Setenv("NOTIFY_POLL_INTERVAL", "soon")
	cfg := Load()
	if cfg.SlotLimit != 3 {
		t.Fatalf("expected fallback slot limit, got %d", cfg.SlotLimit)
	}
	if cfg.NotifyPollInterval != 5*time.Second {
		t.Fatalf("expected fallback poll interval, got %s", cfg.NotifyPollInterval)
	}
}
