package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("RENT_SCANNER_CONFIG", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	t.Setenv("DATABASE_DSN", "")

	cfg := Load()

	if cfg.Notify.Cap != 10 {
		t.Fatalf("expected notify cap 10, got %d", cfg.Notify.Cap)
	}
	if cfg.State.SeenCap != 5000 {
		t.Fatalf("expected seen cap 5000, got %d", cfg.State.SeenCap)
	}
	if len(cfg.Search.Configs) != 3 {
		t.Fatalf("expected 3 default searches, got %d", len(cfg.Search.Configs))
	}
	if cfg.Search.Params["order"] != "posttime" {
		t.Fatalf("default search params missing: %v", cfg.Search.Params)
	}
	if cfg.Filters.MinArea != 15 || cfg.Filters.MaxRent != 30000 {
		t.Fatalf("default filters wrong: %+v", cfg.Filters)
	}
	if cfg.Scheduler.Enabled {
		t.Fatal("scheduler must default to run-once")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RENT_SCANNER_CONFIG", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok-from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "chat-from-env")
	t.Setenv("DATABASE_DSN", "postgres://env")

	cfg := Load()

	if cfg.Notifications.Telegram.BotToken != "tok-from-env" {
		t.Fatalf("bot token override missing: %q", cfg.Notifications.Telegram.BotToken)
	}
	if cfg.Notifications.Telegram.ChatID != "chat-from-env" {
		t.Fatalf("chat id override missing: %q", cfg.Notifications.Telegram.ChatID)
	}
	if cfg.Database.DSN != "postgres://env" {
		t.Fatalf("dsn override missing: %q", cfg.Database.DSN)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
logging:
  level: debug
notify:
  cap: 5
state:
  seenFile: /tmp/custom_seen.json
search:
  configs:
    - label: "測試"
      region: 1
      section: "5"
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("RENT_SCANNER_CONFIG", path)
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	t.Setenv("DATABASE_DSN", "")

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("file level not applied: %q", cfg.Logging.Level)
	}
	if cfg.Notify.Cap != 5 {
		t.Fatalf("file cap not applied: %d", cfg.Notify.Cap)
	}
	if cfg.State.SeenFile != "/tmp/custom_seen.json" {
		t.Fatalf("file seen path not applied: %q", cfg.State.SeenFile)
	}
	if len(cfg.Search.Configs) != 1 || cfg.Search.Configs[0].Label != "測試" {
		t.Fatalf("file searches not applied: %+v", cfg.Search.Configs)
	}
	// Unspecified sections keep their defaults.
	if cfg.State.SeenCap != 5000 {
		t.Fatalf("default seen cap lost: %d", cfg.State.SeenCap)
	}
	if len(cfg.Search.Params) == 0 {
		t.Fatal("default search params lost")
	}
}

func TestSchedulerEvery(t *testing.T) {
	t.Parallel()

	if d := (SchedulerConfig{Interval: "15m"}).Every(); d != 15*time.Minute {
		t.Fatalf("expected 15m, got %v", d)
	}
	if d := (SchedulerConfig{Interval: "garbage"}).Every(); d != 30*time.Minute {
		t.Fatalf("malformed interval must fall back to 30m, got %v", d)
	}
}

func TestNotifySendInterval(t *testing.T) {
	t.Parallel()

	if d := (NotifyConfig{SendIntervalMs: 500}).SendInterval(); d != 500*time.Millisecond {
		t.Fatalf("expected 500ms, got %v", d)
	}
	if d := (NotifyConfig{}).SendInterval(); d != 1100*time.Millisecond {
		t.Fatalf("expected 1.1s default, got %v", d)
	}
}
