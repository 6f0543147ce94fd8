package update

import (
	"testing"
)

func TestRuntimeConfigFromEnv(t *testing.T) {
	t.Setenv("TIDYLIST_BACKEND", "redis")
	t.Setenv("TIDYLIST_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("TIDYLIST_AUTOSAVE_SECONDS", "5")
	t.Setenv("TIDYLIST_DEBUG", "yes")

	cfg := RuntimeConfigFromEnv(DefaultRuntimeConfig())
	if cfg.Backend != "redis" || cfg.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("backend config not applied: %#v", cfg)
	}
	if cfg.AutosaveSeconds != 5 || !cfg.Debug {
		t.Fatalf("tuning config not applied: %#v", cfg)
	}
}

func TestRuntimeConfigIgnoresInvalidValues(t *testing.T) {
	t.Setenv("TIDYLIST_BACKEND", "s3")
	t.Setenv("TIDYLIST_AUTOSAVE_SECONDS", "-3")
	t.Setenv("TIDYLIST_REMINDER_BUFFER", "lots")

	base := DefaultRuntimeConfig()
	cfg := RuntimeConfigFromEnv(base)
	if cfg.Backend != base.Backend {
		t.Fatalf("unknown backend accepted: %q", cfg.Backend)
	}
	if cfg.AutosaveSeconds != base.AutosaveSeconds || cfg.ReminderBuffer != base.ReminderBuffer {
		t.Fatalf("invalid tuning accepted: %#v", cfg)
	}
}
