package update

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type RuntimeConfig struct {
	Backend         string
	SQLitePath      string
	RedisURL        string
	AutosaveSeconds int
	ReminderBuffer  int
	Debug           bool
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Backend:         "sqlite",
		SQLitePath:      defaultSQLitePath(),
		AutosaveSeconds: 30,
		ReminderBuffer:  64,
	}
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("TIDYLIST_BACKEND"))); v != "" {
		switch v {
		case "memory", "sqlite", "redis":
			cfg.Backend = v
		}
	}
	if v := strings.TrimSpace(os.Getenv("TIDYLIST_SQLITE_PATH")); v != "" {
		cfg.SQLitePath = v
	}
	if v := strings.TrimSpace(os.Getenv("TIDYLIST_REDIS_URL")); v != "" {
		cfg.RedisURL = v
	}
	if v, ok := getEnvInt("TIDYLIST_AUTOSAVE_SECONDS"); ok && v > 0 {
		cfg.AutosaveSeconds = v
	}
	if v, ok := getEnvInt("TIDYLIST_REMINDER_BUFFER"); ok && v > 0 {
		cfg.ReminderBuffer = v
	}
	if v, ok := getEnvBool("TIDYLIST_DEBUG"); ok {
		cfg.Debug = v
	}
	return cfg
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tidylist.db"
	}
	return filepath.Join(home, ".tidylist", "tidylist.db")
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
