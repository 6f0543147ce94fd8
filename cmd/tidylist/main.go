package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/tidylist/tidylist/internal/kv"
	"github.com/tidylist/tidylist/internal/manager"
	"github.com/tidylist/tidylist/internal/reminder"
	"github.com/tidylist/tidylist/internal/storage"
	"github.com/tidylist/tidylist/internal/update"
)

func main() {
	cfg := update.RuntimeConfigFromEnv(update.DefaultRuntimeConfig())
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	ctx := context.Background()
	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("storage backend: %v", err)
	}
	defer closeStore()

	if removed, err := storage.Cleanup(ctx, store); err != nil {
		log.Warnf("legacy cleanup: %v", err)
	} else if removed > 0 {
		log.Infof("removed %d legacy slots", removed)
	}

	gateway := storage.NewGateway(ctx, store)
	if !gateway.Available() {
		log.Warn("store unusable, todos will not survive this session")
	}

	mgr, err := manager.New(ctx, gateway)
	if err != nil {
		log.Fatalf("load todos: %v", err)
	}

	alerts := reminder.NewEngine(cfg.ReminderBuffer)
	alerts.Start()
	defer alerts.Stop()
	alerts.Reschedule(mgr.All(), time.Now())
	mgr.Subscribe(manager.EventChanged, func(manager.Event) {
		alerts.Reschedule(mgr.All(), time.Now())
	})

	program := tea.NewProgram(update.NewModel(mgr, alerts, store, cfg))
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tidylist failed: %v\n", err)
		os.Exit(1)
	}
}

// openStore builds the configured backend. The memory backend is the
// degraded, session-only mode.
func openStore(cfg update.RuntimeConfig) (kv.Store, func(), error) {
	switch cfg.Backend {
	case "memory":
		return kv.NewMemory(), func() {}, nil
	case "redis":
		store, err := kv.OpenRedis(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		store, err := kv.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	}
}
