// Package storage persists the full todo collection under one primary slot
// with a single rolling backup slot used for best-effort recovery.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tidylist/tidylist/internal/kv"
	"github.com/tidylist/tidylist/internal/model"
)

const (
	primarySlot = "tidylist.todos"
	backupSlot  = "tidylist.todos.backup"
	probeSlot   = "tidylist.probe"

	// Version tags every persisted envelope.
	Version = "1.0.0"

	// legacyPrefix matches slots written by the pre-1.0 web build.
	legacyPrefix = "todoApp_"
)

var ErrBadFormat = errors.New("storage: malformed document")

// Envelope is the persisted and exported document shape. Timestamp is set
// on saves, ExportDate on exports.
type Envelope struct {
	Version    string         `json:"version"`
	Timestamp  string         `json:"timestamp,omitempty"`
	ExportDate string         `json:"exportDate,omitempty"`
	Todos      []model.Record `json:"todos"`
}

// Gateway reads and writes the collection through a kv.Store. A store that
// fails its construction probe marks the gateway permanently unavailable:
// saves fail fast and loads return empty instead of retrying the store.
type Gateway struct {
	store       kv.Store
	unavailable bool
	now         func() time.Time
}

func NewGateway(ctx context.Context, store kv.Store) *Gateway {
	g := &Gateway{store: store, now: time.Now}
	if err := store.Probe(ctx); err != nil {
		log.Warnf("storage: probe failed, running without persistence: %v", err)
		g.unavailable = true
		return g
	}
	if err := store.Set(ctx, probeSlot, "ok"); err != nil {
		log.Warnf("storage: probe write failed, running without persistence: %v", err)
		g.unavailable = true
		return g
	}
	_ = store.Remove(ctx, probeSlot)
	return g
}

func (g *Gateway) Available() bool {
	return !g.unavailable
}

// SaveAll writes the whole collection to the primary slot, copying the
// previous contents to the backup slot first. On a failed write the backup
// is copied back over the primary slot; the in-memory rollback is the
// caller's job.
func (g *Gateway) SaveAll(ctx context.Context, todos []model.Todo) error {
	if g.unavailable {
		return fmt.Errorf("%w: gateway degraded at construction", kv.ErrUnavailable)
	}

	prev, ok, err := g.store.Get(ctx, primarySlot)
	switch {
	case err != nil:
		log.Warnf("storage: backup copy skipped, primary read failed: %v", err)
	case ok:
		if err := g.store.Set(ctx, backupSlot, prev); err != nil {
			log.Warnf("storage: backup copy failed: %v", err)
		}
	}

	records := make([]model.Record, 0, len(todos))
	for _, todo := range todos {
		records = append(records, todo.ToRecord())
	}
	raw, err := json.Marshal(Envelope{
		Version:   Version,
		Timestamp: g.now().Format(time.RFC3339Nano),
		Todos:     records,
	})
	if err != nil {
		g.restoreBackup(ctx)
		return fmt.Errorf("encode todos: %w", err)
	}

	if err := g.store.Set(ctx, primarySlot, string(raw)); err != nil {
		g.restoreBackup(ctx)
		return fmt.Errorf("write todos: %w", err)
	}
	return nil
}

// LoadAll reads the primary slot. An absent slot is an empty collection. A
// slot that fails to parse is repaired from the backup slot; if that fails
// too the collection starts empty rather than erroring.
func (g *Gateway) LoadAll(ctx context.Context) ([]model.Todo, error) {
	if g.unavailable {
		return nil, nil
	}

	raw, ok, err := g.store.Get(ctx, primarySlot)
	if err != nil {
		log.Warnf("storage: primary read failed: %v", err)
		return g.loadFromBackup(ctx)
	}
	if !ok {
		return nil, nil
	}

	todos, err := g.decodeCollection(raw)
	if err != nil {
		log.Warnf("storage: primary slot unreadable: %v", err)
		return g.loadFromBackup(ctx)
	}
	return todos, nil
}

func (g *Gateway) loadFromBackup(ctx context.Context) ([]model.Todo, error) {
	raw, ok, err := g.store.Get(ctx, backupSlot)
	if err != nil || !ok {
		return nil, nil
	}
	todos, err := g.decodeCollection(raw)
	if err != nil {
		log.Warnf("storage: backup slot unreadable: %v", err)
		return nil, nil
	}
	// Repair the primary slot so the next load succeeds directly.
	if err := g.store.Set(ctx, primarySlot, raw); err != nil {
		log.Warnf("storage: primary repair failed: %v", err)
	}
	return todos, nil
}

func (g *Gateway) restoreBackup(ctx context.Context) {
	raw, ok, err := g.store.Get(ctx, backupSlot)
	if err != nil || !ok {
		return
	}
	if err := g.store.Set(ctx, primarySlot, raw); err != nil {
		log.Warnf("storage: backup restore failed: %v", err)
	}
}

// decodeCollection accepts the versioned envelope or a bare legacy array.
// Individual malformed entries are skipped, never failing the whole load.
func (g *Gateway) decodeCollection(raw string) ([]model.Todo, error) {
	var env struct {
		Todos []json.RawMessage `json:"todos"`
	}
	if err := json.Unmarshal([]byte(raw), &env); err == nil && env.Todos != nil {
		return g.decodeEntries(env.Todos), nil
	}

	var bare []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &bare); err == nil && bare != nil {
		return g.decodeEntries(bare), nil
	}

	return nil, fmt.Errorf("%w: neither envelope nor array", ErrBadFormat)
}

func (g *Gateway) decodeEntries(entries []json.RawMessage) []model.Todo {
	now := g.now()
	todos := make([]model.Todo, 0, len(entries))
	for _, entry := range entries {
		var rec model.Record
		if err := json.Unmarshal(entry, &rec); err != nil {
			log.Warnf("storage: skipping unreadable entry: %v", err)
			continue
		}
		todo, err := model.FromRecord(rec, now)
		if err != nil {
			log.Warnf("storage: skipping invalid entry %q: %v", rec.ID, err)
			continue
		}
		todos = append(todos, *todo)
	}
	return todos
}

// Export renders the collection as a pretty-printed versioned document for
// download and inspection.
func (g *Gateway) Export(todos []model.Todo) (string, error) {
	records := make([]model.Record, 0, len(todos))
	for _, todo := range todos {
		records = append(records, todo.ToRecord())
	}
	raw, err := json.MarshalIndent(Envelope{
		Version:    Version,
		ExportDate: g.now().Format(time.RFC3339Nano),
		Todos:      records,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}
	return string(raw), nil
}

// Import parses a previously exported document and persists the resulting
// collection. With merge the document is unioned into current, and an
// imported entry whose ID collides with an existing one is re-identified
// rather than overwriting it.
func (g *Gateway) Import(ctx context.Context, doc string, current []model.Todo, merge bool) ([]model.Todo, error) {
	var env struct {
		Todos []json.RawMessage `json:"todos"`
	}
	if err := json.Unmarshal([]byte(doc), &env); err != nil || env.Todos == nil {
		return nil, fmt.Errorf("%w: missing todos array", ErrBadFormat)
	}
	imported := g.decodeEntries(env.Todos)

	result := imported
	if merge {
		existing := make(map[string]bool, len(current))
		for _, todo := range current {
			existing[todo.ID] = true
		}
		result = append([]model.Todo(nil), current...)
		now := g.now()
		for _, todo := range imported {
			if existing[todo.ID] {
				todo = *todo.CloneWithNewID(now)
			}
			existing[todo.ID] = true
			result = append(result, todo)
		}
	}

	if err := g.SaveAll(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// StorageInfo describes the persisted state for the presentation layer.
type StorageInfo struct {
	Available bool
	Slot      string
	Records   int
	Bytes     int
}

func (g *Gateway) Info(ctx context.Context) StorageInfo {
	info := StorageInfo{Available: !g.unavailable, Slot: primarySlot}
	if g.unavailable {
		return info
	}
	raw, ok, err := g.store.Get(ctx, primarySlot)
	if err != nil || !ok {
		return info
	}
	info.Bytes = len(raw)
	if todos, err := g.decodeCollection(raw); err == nil {
		info.Records = len(todos)
	}
	return info
}

// Cleanup removes slots left behind by the legacy naming scheme. Safe to
// run repeatedly.
func Cleanup(ctx context.Context, store kv.Store) (int, error) {
	keys, err := store.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("list keys: %w", err)
	}
	removed := 0
	for _, key := range keys {
		if !strings.HasPrefix(key, legacyPrefix) {
			continue
		}
		if err := store.Remove(ctx, key); err != nil {
			return removed, fmt.Errorf("remove %s: %w", key, err)
		}
		removed++
	}
	return removed, nil
}
