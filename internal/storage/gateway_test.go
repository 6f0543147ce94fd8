package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/tidylist/tidylist/internal/kv"
	"github.com/tidylist/tidylist/internal/model"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

func setupGateway(t *testing.T, store kv.Store) *Gateway {
	t.Helper()
	g := NewGateway(context.Background(), store)
	g.now = fixedNow
	return g
}

func mustTodo(t *testing.T, title string) model.Todo {
	t.Helper()
	todo, err := model.New(model.Draft{Title: title}, fixedNow())
	if err != nil {
		t.Fatalf("new todo: %v", err)
	}
	return *todo
}

func TestSaveAllLoadAllRoundTrip(t *testing.T) {
	ctx := context.Background()
	g := setupGateway(t, kv.NewMemory())

	todos := []model.Todo{mustTodo(t, "First"), mustTodo(t, "Second")}
	if err := g.SaveAll(ctx, todos); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := g.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 || loaded[0].Title != "First" || loaded[1].Title != "Second" {
		t.Fatalf("unexpected load result: %#v", loaded)
	}
}

func TestLoadAllEmptyWhenSlotAbsent(t *testing.T) {
	g := setupGateway(t, kv.NewMemory())
	loaded, err := g.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected empty collection, got %#v", loaded)
	}
}

func TestLoadAllAcceptsLegacyBareArray(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	g := setupGateway(t, store)

	rec := mustTodo(t, "Legacy entry").ToRecord()
	raw, err := json.Marshal([]model.Record{rec})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := store.Set(ctx, "tidylist.todos", string(raw)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	loaded, err := g.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Title != "Legacy entry" {
		t.Fatalf("unexpected load result: %#v", loaded)
	}
}

func TestLoadAllSkipsMalformedEntries(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	g := setupGateway(t, store)

	good := mustTodo(t, "Keeper").ToRecord()
	goodRaw, _ := json.Marshal(good)
	doc := `{"version":"1.0.0","todos":[` + string(goodRaw) + `,{"id":"x","title":"   "},42]}`
	if err := store.Set(ctx, "tidylist.todos", doc); err != nil {
		t.Fatalf("seed: %v", err)
	}

	loaded, err := g.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Title != "Keeper" {
		t.Fatalf("expected only the valid entry, got %#v", loaded)
	}
}

func TestLoadAllRepairsFromBackup(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	g := setupGateway(t, store)

	if err := g.SaveAll(ctx, []model.Todo{mustTodo(t, "Stable")}); err != nil {
		t.Fatalf("save v1: %v", err)
	}
	// Second save puts v1 into the backup slot.
	if err := g.SaveAll(ctx, []model.Todo{mustTodo(t, "Stable"), mustTodo(t, "Extra")}); err != nil {
		t.Fatalf("save v2: %v", err)
	}
	// Garble the primary slot behind the gateway's back.
	if err := store.Set(ctx, "tidylist.todos", "{not json"); err != nil {
		t.Fatalf("garble: %v", err)
	}

	loaded, err := g.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Title != "Stable" {
		t.Fatalf("expected backup contents, got %#v", loaded)
	}

	// The primary slot is repaired, so a direct read now parses again.
	raw, ok, _ := store.Get(ctx, "tidylist.todos")
	if !ok || !strings.Contains(raw, "Stable") {
		t.Fatalf("primary slot not repaired: ok=%v raw=%q", ok, raw)
	}
}

func TestSaveAllFailureRecoversPriorCollection(t *testing.T) {
	ctx := context.Background()
	inner := kv.NewMemory()
	flaky := &kv.Flaky{Inner: inner}
	g := setupGateway(t, flaky)

	if err := g.SaveAll(ctx, []model.Todo{mustTodo(t, "Survivor")}); err != nil {
		t.Fatalf("save v1: %v", err)
	}

	// The next primary write tears mid-way and fails.
	flaky.CorruptKeys = map[string]bool{"tidylist.todos": true}
	err := g.SaveAll(ctx, []model.Todo{mustTodo(t, "Survivor"), mustTodo(t, "Lost")})
	if err == nil {
		t.Fatal("expected save failure")
	}

	flaky.CorruptKeys = nil
	loaded, err := g.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Title != "Survivor" {
		t.Fatalf("prior collection lost: %#v", loaded)
	}
}

func TestSaveAllLogsSkippedBackupWhenPrimaryUnreadable(t *testing.T) {
	ctx := context.Background()
	flaky := &kv.Flaky{Inner: kv.NewMemory()}
	g := setupGateway(t, flaky)

	if err := g.SaveAll(ctx, []model.Todo{mustTodo(t, "First")}); err != nil {
		t.Fatalf("save v1: %v", err)
	}

	hook := logtest.NewGlobal()
	defer hook.Reset()

	// A primary slot that cannot be read skips the backup copy but must
	// neither fail the save nor do so silently.
	flaky.GetErr = kv.ErrUnavailable
	if err := g.SaveAll(ctx, []model.Todo{mustTodo(t, "Second")}); err != nil {
		t.Fatalf("save with unreadable primary: %v", err)
	}
	flaky.GetErr = nil

	logged := false
	for _, entry := range hook.AllEntries() {
		if strings.Contains(entry.Message, "backup copy skipped") {
			logged = true
		}
	}
	if !logged {
		t.Fatal("expected a warning about the skipped backup copy")
	}

	loaded, err := g.LoadAll(ctx)
	if err != nil || len(loaded) != 1 || loaded[0].Title != "Second" {
		t.Fatalf("save did not land: todos=%#v err=%v", loaded, err)
	}
}

func TestGatewayDegradedWhenProbeFails(t *testing.T) {
	ctx := context.Background()
	flaky := &kv.Flaky{Inner: kv.NewMemory(), ProbeErr: kv.ErrUnavailable}
	g := setupGateway(t, flaky)

	if g.Available() {
		t.Fatal("expected degraded gateway")
	}
	if err := g.SaveAll(ctx, []model.Todo{mustTodo(t, "Nope")}); !errors.Is(err, kv.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	loaded, err := g.LoadAll(ctx)
	if err != nil || len(loaded) != 0 {
		t.Fatalf("degraded load: todos=%#v err=%v", loaded, err)
	}
}

func TestExportIsVersionedAndIndented(t *testing.T) {
	g := setupGateway(t, kv.NewMemory())
	doc, err := g.Export([]model.Todo{mustTodo(t, "Exported")})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(doc, "\n  ") {
		t.Fatal("expected indented document")
	}

	var env Envelope
	if err := json.Unmarshal([]byte(doc), &env); err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if env.Version != Version || env.ExportDate == "" || len(env.Todos) != 1 {
		t.Fatalf("unexpected envelope: %#v", env)
	}
}

func TestImportRejectsMissingTodosArray(t *testing.T) {
	g := setupGateway(t, kv.NewMemory())
	for _, doc := range []string{`{}`, `{"todos":null}`, `not json`, `{"version":"1.0.0"}`} {
		if _, err := g.Import(context.Background(), doc, nil, false); !errors.Is(err, ErrBadFormat) {
			t.Fatalf("doc %q: expected ErrBadFormat, got %v", doc, err)
		}
	}
}

func TestImportReplace(t *testing.T) {
	ctx := context.Background()
	g := setupGateway(t, kv.NewMemory())

	current := []model.Todo{mustTodo(t, "Old")}
	doc, err := g.Export([]model.Todo{mustTodo(t, "New")})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	result, err := g.Import(ctx, doc, current, false)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(result) != 1 || result[0].Title != "New" {
		t.Fatalf("expected replaced collection, got %#v", result)
	}
}

func TestImportMergeReidentifiesCollidingIDs(t *testing.T) {
	ctx := context.Background()
	g := setupGateway(t, kv.NewMemory())

	existing := mustTodo(t, "Existing")
	colliding := mustTodo(t, "Imported twin")
	colliding.ID = existing.ID
	doc, err := g.Export([]model.Todo{colliding})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	result, err := g.Import(ctx, doc, []model.Todo{existing}, true)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected union of 2 todos, got %#v", result)
	}
	if result[0].ID != existing.ID || result[0].Title != "Existing" {
		t.Fatalf("existing record disturbed: %#v", result[0])
	}
	if result[1].ID == existing.ID {
		t.Fatal("imported record kept the colliding id")
	}
	if result[1].Title != "Imported twin" {
		t.Fatalf("imported record lost fields: %#v", result[1])
	}
}

func TestCleanupRemovesLegacySlots(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	_ = store.Set(ctx, "todoApp_state", "{}")
	_ = store.Set(ctx, "todoApp_backup", "{}")
	_ = store.Set(ctx, "tidylist.todos", "{}")

	removed, err := Cleanup(ctx, store)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if _, ok, _ := store.Get(ctx, "tidylist.todos"); !ok {
		t.Fatal("cleanup removed a live slot")
	}

	removed, err = Cleanup(ctx, store)
	if err != nil || removed != 0 {
		t.Fatalf("cleanup not idempotent: removed=%d err=%v", removed, err)
	}
}

func TestInfoCountsRecords(t *testing.T) {
	ctx := context.Background()
	g := setupGateway(t, kv.NewMemory())
	if err := g.SaveAll(ctx, []model.Todo{mustTodo(t, "A"), mustTodo(t, "B")}); err != nil {
		t.Fatalf("save: %v", err)
	}

	info := g.Info(ctx)
	if !info.Available || info.Records != 2 || info.Bytes == 0 {
		t.Fatalf("unexpected info: %#v", info)
	}
}
