// Package manager owns the authoritative in-memory todo collection and
// keeps it consistent with the persistence gateway: every mutation either
// lands in both places or is rolled back before the error surfaces.
package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidylist/tidylist/internal/model"
	"github.com/tidylist/tidylist/internal/storage"
)

var (
	ErrNotFound       = errors.New("manager: todo not found")
	ErrDuplicateTitle = errors.New("manager: duplicate title")
)

// Manager is single-writer by design: the host wiring guarantees one
// execution context, so operations run unguarded to completion.
type Manager struct {
	gateway     *storage.Gateway
	todos       []model.Todo
	filter      Filter
	filtered    []model.Todo
	subscribers map[EventKind][]Handler
	now         func() time.Time
}

// New loads the persisted collection and computes the initial view.
func New(ctx context.Context, gateway *storage.Gateway) (*Manager, error) {
	todos, err := gateway.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load todos: %w", err)
	}
	m := &Manager{
		gateway:     gateway,
		todos:       todos,
		filter:      DefaultFilter(),
		subscribers: make(map[EventKind][]Handler),
		now:         time.Now,
	}
	m.recompute()
	return m, nil
}

// Create validates and appends a new todo. A pending todo with the same
// title (case-insensitive) blocks creation; a completed one does not.
func (m *Manager) Create(ctx context.Context, in model.Draft) (model.Todo, error) {
	todo, err := model.New(in, m.now())
	if err != nil {
		return model.Todo{}, err
	}
	if m.titleTaken(todo.Title, "") {
		return model.Todo{}, fmt.Errorf("%w: %q", ErrDuplicateTitle, todo.Title)
	}

	m.todos = append(m.todos, *todo)
	if err := m.gateway.SaveAll(ctx, m.todos); err != nil {
		m.todos = m.todos[:len(m.todos)-1]
		return model.Todo{}, err
	}

	m.recompute()
	m.emit(Created{Todo: clone(*todo)})
	m.emit(Changed{})
	return clone(*todo), nil
}

// Update applies a partial patch to one todo, persisting the whole
// collection and restoring the pre-update snapshot if the write fails.
func (m *Manager) Update(ctx context.Context, id string, patch model.Patch) (model.Todo, error) {
	idx := m.index(id)
	if idx < 0 {
		return model.Todo{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	snapshot := m.todos[idx]
	updated := snapshot
	if err := updated.ApplyUpdate(patch, m.now()); err != nil {
		return model.Todo{}, err
	}
	if patch.Title != nil && m.titleTaken(updated.Title, id) {
		return model.Todo{}, fmt.Errorf("%w: %q", ErrDuplicateTitle, updated.Title)
	}

	m.todos[idx] = updated
	if err := m.gateway.SaveAll(ctx, m.todos); err != nil {
		m.todos[idx] = snapshot
		return model.Todo{}, err
	}

	m.recompute()
	m.emit(Updated{Todo: clone(updated), Previous: clone(snapshot)})
	m.emit(Changed{})
	return clone(updated), nil
}

// Delete removes one todo, reinserting it at its original position if the
// persistence write fails.
func (m *Manager) Delete(ctx context.Context, id string) error {
	idx := m.index(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	removed := m.todos[idx]
	m.todos = append(m.todos[:idx], m.todos[idx+1:]...)
	if err := m.gateway.SaveAll(ctx, m.todos); err != nil {
		m.todos = append(m.todos, model.Todo{})
		copy(m.todos[idx+1:], m.todos[idx:])
		m.todos[idx] = removed
		return err
	}

	m.recompute()
	m.emit(Deleted{Todo: clone(removed)})
	m.emit(Changed{})
	return nil
}

// Toggle flips one todo's completion flag, restoring the prior record if
// the persistence write fails.
func (m *Manager) Toggle(ctx context.Context, id string) (model.Todo, error) {
	idx := m.index(id)
	if idx < 0 {
		return model.Todo{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	snapshot := m.todos[idx]
	m.todos[idx].Toggle(m.now())
	if err := m.gateway.SaveAll(ctx, m.todos); err != nil {
		m.todos[idx] = snapshot
		return model.Todo{}, err
	}

	toggled := clone(m.todos[idx])
	m.recompute()
	m.emit(Toggled{Todo: toggled, WasCompleted: snapshot.Completed})
	m.emit(Changed{})
	return toggled, nil
}

// SetFilter merges the patch into the current descriptor and recomputes
// the view synchronously.
func (m *Manager) SetFilter(patch FilterPatch) {
	m.filter = m.filter.Merge(patch)
	m.recompute()
	m.emit(FilterChanged{Filter: m.filter})
}

func (m *Manager) ClearFilter() {
	m.filter = DefaultFilter()
	m.recompute()
	m.emit(FilterChanged{Filter: m.filter})
}

// ImportData parses an exported document, persists the resulting
// collection, then reloads from storage so memory reflects exactly what
// was written.
func (m *Manager) ImportData(ctx context.Context, doc string, merge bool) error {
	if _, err := m.gateway.Import(ctx, doc, m.todos, merge); err != nil {
		return err
	}
	todos, err := m.gateway.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("reload after import: %w", err)
	}
	m.todos = todos
	m.recompute()
	m.emit(Changed{})
	return nil
}

func (m *Manager) ExportData() (string, error) {
	return m.gateway.Export(m.todos)
}

// Flush rewrites the current collection to storage. Used by the periodic
// autosave at the presentation boundary; mutations already persist
// themselves.
func (m *Manager) Flush(ctx context.Context) error {
	return m.gateway.SaveAll(ctx, m.todos)
}

// All returns a snapshot copy of the whole collection.
func (m *Manager) All() []model.Todo {
	return snapshot(m.todos)
}

// Filtered returns a snapshot copy of the current filtered, sorted view.
func (m *Manager) Filtered() []model.Todo {
	return snapshot(m.filtered)
}

func (m *Manager) CurrentFilter() Filter {
	return m.filter
}

func (m *Manager) Get(id string) (model.Todo, bool) {
	idx := m.index(id)
	if idx < 0 {
		return model.Todo{}, false
	}
	return clone(m.todos[idx]), true
}

func (m *Manager) StorageInfo(ctx context.Context) storage.StorageInfo {
	return m.gateway.Info(ctx)
}

func (m *Manager) recompute() {
	m.filtered = m.filter.apply(m.todos)
}

func (m *Manager) index(id string) int {
	for i := range m.todos {
		if m.todos[i].ID == id {
			return i
		}
	}
	return -1
}

// titleTaken reports whether another pending todo already uses the title,
// compared case-insensitively on the trimmed form. Completed todos never
// block a title.
func (m *Manager) titleTaken(title string, excludeID string) bool {
	for i := range m.todos {
		todo := &m.todos[i]
		if todo.Completed || todo.ID == excludeID {
			continue
		}
		if strings.EqualFold(todo.Title, title) {
			return true
		}
	}
	return false
}

// clone deep-copies one record so consumers, event handlers included, can
// never alias the manager's collection.
func clone(todo model.Todo) model.Todo {
	if todo.DueDate != nil {
		due := *todo.DueDate
		todo.DueDate = &due
	}
	return todo
}

// snapshot deep-copies a slice of records.
func snapshot(todos []model.Todo) []model.Todo {
	out := make([]model.Todo, len(todos))
	for i, todo := range todos {
		out[i] = clone(todo)
	}
	return out
}
