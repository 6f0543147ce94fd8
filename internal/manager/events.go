package manager

import (
	log "github.com/sirupsen/logrus"

	"github.com/tidylist/tidylist/internal/model"
)

type EventKind string

const (
	EventCreated       EventKind = "created"
	EventUpdated       EventKind = "updated"
	EventDeleted       EventKind = "deleted"
	EventToggled       EventKind = "toggled"
	EventChanged       EventKind = "changed"
	EventFilterChanged EventKind = "filterChanged"
)

// Event is one of the typed change notifications below. Payload records are
// copies; handlers cannot reach the manager's collection through them.
type Event interface {
	Kind() EventKind
}

type Created struct {
	Todo model.Todo
}

func (Created) Kind() EventKind { return EventCreated }

type Updated struct {
	Todo     model.Todo
	Previous model.Todo
}

func (Updated) Kind() EventKind { return EventUpdated }

type Deleted struct {
	Todo model.Todo
}

func (Deleted) Kind() EventKind { return EventDeleted }

type Toggled struct {
	Todo         model.Todo
	WasCompleted bool
}

func (Toggled) Kind() EventKind { return EventToggled }

type Changed struct{}

func (Changed) Kind() EventKind { return EventChanged }

type FilterChanged struct {
	Filter Filter
}

func (FilterChanged) Kind() EventKind { return EventFilterChanged }

type Handler func(Event)

// Subscribe registers a handler for one event kind. Handlers run
// synchronously in registration order.
func (m *Manager) Subscribe(kind EventKind, fn Handler) {
	if fn == nil {
		return
	}
	m.subscribers[kind] = append(m.subscribers[kind], fn)
}

// emit dispatches to every handler of the event's kind. A panicking handler
// is logged and skipped so it cannot block the rest of the dispatch order.
func (m *Manager) emit(event Event) {
	for _, fn := range m.subscribers[event.Kind()] {
		dispatch(event, fn)
	}
}

func dispatch(event Event, fn Handler) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("manager: %s handler panicked: %v", event.Kind(), r)
		}
	}()
	fn(event)
}
