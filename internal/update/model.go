package update

import (
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/tidylist/tidylist/internal/kv"
	"github.com/tidylist/tidylist/internal/manager"
	"github.com/tidylist/tidylist/internal/reminder"
)

type Pane string

const (
	PaneDetail Pane = "detail"
	PaneStats  Pane = "stats"
)

type StatusBar struct {
	Text    string
	IsError bool
}

// Model is the Elm-style application state: the collection manager holds
// the data, this holds only what the terminal needs to draw.
type Model struct {
	Manager *manager.Manager
	Alerts  *reminder.Engine
	Store   kv.Store
	Config  RuntimeConfig

	Cursor        int
	RightPane     Pane
	CaptureMode   bool
	PaletteActive bool
	HelpVisible   bool
	Status        StatusBar
	Notification  string

	quickAddInput textinput.Model
	commandInput  textinput.Model
}

func NewModel(mgr *manager.Manager, alerts *reminder.Engine, store kv.Store, cfg RuntimeConfig) Model {
	quickAdd := textinput.New()
	quickAdd.Placeholder = "title cat:work pri:high due:2026-04-01"
	quickAdd.CharLimit = 200

	command := textinput.New()
	command.Placeholder = "add | filter | sort | clear | export | import | cleanup"
	command.CharLimit = 200

	return Model{
		Manager:       mgr,
		Alerts:        alerts,
		Store:         store,
		Config:        cfg,
		RightPane:     PaneDetail,
		Status:        StatusBar{Text: "ready"},
		quickAddInput: quickAdd,
		commandInput:  command,
	}
}

// clampCursor keeps the cursor inside the filtered view after any change.
func (m *Model) clampCursor() {
	size := len(m.Manager.Filtered())
	if size == 0 {
		m.Cursor = 0
		return
	}
	if m.Cursor >= size {
		m.Cursor = size - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}
