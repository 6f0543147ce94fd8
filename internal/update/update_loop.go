package update

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tidylist/tidylist/internal/commands"
	"github.com/tidylist/tidylist/internal/reminder"
	"github.com/tidylist/tidylist/internal/views"
)

type alertMsg reminder.Alert

type autosaveMsg time.Time

func waitForAlertCmd(ch <-chan reminder.Alert) tea.Cmd {
	return func() tea.Msg {
		alert, ok := <-ch
		if !ok {
			return nil
		}
		return alertMsg(alert)
	}
}

func autosaveCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return autosaveMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{autosaveCmd(time.Duration(m.Config.AutosaveSeconds) * time.Second)}
	if m.Alerts != nil {
		cmds = append(cmds, waitForAlertCmd(m.Alerts.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)

	case alertMsg:
		m.Notification = fmt.Sprintf("%s: %s", typed.Status, typed.Title)
		return m, waitForAlertCmd(m.Alerts.C())

	case autosaveMsg:
		if err := m.Manager.Flush(context.Background()); err != nil {
			m.Status = StatusBar{Text: fmt.Sprintf("autosave failed: %v", err), IsError: true}
		}
		return m, autosaveCmd(time.Duration(m.Config.AutosaveSeconds) * time.Second)
	}
	return m, nil
}

func (m Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.CaptureMode {
		return m.handleCaptureKey(key)
	}
	if m.PaletteActive {
		return m.handlePaletteKey(key)
	}

	switch key.String() {
	case "q":
		return m, tea.Quit
	case "j", "down":
		m.Cursor++
		m.clampCursor()
	case "k", "up":
		m.Cursor--
		m.clampCursor()
	case " ", "enter":
		m = m.toggleAtCursor()
	case "d":
		m = m.deleteAtCursor()
	case "a":
		m.CaptureMode = true
		m.quickAddInput.SetValue("")
		m.quickAddInput.Focus()
		m.Status = StatusBar{Text: "quick add: title, then optional cat: pri: due:"}
	case "/":
		m.PaletteActive = true
		m.commandInput.SetValue("")
		m.commandInput.Focus()
		m.Status = StatusBar{Text: "command palette active"}
	case "s":
		if m.RightPane == PaneStats {
			m.RightPane = PaneDetail
		} else {
			m.RightPane = PaneStats
		}
	case "?":
		m.HelpVisible = !m.HelpVisible
	case "esc":
		m.Notification = ""
	}
	return m, nil
}

func (m Model) handleCaptureKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.CaptureMode = false
		m.quickAddInput.Blur()
		m.Status = StatusBar{Text: "add cancelled"}
		return m, nil
	case "enter":
		m.CaptureMode = false
		m.quickAddInput.Blur()
		return m.runCommand("add " + m.quickAddInput.Value()), nil
	}
	var cmd tea.Cmd
	m.quickAddInput, cmd = m.quickAddInput.Update(key)
	return m, cmd
}

func (m Model) handlePaletteKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.PaletteActive = false
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "palette closed"}
		return m, nil
	case "enter":
		m.PaletteActive = false
		m.commandInput.Blur()
		return m.runCommand(m.commandInput.Value()), nil
	}
	var cmd tea.Cmd
	m.commandInput, cmd = m.commandInput.Update(key)
	return m, cmd
}

func (m Model) toggleAtCursor() Model {
	view := m.Manager.Filtered()
	if m.Cursor >= len(view) {
		return m
	}
	todo, err := m.Manager.Toggle(context.Background(), view[m.Cursor].ID)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	state := "pending"
	if todo.Completed {
		state = "done"
	}
	m.Status = StatusBar{Text: fmt.Sprintf("%q marked %s", todo.Title, state)}
	m.clampCursor()
	return m
}

func (m Model) deleteAtCursor() Model {
	view := m.Manager.Filtered()
	if m.Cursor >= len(view) {
		return m
	}
	target := view[m.Cursor]
	if err := m.Manager.Delete(context.Background(), target.ID); err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: fmt.Sprintf("deleted %q", target.Title)}
	m.clampCursor()
	return m
}

func (m Model) View() string {
	now := time.Now()
	view := m.Manager.Filtered()

	left := views.RenderList(view, m.Cursor, now)
	if m.CaptureMode {
		left += "\n\nadd> " + m.quickAddInput.View()
	}
	if m.PaletteActive {
		left += "\n\n/" + m.commandInput.View()
	}

	var right string
	switch {
	case m.HelpVisible:
		right = views.RenderHelp()
	case m.RightPane == PaneStats:
		right = views.RenderStats(m.Manager.Statistics())
	case m.Cursor < len(view):
		right = views.RenderDetail(view[m.Cursor], now)
	default:
		right = "select a todo to see details"
	}

	return views.RenderApp(views.AppData{
		Header:       "tidylist",
		LeftPane:     left,
		RightPane:    right,
		StatusLine:   m.Status.Text,
		IsError:      m.Status.IsError,
		Footer:       views.RenderFilterLine(m.Manager.CurrentFilter()) + "  ·  ? for help",
		Notification: m.Notification,
	})
}

// runCommand parses and dispatches one palette command against the manager.
func (m Model) runCommand(input string) Model {
	cmd, err := commands.Parse(input)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}

	result, err := commands.Execute(cmd, m.handlers())
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: result.Message}
	m.clampCursor()
	return m
}
