package tui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/npratt/mindmap/internal/events"
	"github.com/npratt/mindmap/internal/export"
	"github.com/npratt/mindmap/internal/mindmap"
)

// channelClosedMsg signals that the event channel was closed.
type channelClosedMsg struct{}

// waitForEvent creates a command that waits for the next event from the channel.
// Returns channelClosedMsg if the channel is closed.
func waitForEvent(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return channelClosedMsg{}
		}
		return eventMsg{event: event}
	}
}

// fitCmd delivers a fit request after delay, once the new layout has been
// rendered at least once.
func fitCmd(generation int, reason string, delay time.Duration) tea.Cmd {
	msg := fitMsg{generation: generation, reason: reason}
	if delay <= 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(delay, func(time.Time) tea.Msg { return msg })
}

// Update implements tea.Model. It handles all message types and updates the model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case eventMsg:
		cmd := m.handleEvent(msg.event)
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case channelClosedMsg:
		slog.Info("session event channel closed, exiting TUI")
		return m, tea.Quit

	case reloadMsg:
		m.lastEvent = "source changed, reloading"
		return m, m.pane.Refresh()

	case exportDoneMsg:
		m.session.ReportExport(msg.format, msg.path, msg.n, msg.err)
		if msg.err != nil {
			m.pane.SetError("export failed: " + msg.err.Error())
		} else {
			m.pane.SetNotice("saved " + msg.path)
		}
		return m, nil

	case fitMsg, mapTickMsg, mapStartLoadingMsg, mapResultMsg, spinner.TickMsg:
		var cmd tea.Cmd
		m.pane, cmd = m.pane.Update(msg)
		return m, cmd

	default:
		return m, nil
	}
}

// handleEvent reacts to a session event and returns any follow-up command.
func (m *model) handleEvent(ev events.Event) tea.Cmd {
	if fit, ok := ev.(*events.FitRequestedEvent); ok {
		return fitCmd(fit.Generation, fit.Reason, m.fitDelay)
	}
	if text := events.Format(ev); text != "" {
		m.lastEvent = text
	}
	return nil
}

// handleKey processes keyboard input and returns the updated model and command.
func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.onQuit != nil {
			m.onQuit()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()

	case key.Matches(msg, m.keys.Back):
		if m.fullscreen {
			return m, m.setFullscreen(false)
		}
		m.pane.ClearMessages()

	case key.Matches(msg, m.keys.Toggle):
		m.pane.ToggleSelected()

	case key.Matches(msg, m.keys.Collapse):
		m.pane.CollapseCurrent()

	case key.Matches(msg, m.keys.Pan):
		switch msg.String() {
		case "shift+up", "K":
			m.pane.Pan(0, -1)
		case "shift+down", "J":
			m.pane.Pan(0, 1)
		case "shift+left", "H":
			m.pane.Pan(-1, 0)
		case "shift+right", "L":
			m.pane.Pan(1, 0)
		}

	case key.Matches(msg, m.keys.Up):
		m.pane.Move(0, -1)
	case key.Matches(msg, m.keys.Down):
		m.pane.Move(0, 1)
	case key.Matches(msg, m.keys.Left):
		m.pane.Move(-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.pane.Move(1, 0)

	case key.Matches(msg, m.keys.Fit):
		m.session.RequestFit()

	case key.Matches(msg, m.keys.Fullscreen):
		return m, m.setFullscreen(!m.fullscreen)

	case key.Matches(msg, m.keys.Direction):
		dir := mindmap.DirectionLR
		if m.session.Snapshot().Direction == mindmap.DirectionLR {
			dir = mindmap.DirectionTB
		}
		m.session.SetDirection(dir)

	case key.Matches(msg, m.keys.ExportPNG):
		return m, m.exportCmd(export.FormatPNG)

	case key.Matches(msg, m.keys.ExportSVG):
		return m, m.exportCmd(export.FormatSVG)

	case key.Matches(msg, m.keys.Reload):
		return m, m.pane.Refresh()
	}
	return m, nil
}

// handleMouse toggles the clicked node and pans on wheel events.
func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.pane.Pan(0, -1)
	case tea.MouseButtonWheelDown:
		m.pane.Pan(0, 1)
	case tea.MouseButtonWheelLeft:
		m.pane.Pan(-1, 0)
	case tea.MouseButtonWheelRight:
		m.pane.Pan(1, 0)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		y := msg.Y - m.mapTop()
		if y < 0 {
			return m, nil
		}
		m.pane.ClickAt(msg.X, y)
	}
	return m, nil
}

// exportCmd renders the current view to a file in the background.
func (m *model) exportCmd(format export.Format) tea.Cmd {
	if m.exporter == nil {
		m.pane.SetNotice("export is not configured")
		return nil
	}
	view := m.session.Snapshot()
	if view.Layout.Empty() {
		m.pane.SetNotice("nothing to export")
		return nil
	}

	exp := m.exporter
	topic := m.pane.Topic()
	m.pane.SetNotice(fmt.Sprintf("exporting %s...", format))
	return func() tea.Msg {
		path, n, err := exp.Export(view, topic, format)
		return exportDoneMsg{format: string(format), path: path, n: n, err: err}
	}
}
