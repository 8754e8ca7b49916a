package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/npratt/mindmap/internal/events"
	"github.com/npratt/mindmap/internal/mindmap"
	"github.com/npratt/mindmap/internal/source"
)

// Layout size constants.
const (
	minWidth     = 40
	minHeight    = 10
	headerHeight = 1
)

// modelConfig carries the TUI options into the model.
type modelConfig struct {
	loader     source.Loader
	preloaded  bool // Session already holds data; the loader only serves reloads
	exporter   *Exporter
	topic      string
	fitDelay   time.Duration
	fullscreen bool
	inline     bool // Running without the alternate screen
	altCapable bool // Terminal supports switching to the alternate screen
	onQuit     func()
}

// model is the bubbletea model for the viewer.
type model struct {
	session  *mindmap.Session
	events   <-chan events.Event
	pane     MapPane
	keys     keyMap
	help     help.Model
	exporter *Exporter
	fitDelay time.Duration

	// UI state
	width      int
	height     int
	fullscreen bool
	inline     bool
	altCapable bool
	lastEvent  string

	onQuit func()
}

// eventMsg wraps a session event for the bubbletea message system.
type eventMsg struct {
	event events.Event
}

// reloadMsg asks the viewer to reload from its loader.
type reloadMsg struct{}

// exportDoneMsg carries the outcome of an export command.
type exportDoneMsg struct {
	format string
	path   string
	n      int
	err    error
}

// newModel creates the viewer model and subscribes it to the session.
func newModel(session *mindmap.Session, cfg modelConfig) model {
	m := model{
		session:    session,
		events:     session.Events().Subscribe(),
		pane:       NewMapPane(session, cfg.loader),
		keys:       defaultKeyMap(),
		help:       help.New(),
		exporter:   cfg.exporter,
		fitDelay:   cfg.fitDelay,
		inline:     cfg.inline,
		altCapable: cfg.altCapable,
		onQuit:     cfg.onQuit,
	}
	m.pane.topic = cfg.topic
	m.pane.autoload = !cfg.preloaded
	if cfg.fullscreen {
		m.setFullscreen(true)
	}
	return m
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForEvent(m.events), m.pane.Init()}
	if !m.inline || (m.fullscreen && m.altCapable) {
		cmds = append(cmds, tea.EnterAltScreen)
	}
	return tea.Batch(cmds...)
}

// setFullscreen switches display mode. Inline viewers enter the alternate
// screen natively; when the terminal cannot, the chrome is hidden in place
// and the change is reported as a fallback.
func (m *model) setFullscreen(on bool) tea.Cmd {
	if on == m.fullscreen {
		return nil
	}
	m.fullscreen = on

	var cmd tea.Cmd
	fallback := false
	if m.inline {
		switch {
		case !m.altCapable:
			fallback = on
		case on:
			cmd = tea.EnterAltScreen
		default:
			cmd = tea.ExitAltScreen
		}
	}

	m.pane.SetFullscreen(on)
	m.resize()
	m.session.SetFullscreen(on, fallback)
	return cmd
}

// resize recalculates the pane size from the terminal size and chrome.
func (m *model) resize() {
	m.help.Width = m.width
	if m.fullscreen {
		m.pane.SetSize(m.width, m.height)
		return
	}
	m.pane.SetSize(m.width, safeHeight(m.height-headerHeight-m.footerHeight()))
}

// mapTop returns the screen row of the first map row.
func (m model) mapTop() int {
	if m.fullscreen {
		return 0
	}
	return headerHeight + 1 // Pane status bar
}
