package tui

import (
	"io"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/npratt/mindmap/internal/mindmap"
	"github.com/npratt/mindmap/internal/source"
)

// DefaultFitDelay is how long a fit request waits for the new layout to be
// drawn before the viewport is recentred.
const DefaultFitDelay = 50 * time.Millisecond

// TUI is the interactive terminal viewer for one mind-map session.
type TUI struct {
	session    *mindmap.Session
	loader     source.Loader
	preloaded  bool
	exporter   *Exporter
	topic      string
	fitDelay   time.Duration
	mouse      bool
	fullscreen bool
	inline     bool
	onQuit     func()
	out        io.Writer

	mu      sync.Mutex
	program *tea.Program // Set while Run is active
}

// Option configures the TUI.
type Option func(*TUI)

// New creates a TUI for session.
func New(session *mindmap.Session, opts ...Option) *TUI {
	t := &TUI{
		session:  session,
		fitDelay: DefaultFitDelay,
		mouse:    true,
		out:      os.Stdout,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithLoader sets the loader used on start and by the reload key.
func WithLoader(l source.Loader) Option {
	return func(t *TUI) {
		t.loader = l
	}
}

// WithPreloaded marks the session as already loaded. The loader is then
// only used by the reload key.
func WithPreloaded(on bool) Option {
	return func(t *TUI) {
		t.preloaded = on
	}
}

// WithExporter enables the export keys.
func WithExporter(e *Exporter) Option {
	return func(t *TUI) {
		t.exporter = e
	}
}

// WithTopic sets the topic shown before a loader reports one.
func WithTopic(topic string) Option {
	return func(t *TUI) {
		t.topic = topic
	}
}

// WithFitDelay sets the delay between a layout change and the fit.
func WithFitDelay(d time.Duration) Option {
	return func(t *TUI) {
		t.fitDelay = d
	}
}

// WithMouse enables or disables mouse support.
func WithMouse(on bool) Option {
	return func(t *TUI) {
		t.mouse = on
	}
}

// WithFullscreen starts the viewer with the chrome hidden.
func WithFullscreen(on bool) Option {
	return func(t *TUI) {
		t.fullscreen = on
	}
}

// WithInline runs the viewer in the normal screen buffer. Fullscreen then
// switches to the alternate screen.
func WithInline(on bool) Option {
	return func(t *TUI) {
		t.inline = on
	}
}

// WithOnQuit sets the callback invoked when the user presses 'q'.
func WithOnQuit(fn func()) Option {
	return func(t *TUI) {
		t.onQuit = fn
	}
}

// WithOutput sets the writer used for plain-text output when stdout is not
// a terminal.
func WithOutput(w io.Writer) Option {
	return func(t *TUI) {
		t.out = w
	}
}

// Run starts the TUI and blocks until it exits. Without a usable terminal
// the map is printed once as plain text instead.
func (t *TUI) Run() error {
	if !isTerminal() || terminalTooSmall() {
		return t.runSimple()
	}

	m := newModel(t.session, t.modelConfig())

	var opts []tea.ProgramOption
	if !t.inline {
		opts = append(opts, tea.WithAltScreen())
	}
	if t.mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)
	t.mu.Lock()
	t.program = p
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.program = nil
		t.mu.Unlock()
	}()

	_, err := p.Run()
	return err
}

// Reload makes a running viewer reload from its loader, as the reload key
// does. It is safe to call from any goroutine and does nothing when the
// viewer is not running interactively.
func (t *TUI) Reload() {
	t.mu.Lock()
	p := t.program
	t.mu.Unlock()
	if p != nil {
		p.Send(reloadMsg{})
	}
}

func (t *TUI) modelConfig() modelConfig {
	return modelConfig{
		loader:     t.loader,
		preloaded:  t.preloaded,
		exporter:   t.exporter,
		topic:      t.topic,
		fitDelay:   t.fitDelay,
		fullscreen: t.fullscreen,
		inline:     t.inline,
		altCapable: altScreenCapable(),
		onQuit:     t.onQuit,
	}
}
