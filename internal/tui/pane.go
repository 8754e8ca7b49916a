package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/npratt/mindmap/internal/events"
	"github.com/npratt/mindmap/internal/mindmap"
	"github.com/npratt/mindmap/internal/source"
)

const (
	// mapTickInterval is the interval for updating elapsed time while loading.
	mapTickInterval = 100 * time.Millisecond
	// defaultLoadTimeout bounds a single load.
	defaultLoadTimeout = 2 * time.Minute
	// panStep is the number of cells moved per pan key.
	panStep = 4
)

// MapPane renders one mind-map session and owns its viewport and keyboard
// selection. Session state is only mutated from Update.
type MapPane struct {
	session     *mindmap.Session
	loader      source.Loader
	autoload    bool // Load on Init; false when the session was preloaded
	loadTimeout time.Duration
	spinner     spinner.Model
	loading     bool
	startedAt   time.Time
	errorMsg    string
	notice      string
	topic       string
	width       int
	height      int
	fullscreen  bool
	vp          Viewport
	selected    string
	requestID   int // For staleness detection
	fits        int // Applied fit requests
}

// mapTickMsg signals a tick for updating elapsed time during a load.
type mapTickMsg time.Time

// mapStartLoadingMsg signals the start of a loading operation.
type mapStartLoadingMsg struct {
	requestID  int
	startFetch bool // when true, start the fetch after processing this message
}

// mapResultMsg carries the result of a load.
type mapResultMsg struct {
	result    *source.Result
	err       error
	requestID int
}

// fitMsg applies a fit request for one layout generation.
type fitMsg struct {
	generation int
	reason     string
}

// NewMapPane creates a MapPane for session. loader may be nil when the
// session was loaded up front.
func NewMapPane(session *mindmap.Session, loader source.Loader) MapPane {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	p := MapPane{
		session:     session,
		loader:      loader,
		autoload:    true,
		loadTimeout: defaultLoadTimeout,
		spinner:     sp,
	}
	p.selected = p.session.Snapshot().RootID
	return p
}

// Init returns initial commands for the pane.
func (p MapPane) Init() tea.Cmd {
	if p.loader == nil || !p.autoload {
		return nil
	}
	return p.refreshCmd()
}

// Update handles messages and returns the updated pane and any commands.
func (p MapPane) Update(msg tea.Msg) (MapPane, tea.Cmd) {
	switch msg := msg.(type) {
	case mapTickMsg:
		if p.loading {
			var cmd tea.Cmd
			p.spinner, cmd = p.spinner.Update(msg)
			return p, tea.Batch(cmd, p.tickCmd())
		}
		return p, nil

	case mapStartLoadingMsg:
		p.requestID = msg.requestID
		p.loading = true
		p.startedAt = time.Now()
		if msg.startFetch {
			return p, tea.Batch(p.fetchCmd(msg.requestID), p.tickCmd())
		}
		return p, nil

	case mapResultMsg:
		// Drop stale results
		if msg.requestID != p.requestID {
			return p, nil
		}
		p.loading = false
		if msg.err != nil {
			p.errorMsg = msg.err.Error()
			return p, nil
		}
		p.errorMsg = ""
		p.Load(msg.result)
		return p, nil

	case fitMsg:
		// A newer layout has superseded this request.
		if msg.generation != p.session.Generation() {
			return p, nil
		}
		p.fit()
		return p, nil

	case spinner.TickMsg:
		if p.loading {
			var cmd tea.Cmd
			p.spinner, cmd = p.spinner.Update(msg)
			return p, cmd
		}
		return p, nil

	default:
		return p, nil
	}
}

// Load replaces the session graph with a loaded result.
func (p *MapPane) Load(res *source.Result) {
	var data *mindmap.Data
	if res != nil {
		data = res.Data
		p.topic = res.Topic
	}
	p.session.Load(data)
	view := p.session.Snapshot()
	p.selected = view.RootID
	if p.topic == "" {
		if root, ok := view.Subgraph.Lookup(view.RootID); ok {
			p.topic = root.Label
		}
	}
	p.notice = ""
}

// refreshCmd returns a command that loads data through the loader.
func (p MapPane) refreshCmd() tea.Cmd {
	if p.loading || p.loader == nil {
		return nil
	}

	// The fetch starts only after mapStartLoadingMsg has recorded the
	// requestID, so a fast load cannot be dropped as stale.
	reqID := p.requestID + 1
	return tea.Batch(
		p.spinner.Tick,
		func() tea.Msg {
			return mapStartLoadingMsg{requestID: reqID, startFetch: true}
		},
	)
}

// fetchCmd returns a command that loads data in the background.
func (p MapPane) fetchCmd(requestID int) tea.Cmd {
	loader := p.loader
	timeout := p.loadTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		res, err := loader.Load(ctx)
		return mapResultMsg{result: res, err: err, requestID: requestID}
	}
}

// tickCmd returns a command that sends a tick message.
func (p MapPane) tickCmd() tea.Cmd {
	return tea.Tick(mapTickInterval, func(t time.Time) tea.Msg {
		return mapTickMsg(t)
	})
}

// Refresh triggers an async reload.
func (p *MapPane) Refresh() tea.Cmd {
	return p.refreshCmd()
}

// ToggleSelected expands or collapses the selected node.
func (p *MapPane) ToggleSelected() mindmap.ToggleResult {
	return p.toggle(p.selected)
}

// CollapseCurrent pops the last element of the path.
func (p *MapPane) CollapseCurrent() mindmap.ToggleResult {
	view := p.session.Snapshot()
	if len(view.Path) < 2 {
		return mindmap.ToggleResult{Outcome: mindmap.OutcomeNone}
	}
	return p.toggle(view.Path[len(view.Path)-1])
}

func (p *MapPane) toggle(id string) mindmap.ToggleResult {
	if id == "" {
		return mindmap.ToggleResult{Outcome: mindmap.OutcomeNone}
	}
	label := p.label(id)
	res := p.session.Toggle(id)
	p.notice = ""
	switch res.Outcome {
	case mindmap.OutcomeUnreachable:
		p.notice = fmt.Sprintf("%s is not reachable from the root; showing the root", label)
		p.selected = p.session.Snapshot().RootID
	case mindmap.OutcomeCollapsed, mindmap.OutcomeExpanded:
		p.selected = id
	}
	p.ensureSelection()
	return res
}

// ClickAt selects and toggles the node under map-relative cell (x, y).
func (p *MapPane) ClickAt(x, y int) (mindmap.ToggleResult, bool) {
	view := p.session.Snapshot()
	id, ok := view.Layout.NodeAt(float64(x+p.vp.OffsetX)+0.5, float64(y+p.vp.OffsetY)+0.5)
	if !ok {
		return mindmap.ToggleResult{}, false
	}
	p.selected = id
	return p.toggle(id), true
}

// Move shifts the selection to the nearest node in direction (dx, dy).
func (p *MapPane) Move(dx, dy int) {
	view := p.session.Snapshot()
	if view.Layout.Empty() {
		return
	}
	from, ok := view.Layout.Placements[p.selected]
	if !ok {
		p.ensureSelection()
		return
	}
	if id, ok := nearest(view.Layout, from, dx, dy); ok {
		p.selected = id
		p.reveal(view.Layout.Placements[id])
	}
}

// nearest returns the node closest to from in direction (dx, dy), weighing
// off-axis distance double.
func nearest(l *mindmap.Layout, from mindmap.Placement, dx, dy int) (string, bool) {
	fc := from.Center()
	best, bestScore := "", math.Inf(1)
	for _, id := range l.Order {
		if id == from.ID {
			continue
		}
		c := l.Placements[id].Center()
		along := (c.X-fc.X)*float64(dx) + (c.Y-fc.Y)*float64(dy)
		if along <= 0 {
			continue
		}
		across := math.Abs((c.X-fc.X)*float64(dy)) + math.Abs((c.Y-fc.Y)*float64(dx))
		if score := along + 2*across; score < bestScore {
			best, bestScore = id, score
		}
	}
	return best, best != ""
}

// Pan moves the viewport by whole pan steps.
func (p *MapPane) Pan(dx, dy int) {
	p.vp.OffsetX += dx * panStep
	p.vp.OffsetY += dy * panStep
}

// ensureSelection keeps the selection on a positioned node.
func (p *MapPane) ensureSelection() {
	view := p.session.Snapshot()
	if view.Layout.Empty() {
		p.selected = ""
		return
	}
	if _, ok := view.Layout.Placements[p.selected]; ok {
		return
	}
	for i := len(view.Path) - 1; i >= 0; i-- {
		if _, ok := view.Layout.Placements[view.Path[i]]; ok {
			p.selected = view.Path[i]
			return
		}
	}
	p.selected = view.Layout.Order[0]
}

// fit recentres the viewport on the layout bounds. When the layout is
// larger than the viewport the current path node is kept in view instead.
func (p *MapPane) fit() {
	p.fits++
	p.ensureSelection()

	view := p.session.Snapshot()
	if view.Layout.Empty() {
		p.vp.OffsetX, p.vp.OffsetY = 0, 0
		return
	}
	b := view.Layout.Bounds
	focus := mindmap.Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
	if len(view.Path) > 0 {
		if pl, ok := view.Layout.Placements[view.Path[len(view.Path)-1]]; ok {
			focus = pl.Center()
		}
	}
	p.vp.OffsetX = fitOffset(b.MinX, b.MaxX, p.vp.Width, focus.X)
	p.vp.OffsetY = fitOffset(b.MinY, b.MaxY, p.vp.Height, focus.Y)
}

// fitOffset returns the viewport offset along one axis.
func fitOffset(lo, hi float64, size int, focus float64) int {
	span := hi - lo
	if span <= float64(size) {
		return int(math.Floor(lo - (float64(size)-span)/2))
	}
	off := focus - float64(size)/2
	off = math.Max(lo, math.Min(off, hi-float64(size)))
	return int(math.Round(off))
}

// reveal scrolls just enough to show p.
func (p *MapPane) reveal(pl mindmap.Placement) {
	b := toBox(pl, Viewport{})
	if b.x < p.vp.OffsetX {
		p.vp.OffsetX = b.x
	} else if b.x+b.w > p.vp.OffsetX+p.vp.Width {
		p.vp.OffsetX = b.x + b.w - p.vp.Width
	}
	if b.y < p.vp.OffsetY {
		p.vp.OffsetY = b.y
	} else if b.y+b.h > p.vp.OffsetY+p.vp.Height {
		p.vp.OffsetY = b.y + b.h - p.vp.Height
	}
}

// View renders the pane.
func (p MapPane) View() string {
	if p.width == 0 || p.height == 0 {
		return ""
	}
	if p.fullscreen {
		return p.renderMap()
	}
	return p.renderStatusBar(p.width) + "\n" + p.renderMap()
}

// renderStatusBar renders loading state, errors, notices and a summary.
func (p MapPane) renderStatusBar(width int) string {
	if p.loading {
		elapsed := time.Since(p.startedAt).Round(100 * time.Millisecond)
		status := p.spinner.View() + " Loading mind-map... (" + elapsed.String() + " elapsed)"
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Width(width).
			Render(status)
	}

	if p.errorMsg != "" {
		return styles.Error.Width(width).Render("Error: " + fitCells(p.errorMsg, max(1, width-7)))
	}

	if p.notice != "" {
		return styles.Notice.Width(width).Render(fitCells(p.notice, width))
	}

	view := p.session.Snapshot()
	info := fmt.Sprintf("%s | %s of %d | depth %d",
		view.Direction,
		pluralize(len(view.Subgraph.Nodes), "node", "nodes"),
		view.NodeCount,
		max(0, len(view.Path)-1),
	)
	if n := len(view.Layout.Hidden); n > 0 {
		info += fmt.Sprintf(" | %d unplaced", n)
	}
	if warnings := p.session.Warnings(); len(warnings) > 0 {
		info += " | ⚠ " + warnings[0]
	}
	return styles.Status.Width(width).Render(fitCells(info, width))
}

// renderMap renders the map area.
func (p MapPane) renderMap() string {
	if p.vp.Height < 1 || p.vp.Width < 1 {
		return ""
	}
	view := p.session.Snapshot()
	if view.Layout.Empty() {
		msg := "No mind-map data yet."
		if p.loader != nil {
			msg += " Press R to reload."
		}
		return styles.Placeholder.
			Width(p.vp.Width).
			Height(p.vp.Height).
			Render(msg)
	}
	return renderMap(view, p.vp, p.selected).Render(classStyle)
}

// SetSize updates the pane dimensions.
func (p *MapPane) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.vp.Width = width
	p.vp.Height = height
	if !p.fullscreen {
		p.vp.Height = safeHeight(height - 1) // Status bar
	}
	p.fit()
}

// SetFullscreen switches between the chromed and the bare map.
func (p *MapPane) SetFullscreen(on bool) {
	p.fullscreen = on
	p.SetSize(p.width, p.height)
}

// SetError shows an error in the status bar.
func (p *MapPane) SetError(msg string) {
	p.errorMsg = msg
}

// SetNotice shows a transient notice in the status bar.
func (p *MapPane) SetNotice(msg string) {
	p.notice = msg
}

// ClearMessages clears the error and notice.
func (p *MapPane) ClearMessages() bool {
	had := p.errorMsg != "" || p.notice != ""
	p.errorMsg = ""
	p.notice = ""
	return had
}

// IsLoading returns true if a load is in progress.
func (p MapPane) IsLoading() bool {
	return p.loading
}

// Selected returns the selected node id.
func (p MapPane) Selected() string {
	return p.selected
}

// Topic returns the topic of the loaded mind-map.
func (p MapPane) Topic() string {
	return p.topic
}

// Viewport returns the current viewport.
func (p MapPane) Viewport() Viewport {
	return p.vp
}

func (p MapPane) label(id string) string {
	if n, ok := p.session.Snapshot().Subgraph.Lookup(id); ok {
		return fmt.Sprintf("%q", events.SafeString(n.Label))
	}
	return "node " + id
}

// breadcrumb joins the labels along the path.
func breadcrumb(view mindmap.View, width int) string {
	labels := make([]string, 0, len(view.Path))
	for _, id := range view.Path {
		if n, ok := view.Subgraph.Lookup(id); ok {
			labels = append(labels, events.SafeString(n.Label))
		}
	}
	return fitCells(strings.Join(labels, " › "), width)
}

func pluralize(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// safeHeight ensures height is at least 1.
func safeHeight(h int) int {
	if h < 1 {
		return 1
	}
	return h
}
