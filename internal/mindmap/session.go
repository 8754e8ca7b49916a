package mindmap

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/npratt/mindmap/internal/events"
)

// Fit request reasons.
const (
	FitReasonLayout     = "layout"
	FitReasonFullscreen = "fullscreen"
	FitReasonManual     = "manual"
)

// View is a consistent snapshot of a session for rendering.
type View struct {
	Generation  int
	RootID      string
	Path        []string
	Subgraph    Subgraph
	Layout      *Layout
	Direction   Direction
	Fullscreen  bool
	Diagnostics Diagnostics
	NodeCount   int
}

// Session ties one loaded graph to its expansion path, layout and event
// router. The path has a single writer (Toggle/ExpandTo) and any number of
// readers through Snapshot.
type Session struct {
	id      string
	adapter *Adapter
	router  *events.Router
	logger  *slog.Logger

	mu         sync.RWMutex
	model      *Model
	tracker    *Tracker
	direction  Direction
	fullscreen bool
	generation int
	sub        Subgraph
	layout     *Layout
	cached     bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDirection sets the initial layout direction.
func WithDirection(d Direction) SessionOption {
	return func(s *Session) {
		s.direction = d
	}
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithRouterBuffer sets the subscriber buffer size of the session router.
func WithRouterBuffer(size int) SessionOption {
	return func(s *Session) {
		s.router = events.NewRouter(size)
	}
}

// NewSession creates an empty session that lays out through adapter.
func NewSession(adapter *Adapter, opts ...SessionOption) *Session {
	s := &Session{
		id:        uuid.New().String(),
		adapter:   adapter,
		logger:    slog.Default(),
		model:     BuildModel(nil),
		tracker:   NewTracker(""),
		direction: DirectionTB,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.router == nil {
		s.router = events.NewRouter(events.DefaultBufferSize)
	}
	s.logger = s.logger.With("session", s.id)
	s.recompute()
	return s
}

// ID returns the session identifier carried by all its events.
func (s *Session) ID() string {
	return s.id
}

// Events returns the session's event router.
func (s *Session) Events() *events.Router {
	return s.router
}

// Close closes the session's event router.
func (s *Session) Close() {
	s.router.Close()
}

// Load replaces the graph, resets the expansion path to the new root and
// recomputes the layout. Data without nodes or edges renders nothing.
func (s *Session) Load(data *Data) {
	s.mu.Lock()
	s.model = BuildModel(data)
	s.tracker.Reset(s.model.RootID)
	s.recompute()
	model := s.model
	gen := s.generation
	s.mu.Unlock()

	if model.Empty() {
		s.logger.Info("graph has no data")
		ev := events.NewEvent(events.EventGraphEmpty, s.id)
		s.router.Emit(&ev)
	} else {
		warnings := diagnosticWarnings(model.Diagnostics)
		if len(warnings) > 0 {
			s.logger.Warn("graph is not a single rooted tree", "warnings", warnings)
		}
		s.logger.Info("graph loaded",
			"root", model.RootID,
			"nodes", len(model.Nodes),
			"edges", len(model.Edges),
		)
		root, _ := model.Node(model.RootID)
		s.router.Emit(&events.GraphLoadedEvent{
			BaseEvent: events.NewEvent(events.EventGraphLoaded, s.id),
			RootID:    model.RootID,
			Topic:     root.Label,
			NodeCount: len(model.Nodes),
			EdgeCount: len(model.Edges),
			Degraded:  model.Diagnostics.Degraded(),
			Warnings:  warnings,
		})
	}
	s.emitLayout(gen, FitReasonLayout)
}

// Toggle applies the expand/collapse operation to nodeID.
func (s *Session) Toggle(nodeID string) ToggleResult {
	s.mu.Lock()
	result := s.tracker.Toggle(nodeID, s.model.ParentOf)
	if result.Outcome != OutcomeNone {
		s.recompute()
	}
	gen := s.generation
	s.mu.Unlock()

	if result.Outcome == OutcomeNone {
		return result
	}
	if result.Outcome == OutcomeUnreachable {
		s.logger.Warn("toggle target not reachable from root, reset to root", "node", nodeID)
	}
	s.router.Emit(&events.PathChangedEvent{
		BaseEvent: events.NewEvent(events.EventPathChanged, s.id),
		NodeID:    nodeID,
		Outcome:   result.Outcome.String(),
		Path:      result.Path,
	})
	s.emitLayout(gen, FitReasonLayout)
	return result
}

// ExpandTo drills the path down to nodeID. It returns an error when nodeID
// is not reachable from the root; the path is left unchanged in that case.
func (s *Session) ExpandTo(nodeID string) error {
	s.mu.Lock()
	ok := s.tracker.ExpandTo(nodeID, s.model.ParentOf)
	if ok {
		s.recompute()
	}
	path := s.tracker.Path()
	gen := s.generation
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("node %q is not reachable from the root", nodeID)
	}
	s.router.Emit(&events.PathChangedEvent{
		BaseEvent: events.NewEvent(events.EventPathChanged, s.id),
		NodeID:    nodeID,
		Outcome:   OutcomeExpanded.String(),
		Path:      path,
	})
	s.emitLayout(gen, FitReasonLayout)
	return nil
}

// SetDirection changes the rank direction and recomputes the layout.
func (s *Session) SetDirection(d Direction) {
	s.mu.Lock()
	if s.direction == d {
		s.mu.Unlock()
		return
	}
	s.direction = d
	s.recompute()
	gen := s.generation
	s.mu.Unlock()

	s.emitLayout(gen, FitReasonLayout)
}

// SetFullscreen switches the display mode. Fullscreen only affects how the
// host sizes the container, so the layout is kept and a fit is requested.
// fallback records that the host refused native fullscreen and the
// renderer is emulating it.
func (s *Session) SetFullscreen(on, fallback bool) {
	s.mu.Lock()
	s.fullscreen = on
	gen := s.generation
	s.mu.Unlock()

	s.router.Emit(&events.FullscreenChangedEvent{
		BaseEvent:  events.NewEvent(events.EventFullscreenChanged, s.id),
		Fullscreen: on,
		Fallback:   fallback,
	})
	s.requestFit(gen, FitReasonFullscreen)
}

// RequestFit asks renderers to fit the current layout to their viewport.
func (s *Session) RequestFit() {
	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()
	s.requestFit(gen, FitReasonManual)
}

// Generation returns the current layout generation.
func (s *Session) Generation() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Snapshot returns a consistent view of the session.
func (s *Session) Snapshot() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return View{
		Generation:  s.generation,
		RootID:      s.model.RootID,
		Path:        s.tracker.Path(),
		Subgraph:    s.sub,
		Layout:      s.layout,
		Direction:   s.direction,
		Fullscreen:  s.fullscreen,
		Diagnostics: s.model.Diagnostics,
		NodeCount:   len(s.model.Nodes),
	}
}

// HasChildren reports whether nodeID has children in the loaded model.
func (s *Session) HasChildren(nodeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model.HasChildren(nodeID)
}

// Parent returns the parent of nodeID in the loaded model.
func (s *Session) Parent(nodeID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.model.ParentOf[nodeID]
	return p, ok
}

// ReportExport records the outcome of an export of this session's view.
func (s *Session) ReportExport(format, path string, n int, err error) {
	if err != nil {
		s.logger.Error("export failed", "format", format, "error", err)
		s.router.Emit(&events.ExportFailedEvent{
			BaseEvent: events.NewEvent(events.EventExportFailed, s.id),
			Format:    format,
			Error:     err.Error(),
		})
		return
	}
	s.logger.Info("export completed", "format", format, "path", path, "bytes", n)
	s.router.Emit(&events.ExportCompletedEvent{
		BaseEvent: events.NewEvent(events.EventExportCompleted, s.id),
		Format:    format,
		Path:      path,
		Bytes:     n,
	})
}

// recompute resolves visibility and layout for the current path.
// Must be called with mu held.
func (s *Session) recompute() {
	s.generation++
	s.sub = Resolve(s.model, s.tracker.Path())
	s.cached = s.adapter.Cached(s.sub, s.direction)
	s.layout = s.adapter.Apply(s.sub, s.direction)
}

// emitLayout announces a new layout generation and requests a fit.
func (s *Session) emitLayout(gen int, reason string) {
	s.mu.RLock()
	layout := s.layout
	dir := s.direction
	visible := len(s.sub.Nodes)
	cached := s.cached
	s.mu.RUnlock()

	s.router.Emit(&events.LayoutComputedEvent{
		BaseEvent:  events.NewEvent(events.EventLayoutComputed, s.id),
		Generation: gen,
		Direction:  string(dir),
		Visible:    visible,
		Hidden:     layout.Hidden,
		Cached:     cached,
	})
	s.requestFit(gen, reason)
}

func (s *Session) requestFit(gen int, reason string) {
	s.router.Emit(&events.FitRequestedEvent{
		BaseEvent:  events.NewEvent(events.EventFitRequested, s.id),
		Generation: gen,
		Reason:     reason,
	})
}

// diagnosticWarnings renders diagnostics as human-readable warnings.
func diagnosticWarnings(d Diagnostics) []string {
	var out []string
	if d.NoRoot {
		out = append(out, "no parentless node; using first node as root")
	}
	if n := len(d.ExtraRoots); n > 0 {
		out = append(out, fmt.Sprintf("%d extra parentless node(s) ignored as roots", n))
	}
	if n := len(d.MultiParent); n > 0 {
		out = append(out, fmt.Sprintf("%d node(s) with multiple parents", n))
	}
	if n := len(d.Unreachable); n > 0 {
		out = append(out, fmt.Sprintf("%d node(s) unreachable from root", n))
	}
	if n := len(d.DanglingEdges); n > 0 {
		out = append(out, fmt.Sprintf("%d edge(s) reference unknown nodes", n))
	}
	if d.MissingIDs > 0 {
		out = append(out, fmt.Sprintf("%d node(s) without an id ignored", d.MissingIDs))
	}
	return out
}

// Warnings returns the degraded-mode warnings for the loaded graph.
func (s *Session) Warnings() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return diagnosticWarnings(s.model.Diagnostics)
}
