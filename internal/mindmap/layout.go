package mindmap

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Size is the fixed box size of a node handed to a layout engine.
type Size struct {
	ID     string
	Width  float64
	Height float64
}

// Point is a top-left position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Engine computes one top-left position per input node. Engines may return
// fewer positions than nodes; the adapter hides whatever is missing.
type Engine interface {
	Layout(nodes []Size, edges []Edge, dir Direction) (map[string]Point, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(nodes []Size, edges []Edge, dir Direction) (map[string]Point, error)

// Layout calls f.
func (f EngineFunc) Layout(nodes []Size, edges []Edge, dir Direction) (map[string]Point, error) {
	return f(nodes, edges, dir)
}

// Placement is a positioned node box.
type Placement struct {
	ID         string  `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	TargetSide Side    `json:"target_side"`
	SourceSide Side    `json:"source_side"`
}

// Center returns the center point of the box.
func (p Placement) Center() Point {
	return Point{X: p.X + p.Width/2, Y: p.Y + p.Height/2}
}

// Anchor returns the midpoint of the given side of the box.
func (p Placement) Anchor(side Side) Point {
	c := p.Center()
	switch side {
	case SideTop:
		return Point{X: c.X, Y: p.Y}
	case SideBottom:
		return Point{X: c.X, Y: p.Y + p.Height}
	case SideLeft:
		return Point{X: p.X, Y: c.Y}
	case SideRight:
		return Point{X: p.X + p.Width, Y: c.Y}
	default:
		return c
	}
}

// Contains reports whether (x, y) falls inside the box.
func (p Placement) Contains(x, y float64) bool {
	return x >= p.X && x < p.X+p.Width && y >= p.Y && y < p.Y+p.Height
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Width returns the box width.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the box height.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Layout is the positioned visible subgraph.
type Layout struct {
	Direction  Direction            `json:"direction"`
	Placements map[string]Placement `json:"placements"`
	Order      []string             `json:"order"`  // Positioned ids in render order
	Hidden     []string             `json:"hidden"` // Visible ids the engine could not place
	Edges      []Edge               `json:"edges"`  // Edges whose endpoints are both positioned
	Bounds     Bounds               `json:"bounds"`
}

// Empty reports whether no node was positioned.
func (l *Layout) Empty() bool {
	return l == nil || len(l.Order) == 0
}

// NodeAt returns the id of the node box containing (x, y), if any.
func (l *Layout) NodeAt(x, y float64) (string, bool) {
	if l == nil {
		return "", false
	}
	for _, id := range l.Order {
		if l.Placements[id].Contains(x, y) {
			return id, true
		}
	}
	return "", false
}

// DefaultCacheSize bounds the number of memoized layouts per adapter.
const DefaultCacheSize = 64

// Adapter maps a visible subgraph onto a layout engine and merges the
// computed positions back. Engine results are memoized by visible-set
// signature; edges are always taken from the subgraph being laid out.
type Adapter struct {
	engine    Engine
	width     float64
	height    float64
	cacheSize int
	logger    *slog.Logger

	mu    sync.Mutex
	cache map[string]map[string]Point
	keys  []string // Insertion order for eviction
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithCacheSize sets the memoization bound. Zero or negative disables caching.
func WithCacheSize(n int) AdapterOption {
	return func(a *Adapter) {
		a.cacheSize = n
	}
}

// WithLogger sets the logger used for absorbed layout failures.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// NewAdapter creates an Adapter that gives every node the same fixed size.
func NewAdapter(engine Engine, nodeWidth, nodeHeight float64, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		engine:    engine,
		width:     nodeWidth,
		height:    nodeHeight,
		cacheSize: DefaultCacheSize,
		logger:    slog.Default(),
		cache:     make(map[string]map[string]Point),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NodeSize returns the fixed node box size.
func (a *Adapter) NodeSize() (float64, float64) {
	return a.width, a.height
}

// Apply lays out the subgraph. It never fails: engine errors and panics are
// absorbed and the affected nodes are reported in Layout.Hidden. Only
// complete engine results are memoized, so a failed visible set is retried
// on the next call.
func (a *Adapter) Apply(sub Subgraph, dir Direction) *Layout {
	if sub.Empty() {
		return &Layout{Direction: dir, Placements: make(map[string]Placement)}
	}
	key := signature(sub, dir)

	a.mu.Lock()
	positions, ok := a.cache[key]
	a.mu.Unlock()
	if ok {
		return a.merge(sub, dir, positions)
	}

	positions, err := a.runEngine(a.sizes(sub), sub.Edges, dir)
	if err != nil {
		a.logger.Warn("layout engine failed, hiding unplaced nodes",
			"error", err,
			"nodes", len(sub.Nodes),
		)
	}
	layout := a.merge(sub, dir, positions)
	if err == nil && len(layout.Hidden) > 0 {
		a.logger.Warn("layout engine left nodes unplaced", "hidden", layout.Hidden)
	}

	if err == nil && len(layout.Hidden) == 0 {
		a.store(key, layout)
	}
	return layout
}

// Cached reports whether a layout for this subgraph is already memoized.
func (a *Adapter) Cached(sub Subgraph, dir Direction) bool {
	key := signature(sub, dir)
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.cache[key]
	return ok
}

// CacheLen returns the number of memoized layouts.
func (a *Adapter) CacheLen() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.cache)
}

// store memoizes the positions of a complete layout.
func (a *Adapter) store(key string, layout *Layout) {
	if a.cacheSize <= 0 {
		return
	}
	positions := make(map[string]Point, len(layout.Placements))
	for id, p := range layout.Placements {
		positions[id] = Point{X: p.X, Y: p.Y}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.cache[key]; ok {
		return
	}
	a.cache[key] = positions
	a.keys = append(a.keys, key)
	for len(a.keys) > a.cacheSize {
		delete(a.cache, a.keys[0])
		a.keys = a.keys[1:]
	}
}

func (a *Adapter) sizes(sub Subgraph) []Size {
	sizes := make([]Size, len(sub.Nodes))
	for i, n := range sub.Nodes {
		sizes[i] = Size{ID: n.ID, Width: a.width, Height: a.height}
	}
	return sizes
}

// merge builds a fresh Layout from engine positions and the caller's
// subgraph. positions is only read.
func (a *Adapter) merge(sub Subgraph, dir Direction, positions map[string]Point) *Layout {
	layout := &Layout{
		Direction:  dir,
		Placements: make(map[string]Placement),
	}

	targetSide, sourceSide := dir.Sides()
	first := true
	for _, n := range sub.Nodes {
		pos, ok := positions[n.ID]
		if !ok {
			layout.Hidden = append(layout.Hidden, n.ID)
			continue
		}
		p := Placement{
			ID:         n.ID,
			X:          pos.X,
			Y:          pos.Y,
			Width:      a.width,
			Height:     a.height,
			TargetSide: targetSide,
			SourceSide: sourceSide,
		}
		layout.Placements[n.ID] = p
		layout.Order = append(layout.Order, n.ID)
		layout.Bounds = extend(layout.Bounds, p, first)
		first = false
	}

	for _, e := range sub.Edges {
		_, okS := layout.Placements[e.Source]
		_, okT := layout.Placements[e.Target]
		if okS && okT {
			layout.Edges = append(layout.Edges, e)
		}
	}
	return layout
}

// runEngine calls the engine, converting a panic into an error.
func (a *Adapter) runEngine(sizes []Size, edges []Edge, dir Direction) (positions map[string]Point, err error) {
	defer func() {
		if r := recover(); r != nil {
			positions = nil
			err = fmt.Errorf("layout engine panic: %v", r)
		}
	}()
	if a.engine == nil {
		return nil, fmt.Errorf("no layout engine configured")
	}
	return a.engine.Layout(sizes, edges, dir)
}

// extend grows b to include p.
func extend(b Bounds, p Placement, first bool) Bounds {
	if first {
		return Bounds{MinX: p.X, MinY: p.Y, MaxX: p.X + p.Width, MaxY: p.Y + p.Height}
	}
	if p.X < b.MinX {
		b.MinX = p.X
	}
	if p.Y < b.MinY {
		b.MinY = p.Y
	}
	if x := p.X + p.Width; x > b.MaxX {
		b.MaxX = x
	}
	if y := p.Y + p.Height; y > b.MaxY {
		b.MaxY = y
	}
	return b
}

// layoutKey is the memoization key of a visible subgraph. Node and edge
// order are kept because the engine may place siblings by input order.
type layoutKey struct {
	Direction Direction   `json:"d"`
	Nodes     []string    `json:"n"`
	Edges     [][2]string `json:"e"`
}

// signature identifies a visible subgraph for memoization.
func signature(sub Subgraph, dir Direction) string {
	k := layoutKey{
		Direction: dir,
		Nodes:     sub.IDs(),
		Edges:     make([][2]string, len(sub.Edges)),
	}
	for i, e := range sub.Edges {
		k.Edges[i] = [2]string{e.Source, e.Target}
	}
	b, _ := json.Marshal(k)
	return string(b)
}
