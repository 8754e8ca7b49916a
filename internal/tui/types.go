// Package tui provides the interactive terminal viewer for learning
// mind-maps.
package tui

// Viewport is the window of layout cells currently on screen.
type Viewport struct {
	OffsetX int
	OffsetY int
	Width   int
	Height  int
}

// cellClass selects the style of a grid cell.
type cellClass uint8

const (
	classBlank cellClass = iota
	classEdge
	classEdgePath // Connector between two nodes on the expansion path
	classNode     // Preview node: a child of the path, not yet expanded
	classNodePath
	classNodeCurrent
	classNodeSelected
)

// String returns a string representation of the cellClass.
func (c cellClass) String() string {
	switch c {
	case classBlank:
		return "blank"
	case classEdge:
		return "edge"
	case classEdgePath:
		return "edge-path"
	case classNode:
		return "node"
	case classNodePath:
		return "node-path"
	case classNodeCurrent:
		return "node-current"
	case classNodeSelected:
		return "node-selected"
	default:
		return "unknown"
	}
}

// Connector bits record which neighbours an edge cell joins.
const (
	linkUp uint8 = 1 << iota
	linkDown
	linkLeft
	linkRight
)

// Expand/collapse affordances.
const (
	markerCollapsed = '▸'
	markerExpanded  = '▾'
	arrowDown       = '▼'
	arrowRight      = '▶'
)
