package tui

import (
	"math"

	"github.com/mattn/go-runewidth"
	"github.com/npratt/mindmap/internal/events"
	"github.com/npratt/mindmap/internal/mindmap"
)

// box is a placement converted to viewport cells.
type box struct {
	x, y, w, h int
}

func toBox(p mindmap.Placement, vp Viewport) box {
	return box{
		x: int(math.Round(p.X)) - vp.OffsetX,
		y: int(math.Round(p.Y)) - vp.OffsetY,
		w: int(math.Round(p.Width)),
		h: int(math.Round(p.Height)),
	}
}

func (b box) centerX() int { return b.x + b.w/2 }
func (b box) centerY() int { return b.y + b.h/2 }

// renderMap draws the visible subgraph of view into a grid the size of vp.
// Connectors are drawn first so boxes cover any overlap.
func renderMap(view mindmap.View, vp Viewport, selected string) *charGrid {
	grid := newGrid(vp.Width, vp.Height)
	if view.Layout.Empty() {
		return grid
	}

	onPath := make(map[string]bool, len(view.Path))
	for _, id := range view.Path {
		onPath[id] = true
	}

	for _, e := range view.Layout.Edges {
		from := toBox(view.Layout.Placements[e.Source], vp)
		to := toBox(view.Layout.Placements[e.Target], vp)
		class := classEdge
		if onPath[e.Source] && onPath[e.Target] {
			class = classEdgePath
		}
		if view.Direction == mindmap.DirectionLR {
			drawEdgeLR(grid, from, to, class)
		} else {
			drawEdgeTB(grid, from, to, class)
		}
	}

	for _, id := range view.Layout.Order {
		n, ok := view.Subgraph.Lookup(id)
		if !ok {
			continue
		}
		b := toBox(view.Layout.Placements[id], vp)
		if b.x+b.w < 0 || b.x >= grid.width || b.y+b.h < 0 || b.y >= grid.height {
			continue
		}
		drawNode(grid, b, n, nodeClass(n, id == selected))
	}
	return grid
}

func nodeClass(n mindmap.VisibleNode, selected bool) cellClass {
	switch {
	case selected:
		return classNodeSelected
	case n.Current:
		return classNodeCurrent
	case n.OnPath:
		return classNodePath
	default:
		return classNode
	}
}

// drawEdgeTB routes a connector from the bottom of from to the top of to:
// down, across at the midpoint row, down again, ending in an arrow.
func drawEdgeTB(g *charGrid, from, to box, class cellClass) {
	sx, sy := from.centerX(), from.y+from.h
	tx, ty := to.centerX(), to.y-1
	if ty < sy {
		return
	}
	mid := sy + (ty-sy)/2

	for y := sy; y < mid; y++ {
		g.link(sx, y, linkUp|linkDown, class)
	}
	if sx == tx {
		g.link(sx, mid, linkUp|linkDown, class)
	} else {
		toward, back := linkRight, linkLeft
		if tx < sx {
			toward, back = linkLeft, linkRight
		}
		g.link(sx, mid, linkUp|toward, class)
		for x := min(sx, tx) + 1; x < max(sx, tx); x++ {
			g.link(x, mid, linkLeft|linkRight, class)
		}
		g.link(tx, mid, linkDown|back, class)
	}
	for y := mid + 1; y < ty; y++ {
		g.link(tx, y, linkUp|linkDown, class)
	}
	g.set(tx, ty, arrowDown, class)
}

// drawEdgeLR routes a connector from the right of from to the left of to.
func drawEdgeLR(g *charGrid, from, to box, class cellClass) {
	sx, sy := from.x+from.w, from.centerY()
	tx, ty := to.x-1, to.centerY()
	if tx < sx {
		return
	}
	mid := sx + (tx-sx)/2

	for x := sx; x < mid; x++ {
		g.link(x, sy, linkLeft|linkRight, class)
	}
	if sy == ty {
		g.link(mid, sy, linkLeft|linkRight, class)
	} else {
		toward, back := linkDown, linkUp
		if ty < sy {
			toward, back = linkUp, linkDown
		}
		g.link(mid, sy, linkLeft|toward, class)
		for y := min(sy, ty) + 1; y < max(sy, ty); y++ {
			g.link(mid, y, linkUp|linkDown, class)
		}
		g.link(mid, ty, linkRight|back, class)
	}
	for x := mid + 1; x < tx; x++ {
		g.link(x, ty, linkLeft|linkRight, class)
	}
	g.set(tx, ty, arrowRight, class)
}

// drawNode draws a rounded box with the expand marker and label on the
// middle row.
func drawNode(g *charGrid, b box, n mindmap.VisibleNode, class cellClass) {
	if b.w < 2 || b.h < 2 {
		return
	}
	right, bottom := b.x+b.w-1, b.y+b.h-1

	g.set(b.x, b.y, '╭', class)
	g.set(right, b.y, '╮', class)
	g.set(b.x, bottom, '╰', class)
	g.set(right, bottom, '╯', class)
	for x := b.x + 1; x < right; x++ {
		g.set(x, b.y, '─', class)
		g.set(x, bottom, '─', class)
	}
	for y := b.y + 1; y < bottom; y++ {
		g.set(b.x, y, '│', class)
		g.set(right, y, '│', class)
		for x := b.x + 1; x < right; x++ {
			g.set(x, y, ' ', class)
		}
	}

	row := b.centerY()
	if row == b.y || row == bottom {
		return
	}
	marker := ' '
	if n.HasChildren {
		marker = markerCollapsed
		if n.Expanded {
			marker = markerExpanded
		}
	}
	g.set(b.x+2, row, marker, class)

	// One space each side of the marker and a trailing space before the border.
	avail := b.w - 6
	if avail > 0 {
		g.writeString(b.x+4, row, fitCells(n.Label, avail), class)
	}
}

// fitCells sanitizes a label and shortens it to at most width cells.
func fitCells(label string, width int) string {
	label = events.SafeString(label)
	if runewidth.StringWidth(label) <= width {
		return label
	}
	return runewidth.Truncate(label, width, "…")
}
