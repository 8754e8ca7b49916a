package export

import (
	"image/color"
	"math"

	"github.com/npratt/mindmap/internal/mindmap"
)

// Theme holds the export palette.
type Theme struct {
	Background  color.RGBA
	PathFill    color.RGBA
	PathStroke  color.RGBA
	PreviewFill color.RGBA
	PreviewLine color.RGBA
	Current     color.RGBA
	Text        color.RGBA
	MutedText   color.RGBA
	Edge        color.RGBA
}

// DefaultTheme is a light theme close to the web viewer.
func DefaultTheme() Theme {
	return Theme{
		Background:  color.RGBA{0xff, 0xff, 0xff, 0xff},
		PathFill:    color.RGBA{0xe0, 0xe7, 0xff, 0xff},
		PathStroke:  color.RGBA{0x63, 0x66, 0xf1, 0xff},
		PreviewFill: color.RGBA{0xf8, 0xfa, 0xfc, 0xff},
		PreviewLine: color.RGBA{0xcb, 0xd5, 0xe1, 0xff},
		Current:     color.RGBA{0x43, 0x38, 0xca, 0xff},
		Text:        color.RGBA{0x1e, 0x29, 0x3b, 0xff},
		MutedText:   color.RGBA{0x64, 0x74, 0x8b, 0xff},
		Edge:        color.RGBA{0x94, 0xa3, 0xb8, 0xff},
	}
}

const (
	cornerRadius = 8.0
	arrowLength  = 8.0
	arrowWidth   = 4.0
	markerSize   = 5.0
)

// box is a node ready to draw, in canvas units.
type box struct {
	mindmap.VisibleNode
	X, Y, W, H float64
}

// connector is a cubic bezier from a source anchor to a target anchor.
type connector struct {
	X1, Y1, C1X, C1Y, C2X, C2Y, X2, Y2 float64
}

// scene is the renderer-independent drawing list.
type scene struct {
	Width, Height float64
	Boxes         []box
	Connectors    []connector
}

// newScene translates the layout so its bounding box starts at the padding.
func newScene(sub mindmap.Subgraph, layout *mindmap.Layout, opts Options) scene {
	dx := opts.Padding - layout.Bounds.MinX
	dy := opts.Padding - layout.Bounds.MinY

	s := scene{
		Width:  layout.Bounds.Width() + 2*opts.Padding,
		Height: layout.Bounds.Height() + 2*opts.Padding,
	}

	for _, id := range layout.Order {
		p := layout.Placements[id]
		vn, ok := sub.Lookup(id)
		if !ok {
			vn = mindmap.VisibleNode{Node: mindmap.Node{ID: id, Label: id}}
		}
		s.Boxes = append(s.Boxes, box{VisibleNode: vn, X: p.X + dx, Y: p.Y + dy, W: p.Width, H: p.Height})
	}

	for _, e := range layout.Edges {
		src := layout.Placements[e.Source]
		tgt := layout.Placements[e.Target]
		a := src.Anchor(src.SourceSide)
		b := tgt.Anchor(tgt.TargetSide)
		c := connector{X1: a.X + dx, Y1: a.Y + dy, X2: b.X + dx, Y2: b.Y + dy}
		if layout.Direction == mindmap.DirectionLR {
			mid := (c.X2 - c.X1) / 2
			c.C1X, c.C1Y = c.X1+mid, c.Y1
			c.C2X, c.C2Y = c.X2-mid, c.Y2
		} else {
			mid := (c.Y2 - c.Y1) / 2
			c.C1X, c.C1Y = c.X1, c.Y1+mid
			c.C2X, c.C2Y = c.X2, c.Y2-mid
		}
		s.Connectors = append(s.Connectors, c)
	}
	return s
}

// arrowHead returns the triangle at the end of c, pointing along the last
// bezier segment.
func (c connector) arrowHead() [3][2]float64 {
	dx, dy := c.X2-c.C2X, c.Y2-c.C2Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		dx, dy = c.X2-c.X1, c.Y2-c.Y1
		d = math.Hypot(dx, dy)
	}
	if d == 0 {
		dx, dy, d = 0, 1, 1
	}
	dx /= d
	dy /= d
	px, py := -dy, dx

	bx, by := c.X2-dx*arrowLength, c.Y2-dy*arrowLength
	return [3][2]float64{
		{c.X2, c.Y2},
		{bx + px*arrowWidth, by + py*arrowWidth},
		{bx - px*arrowWidth, by - py*arrowWidth},
	}
}

// marker returns the expand/collapse triangle for a node with children:
// pointing down when expanded, right when collapsed.
func (b box) marker() ([3][2]float64, bool) {
	if !b.HasChildren {
		return [3][2]float64{}, false
	}
	cx := b.X + b.W - 2*markerSize - 2
	cy := b.Y + b.H/2
	if b.Expanded {
		return [3][2]float64{
			{cx - markerSize, cy - markerSize/2},
			{cx + markerSize, cy - markerSize/2},
			{cx, cy + markerSize/2 + 1},
		}, true
	}
	return [3][2]float64{
		{cx - markerSize/2, cy - markerSize},
		{cx - markerSize/2, cy + markerSize},
		{cx + markerSize/2 + 1, cy},
	}, true
}

// labelWidth is the horizontal room for the label inside the box.
func (b box) labelWidth() float64 {
	w := b.W - 16
	if b.HasChildren {
		w -= 4 * markerSize
	}
	return math.Max(w, 0)
}

func (b box) colors(t Theme) (fill, stroke, text color.RGBA) {
	switch {
	case b.Current:
		return t.PathFill, t.Current, t.Text
	case b.OnPath:
		return t.PathFill, t.PathStroke, t.Text
	default:
		return t.PreviewFill, t.PreviewLine, t.MutedText
	}
}

// fitLabel shortens s with an ellipsis until measure(s) fits max.
func fitLabel(s string, max float64, measure func(string) float64) string {
	if measure(s) <= max {
		return s
	}
	runes := []rune(s)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := string(runes[:n]) + "…"
		if measure(candidate) <= max {
			return candidate
		}
	}
	return "…"
}
