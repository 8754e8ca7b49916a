package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// cell is one terminal cell. A zero rune marks the trailing half of a wide
// rune and is skipped on output.
type cell struct {
	r     rune
	class cellClass
	links uint8
}

// charGrid is a 2D character grid for rendering.
type charGrid struct {
	width  int
	height int
	cells  [][]cell
}

// newGrid creates a new character grid filled with spaces.
func newGrid(width, height int) *charGrid {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	cells := make([][]cell, height)
	for y := range cells {
		cells[y] = make([]cell, width)
		for x := range cells[y] {
			cells[y][x] = cell{r: ' '}
		}
	}
	return &charGrid{width: width, height: height, cells: cells}
}

func (g *charGrid) inside(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// set writes a single rune at the given position.
func (g *charGrid) set(x, y int, r rune, class cellClass) {
	if g.inside(x, y) {
		g.cells[y][x] = cell{r: r, class: class}
	}
}

// writeString writes s starting at (x, y) and returns the columns used.
func (g *charGrid) writeString(x, y int, s string, class cellClass) int {
	col := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		g.set(col, y, r, class)
		if w == 2 {
			g.set(col+1, y, 0, class)
		}
		col += w
	}
	return col - x
}

// link adds connector bits to an edge cell. Path edges win the class when
// connectors overlap.
func (g *charGrid) link(x, y int, bits uint8, class cellClass) {
	if !g.inside(x, y) {
		return
	}
	c := &g.cells[y][x]
	if c.class >= classNode {
		return
	}
	c.links |= bits
	if class > c.class {
		c.class = class
	}
	c.r = linkRune(c.links)
}

// linkRune picks the box-drawing rune joining the given neighbours.
func linkRune(bits uint8) rune {
	up := bits&linkUp != 0
	down := bits&linkDown != 0
	left := bits&linkLeft != 0
	right := bits&linkRight != 0

	switch {
	case up && down && left && right:
		return '┼'
	case up && down && right:
		return '├'
	case up && down && left:
		return '┤'
	case left && right && down:
		return '┬'
	case left && right && up:
		return '┴'
	case down && right:
		return '╭'
	case down && left:
		return '╮'
	case up && right:
		return '╰'
	case up && left:
		return '╯'
	case up || down:
		return '│'
	case left || right:
		return '─'
	default:
		return ' '
	}
}

// Plain returns the grid without styling.
func (g *charGrid) Plain() string {
	lines := make([]string, g.height)
	for y, row := range g.cells {
		var b strings.Builder
		for _, c := range row {
			if c.r != 0 {
				b.WriteRune(c.r)
			}
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

// Render returns the grid with each run of same-class cells styled.
func (g *charGrid) Render(style func(cellClass) lipgloss.Style) string {
	lines := make([]string, g.height)
	for y, row := range g.cells {
		var b, run strings.Builder
		class := classBlank
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if class == classBlank {
				b.WriteString(run.String())
			} else {
				b.WriteString(style(class).Render(run.String()))
			}
			run.Reset()
		}
		for _, c := range row {
			if c.r == 0 {
				continue
			}
			if c.class != class {
				flush()
				class = c.class
			}
			run.WriteRune(c.r)
		}
		flush()
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}
