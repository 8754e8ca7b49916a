package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/npratt/mindmap/internal/mindmap"
)

func TestRenderText_TopDown(t *testing.T) {
	s := loadedSession(t)

	var buf bytes.Buffer
	if err := RenderText(&buf, s.Snapshot(), "Demo", nil); err != nil {
		t.Fatalf("RenderText: %v", err)
	}

	expected := strings.Join([]string{
		"Demo",
		"       ╭──────────╮",
		"       │ ▾ Root   │",
		"       ╰──────────╯",
		"      ╭──────┴──────╮",
		"      ▼             ▼",
		"╭──────────╮  ╭──────────╮",
		"│ ▸ Alpha  │  │   Beta   │",
		"╰──────────╯  ╰──────────╯",
		"",
	}, "\n")
	if buf.String() != expected {
		t.Errorf("unexpected drawing:\n%s\nexpected:\n%s", buf.String(), expected)
	}
}

func TestRenderText_LeftRight(t *testing.T) {
	s := loadedSession(t)
	s.SetDirection(mindmap.DirectionLR)

	var buf bytes.Buffer
	if err := RenderText(&buf, s.Snapshot(), "", nil); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	out := buf.String()

	if !strings.ContainsRune(out, arrowRight) {
		t.Errorf("expected right arrows in LR drawing, got:\n%s", out)
	}
	if strings.ContainsRune(out, arrowDown) {
		t.Errorf("expected no down arrows in LR drawing, got:\n%s", out)
	}
	if !strings.ContainsRune(out, '┤') {
		t.Errorf("expected a split junction in LR drawing, got:\n%s", out)
	}
}

func TestRenderText_Expanded(t *testing.T) {
	s := loadedSession(t)
	s.Toggle("2")

	var buf bytes.Buffer
	if err := RenderText(&buf, s.Snapshot(), "", nil); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Gamma") {
		t.Errorf("expected Gamma to be visible after expanding Alpha, got:\n%s", out)
	}
	if strings.Count(out, string(markerExpanded)) != 2 {
		t.Errorf("expected Root and Alpha marked expanded, got:\n%s", out)
	}
}

func TestRenderText_EmptyAndWarnings(t *testing.T) {
	s := newTestSession(t)

	var buf bytes.Buffer
	if err := RenderText(&buf, s.Snapshot(), "", []string{"2 node(s) with multiple parents"}); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	expected := "warning: 2 node(s) with multiple parents\n(no mind-map data)\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestRenderMap_ClipsToViewport(t *testing.T) {
	s := loadedSession(t)

	grid := renderMap(s.Snapshot(), Viewport{OffsetX: 7, OffsetY: 0, Width: 12, Height: 3}, "")
	expected := strings.Join([]string{
		"╭──────────╮",
		"│ ▾ Root   │",
		"╰──────────╯",
	}, "\n")
	if grid.Plain() != expected {
		t.Errorf("expected only the root box:\n%s\ngot:\n%s", expected, grid.Plain())
	}
}

func TestRenderMap_SelectedClass(t *testing.T) {
	s := loadedSession(t)

	grid := renderMap(s.Snapshot(), Viewport{Width: 30, Height: 10}, "3")
	// Beta's top-left corner sits at (14, 5).
	if c := grid.cells[5][14].class; c != classNodeSelected {
		t.Errorf("expected selected class, got %s", c)
	}
	if c := grid.cells[0][7].class; c != classNodeCurrent {
		t.Errorf("expected root to be current, got %s", c)
	}
	if c := grid.cells[3][13].class; c != classEdge {
		t.Errorf("expected preview edge class, got %s", c)
	}
}

func TestLinkRune(t *testing.T) {
	tests := []struct {
		bits     uint8
		expected rune
	}{
		{linkUp | linkDown, '│'},
		{linkLeft | linkRight, '─'},
		{linkUp | linkLeft | linkRight, '┴'},
		{linkDown | linkLeft | linkRight, '┬'},
		{linkUp | linkDown | linkRight, '├'},
		{linkUp | linkDown | linkLeft, '┤'},
		{linkUp | linkDown | linkLeft | linkRight, '┼'},
		{linkDown | linkRight, '╭'},
		{linkDown | linkLeft, '╮'},
		{linkUp | linkRight, '╰'},
		{linkUp | linkLeft, '╯'},
		{0, ' '},
	}

	for _, tt := range tests {
		if got := linkRune(tt.bits); got != tt.expected {
			t.Errorf("linkRune(%04b): expected %q, got %q", tt.bits, tt.expected, got)
		}
	}
}

func TestGrid_LinkSkipsNodes(t *testing.T) {
	g := newGrid(3, 1)
	g.set(1, 0, '╭', classNode)
	g.link(0, 0, linkLeft|linkRight, classEdge)
	g.link(1, 0, linkLeft|linkRight, classEdge)
	g.link(2, 0, linkLeft|linkRight, classEdgePath)

	if got := g.Plain(); got != "─╭─" {
		t.Errorf("expected %q, got %q", "─╭─", got)
	}
	if g.cells[0][2].class != classEdgePath {
		t.Errorf("expected path class to win, got %s", g.cells[0][2].class)
	}
}

func TestGrid_WideRunes(t *testing.T) {
	g := newGrid(6, 1)
	n := g.writeString(0, 0, "日本x", classNode)

	if n != 5 {
		t.Errorf("expected 5 columns, got %d", n)
	}
	if got := g.Plain(); got != "日本x " {
		t.Errorf("expected %q, got %q", "日本x ", got)
	}
}

func TestFitCells(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		width    int
		expected string
	}{
		{"fits", "Go", 5, "Go"},
		{"exact", "Hello", 5, "Hello"},
		{"truncated", "Hello world", 5, "Hell…"},
		{"wide", "日本語", 4, "日…"},
		{"control characters", "a\x1b[31mb", 10, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fitCells(tt.label, tt.width); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
