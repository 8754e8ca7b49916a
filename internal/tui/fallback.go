package tui

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/npratt/mindmap/internal/mindmap"
	"golang.org/x/term"
)

// isTerminal returns true if both stdout and stdin are TTYs.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

// terminalSize returns the current terminal width and height.
// Returns 0, 0 if the terminal size cannot be determined.
func terminalSize() (width, height int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0, 0
	}
	return width, height
}

// terminalTooSmall returns true if the terminal is below the minimum size.
func terminalTooSmall() bool {
	width, height := terminalSize()
	return width < minWidth || height < minHeight
}

// altScreenCapable reports whether the terminal can switch to the
// alternate screen buffer.
func altScreenCapable() bool {
	switch os.Getenv("TERM") {
	case "", "dumb":
		return false
	}
	return true
}

// runSimple loads the map if needed and prints it once.
func (t *TUI) runSimple() error {
	topic := t.topic
	if t.loader != nil && !t.preloaded {
		ctx, cancel := context.WithTimeout(context.Background(), defaultLoadTimeout)
		defer cancel()

		res, err := t.loader.Load(ctx)
		if err != nil {
			return err
		}
		t.session.Load(res.Data)
		if res.Topic != "" {
			topic = res.Topic
		}
	}
	return RenderText(t.out, t.session.Snapshot(), topic, t.session.Warnings())
}

// RenderText writes view as a plain-text drawing without colour.
func RenderText(w io.Writer, view mindmap.View, topic string, warnings []string) error {
	if topic != "" {
		if _, err := fmt.Fprintln(w, topic); err != nil {
			return err
		}
	}
	for _, warning := range warnings {
		if _, err := fmt.Fprintf(w, "warning: %s\n", warning); err != nil {
			return err
		}
	}
	if view.Layout.Empty() {
		_, err := fmt.Fprintln(w, "(no mind-map data)")
		return err
	}

	b := view.Layout.Bounds
	vp := Viewport{
		OffsetX: int(math.Floor(b.MinX)),
		OffsetY: int(math.Floor(b.MinY)),
	}
	vp.Width = int(math.Ceil(b.MaxX)) - vp.OffsetX + 1
	vp.Height = int(math.Ceil(b.MaxY)) - vp.OffsetY + 1

	lines := strings.Split(renderMap(view, vp, "").Plain(), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}
