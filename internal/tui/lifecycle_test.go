package tui

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/npratt/mindmap/internal/mindmap"
)

// TestTUILifecycle runs the viewer headlessly: start, expand a node,
// switch direction and quit.
func TestTUILifecycle(t *testing.T) {
	s := loadedSession(t)

	var quitCalled bool
	m := newModel(s, modelConfig{
		topic:    "Demo",
		fitDelay: 10 * time.Millisecond,
		onQuit:   func() { quitCalled = true },
	})

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Root"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyDown})
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
	if fm == nil {
		t.Fatal("FinalModel returned nil")
	}
	if !quitCalled {
		t.Error("quit callback was not invoked")
	}

	view := s.Snapshot()
	if view.Direction != mindmap.DirectionLR {
		t.Errorf("expected LR, got %s", view.Direction)
	}
	if len(view.Path) != 2 || view.Path[1] != "2" {
		t.Errorf("expected Alpha expanded, got path %v", view.Path)
	}
}
