package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/term"

	"github.com/npratt/mindmap/internal/events"
	"github.com/npratt/mindmap/internal/testutil"
)

// skipOnTerminal skips tests of the plain-text fallback when the test
// binary itself is attached to a terminal.
func skipOnTerminal(t *testing.T) {
	t.Helper()
	if term.IsTerminal(int(os.Stdout.Fd())) {
		t.Skip("stdout is a terminal")
	}
}

func TestViewCommand_PrintsTextWithoutTerminal(t *testing.T) {
	skipOnTerminal(t)

	t.Run("initial view", func(t *testing.T) {
		dir := testutil.Workspace(t)
		testutil.WriteFile(t, dir, "map.json", testutil.SampleMindmapJSON)

		stdout, _, err := runCLI(t, nil, "", "view", "map.json")
		if err != nil {
			t.Fatalf("view failed: %v", err)
		}
		for _, label := range []string{"Root", "Alpha", "Beta"} {
			if !strings.Contains(stdout, label) {
				t.Errorf("expected %s in output:\n%s", label, stdout)
			}
		}
		if strings.Contains(stdout, "Gamma") {
			t.Errorf("expected Gamma to be hidden:\n%s", stdout)
		}
		if !testutil.FileExists(t, filepath.Join(dir, ".mindmap", "mindmap-debug.log")) {
			t.Error("expected the debug log to be written")
		}
	})

	t.Run("expand and remember direction", func(t *testing.T) {
		dir := testutil.Workspace(t)
		testutil.WriteFile(t, dir, "map.json", testutil.SampleMindmapJSON)

		stdout, _, err := runCLI(t, nil, "", "view", "map.json", "--expand", "2", "--direction", "LR")
		if err != nil {
			t.Fatalf("view failed: %v", err)
		}
		if !strings.Contains(stdout, "Gamma") {
			t.Errorf("expected Gamma after expanding Alpha:\n%s", stdout)
		}

		sink := events.NewStateSink(filepath.Join(dir, ".mindmap", "state.json"))
		if err := sink.Load(); err != nil {
			t.Fatalf("load state: %v", err)
		}
		if got := sink.State().Direction; got != "LR" {
			t.Errorf("expected saved direction LR, got %q", got)
		}
	})

	t.Run("degraded graph warnings", func(t *testing.T) {
		dir := testutil.Workspace(t)
		testutil.WriteFile(t, dir, "map.json", testutil.StrayNodeMindmapJSON)

		stdout, _, err := runCLI(t, nil, "", "view", "map.json")
		if err != nil {
			t.Fatalf("view failed: %v", err)
		}
		if !strings.Contains(stdout, "warning: 1 node(s) unreachable from root") {
			t.Errorf("expected unreachable warning:\n%s", stdout)
		}
		if strings.Contains(stdout, "Stray") {
			t.Errorf("unreachable node should not be drawn:\n%s", stdout)
		}
	})

	t.Run("empty map", func(t *testing.T) {
		dir := testutil.Workspace(t)
		testutil.WriteFile(t, dir, "map.json", testutil.EmptyMindmapJSON)

		stdout, _, err := runCLI(t, nil, "", "view", "map.json")
		if err != nil {
			t.Fatalf("view failed: %v", err)
		}
		if !strings.Contains(stdout, "(no mind-map data)") {
			t.Errorf("expected empty notice:\n%s", stdout)
		}
	})

	t.Run("unknown expand target warns", func(t *testing.T) {
		dir := testutil.Workspace(t)
		testutil.WriteFile(t, dir, "map.json", testutil.SampleMindmapJSON)

		_, stderr, err := runCLI(t, nil, "", "view", "map.json", "--expand", "99")
		if err != nil {
			t.Fatalf("view failed: %v", err)
		}
		if !strings.Contains(stderr, "not reachable") {
			t.Errorf("expected a warning, got %q", stderr)
		}
	})

	t.Run("watch needs a file", func(t *testing.T) {
		testutil.Workspace(t)

		_, stderr, err := runCLI(t, nil, testutil.SampleMindmapJSON, "view", "-", "--watch")
		if err != nil {
			t.Fatalf("view failed: %v", err)
		}
		if !strings.Contains(stderr, "--watch needs a mind-map file") {
			t.Errorf("expected a warning, got %q", stderr)
		}
	})

	t.Run("watch a file", func(t *testing.T) {
		dir := testutil.Workspace(t)
		testutil.WriteFile(t, dir, "map.json", testutil.SampleMindmapJSON)

		stdout, _, err := runCLI(t, nil, "", "view", "map.json", "--watch")
		if err != nil {
			t.Fatalf("view failed: %v", err)
		}
		if !strings.Contains(stdout, "Alpha") {
			t.Errorf("expected the map to be printed:\n%s", stdout)
		}
	})
}
