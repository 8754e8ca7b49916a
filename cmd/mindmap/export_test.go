package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/npratt/mindmap/internal/testutil"
)

func TestExportCommand(t *testing.T) {
	t.Run("svg of the initial view", func(t *testing.T) {
		dir := testutil.Workspace(t)
		testutil.WriteFile(t, dir, "map.json", testutil.SampleMindmapJSON)

		stdout, _, err := runCLI(t, nil, "", "export", "map.json", "-f", "svg", "-o", "out")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}

		path := filepath.Join("out", "Root.svg")
		if !strings.Contains(stdout, "Saved "+path) {
			t.Errorf("expected saved message for %s, got %q", path, stdout)
		}
		if !strings.Contains(stdout, "3 of 4 nodes") {
			t.Errorf("expected 3 of 4 nodes to be drawn, got %q", stdout)
		}
		svg := testutil.ReadFile(t, filepath.Join(dir, path))
		if !strings.HasPrefix(strings.TrimSpace(svg), "<?xml") || !strings.Contains(svg, "<svg") {
			t.Errorf("expected an SVG document, got %.80q", svg)
		}
		for _, label := range []string{"Root", "Alpha", "Beta"} {
			if !strings.Contains(svg, label) {
				t.Errorf("expected %s in the export", label)
			}
		}
		if strings.Contains(svg, "Gamma") {
			t.Error("grandchild should stay hidden until its parent is expanded")
		}
	})

	t.Run("expand reveals grandchildren", func(t *testing.T) {
		dir := testutil.Workspace(t)
		testutil.WriteFile(t, dir, "map.json", testutil.SampleMindmapJSON)

		stdout, _, err := runCLI(t, nil, "", "export", "map.json", "-f", "svg", "--expand", "2")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.Contains(stdout, "4 of 4 nodes") {
			t.Errorf("expected 4 of 4 nodes, got %q", stdout)
		}
		if svg := testutil.ReadFile(t, filepath.Join(dir, "Root.svg")); !strings.Contains(svg, "Gamma") {
			t.Error("expected Gamma after expanding Alpha")
		}
	})

	t.Run("toggle twice collapses again", func(t *testing.T) {
		dir := testutil.Workspace(t)
		testutil.WriteFile(t, dir, "map.json", testutil.SampleMindmapJSON)

		stdout, _, err := runCLI(t, nil, "", "export", "map.json", "-f", "svg", "--toggle", "2", "--toggle", "2")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.Contains(stdout, "3 of 4 nodes") {
			t.Errorf("expected 3 of 4 nodes, got %q", stdout)
		}
	})

	t.Run("data uri", func(t *testing.T) {
		dir := testutil.Workspace(t)
		testutil.WriteFile(t, dir, "map.json", testutil.SampleMindmapJSON)

		stdout, _, err := runCLI(t, nil, "", "export", "map.json", "--data-uri")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.HasPrefix(stdout, "data:image/png;base64,") {
			t.Errorf("expected a PNG data URI, got %.40q", stdout)
		}
		if testutil.FileExists(t, filepath.Join(dir, "Root.png")) {
			t.Error("data URI export should not write a file")
		}
	})

	t.Run("stdin envelope names the file after the topic", func(t *testing.T) {
		dir := testutil.Workspace(t)

		_, _, err := runCLI(t, nil, testutil.SampleEnvelopeJSON, "export", "-", "--format", "svg")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !testutil.FileExists(t, filepath.Join(dir, "Sample.svg")) {
			t.Error("expected Sample.svg")
		}
	})

	t.Run("unreachable toggle warns", func(t *testing.T) {
		dir := testutil.Workspace(t)
		testutil.WriteFile(t, dir, "map.json", testutil.StrayNodeMindmapJSON)

		_, stderr, err := runCLI(t, nil, "", "export", "map.json", "-f", "svg", "--toggle", "5")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		if !strings.Contains(stderr, "unreachable from root") {
			t.Errorf("expected a degraded-graph warning, got %q", stderr)
		}
		if !strings.Contains(stderr, `node "5" is not reachable`) {
			t.Errorf("expected an unreachable toggle warning, got %q", stderr)
		}
	})

	t.Run("empty map has nothing to export", func(t *testing.T) {
		dir := testutil.Workspace(t)
		testutil.WriteFile(t, dir, "map.json", testutil.EmptyMindmapJSON)

		_, _, err := runCLI(t, nil, "", "export", "map.json")
		if err == nil || !strings.Contains(err.Error(), "nothing to export") {
			t.Errorf("expected nothing to export, got %v", err)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		dir := testutil.Workspace(t)
		testutil.WriteFile(t, dir, "map.json", testutil.SampleMindmapJSON)

		if _, _, err := runCLI(t, nil, "", "export", "map.json", "-f", "gif"); err == nil {
			t.Error("expected an error for an unknown format")
		}
	})

	t.Run("generator command from project config", func(t *testing.T) {
		dir := testutil.Workspace(t)
		testutil.WriteFile(t, dir, ".mindmap/config.yaml", "source:\n  command: [gen, --topic, Go]\n")
		runner := testutil.NewMockRunner()
		runner.SetResponse("gen", []string{"--topic", "Go"}, []byte(testutil.SampleMindmapJSON))

		if _, _, err := runCLI(t, runner, "", "export", "-f", "svg"); err != nil {
			t.Fatalf("export failed: %v", err)
		}
		testutil.AssertCallCount(t, runner, "gen", 1)
		if !testutil.FileExists(t, filepath.Join(dir, "Root.svg")) {
			t.Error("expected Root.svg")
		}
	})
}
