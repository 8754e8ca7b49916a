package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/npratt/mindmap/internal/testutil"
)

func TestPrintEventLine(t *testing.T) {
	const ts = `"timestamp":"2026-01-02T15:04:05Z","session":"s1"`
	tests := []struct {
		name string
		line string
		want string
	}{
		{"graph loaded", `{"type":"graph.loaded",` + ts + `,"topic":"Go","node_count":4}`, `[15:04:05] graph.loaded: topic="Go" nodes=4`},
		{"path changed", `{"type":"path.changed",` + ts + `,"node_id":"2","outcome":"expanded"}`, `[15:04:05] path.changed: expanded node=2`},
		{"layout computed", `{"type":"layout.computed",` + ts + `,"generation":3,"direction":"LR","visible":5}`, `[15:04:05] layout.computed: generation=3 direction=LR visible=5`},
		{"fit requested", `{"type":"fit.requested",` + ts + `,"generation":3,"reason":"manual"}`, `[15:04:05] fit.requested: generation=3 reason=manual`},
		{"fullscreen", `{"type":"fullscreen.changed",` + ts + `,"fullscreen":true}`, `[15:04:05] fullscreen.changed: fullscreen=true`},
		{"export completed", `{"type":"export.completed",` + ts + `,"format":"png","path":"Go.png"}`, `[15:04:05] export.completed: png Go.png`},
		{"export failed", `{"type":"export.failed",` + ts + `,"format":"svg","error":"nothing to export"}`, `[15:04:05] export.failed: svg: nothing to export`},
		{"no detail", `{"type":"graph.empty",` + ts + `}`, `[15:04:05] graph.empty`},
		{"not json", `garbage line`, `garbage line`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printEventLine(&buf, tt.line)
			if got := strings.TrimSuffix(buf.String(), "\n"); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func writeEventLog(t *testing.T, dir string, n int) string {
	t.Helper()
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `{"type":"fit.requested","timestamp":"2026-01-02T15:04:05Z","generation":%d,"reason":"layout"}`+"\n", i)
	}
	return testutil.WriteFile(t, dir, "events.jsonl", b.String())
}

func TestTailLast(t *testing.T) {
	t.Run("last n lines", func(t *testing.T) {
		path := writeEventLog(t, t.TempDir(), 5)

		var buf bytes.Buffer
		if err := tailLast(&buf, path, 2); err != nil {
			t.Fatalf("tailLast failed: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 2 {
			t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
		}
		if !strings.Contains(lines[0], "generation=4") || !strings.Contains(lines[1], "generation=5") {
			t.Errorf("expected generations 4 and 5, got %q", lines)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		var buf bytes.Buffer
		if err := tailLast(&buf, filepath.Join(t.TempDir(), "missing.jsonl"), 10); err != nil {
			t.Fatalf("tailLast failed: %v", err)
		}
		if !strings.Contains(buf.String(), "log file does not exist") {
			t.Errorf("expected missing file notice, got %q", buf.String())
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := testutil.WriteFile(t, t.TempDir(), "events.jsonl", "")
		var buf bytes.Buffer
		if err := tailLast(&buf, path, 10); err != nil {
			t.Fatalf("tailLast failed: %v", err)
		}
		if strings.TrimSpace(buf.String()) != "No events yet" {
			t.Errorf("expected empty notice, got %q", buf.String())
		}
	})
}

func TestTailFollow(t *testing.T) {
	path := writeEventLog(t, t.TempDir(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var buf safeBuffer
	done := make(chan error, 1)
	go func() { done <- tailFollow(ctx, &buf, path) }()

	// Only lines appended after start are printed.
	time.Sleep(200 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString(`{"type":"fullscreen.changed","timestamp":"2026-01-02T15:04:06Z","fullscreen":true}` + "\n")
	_ = f.Close()

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(buf.String(), "fullscreen=true") && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("tailFollow failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "fullscreen=true") {
		t.Errorf("expected appended event, got %q", out)
	}
	if strings.Contains(out, "generation=1") {
		t.Errorf("existing lines should be skipped, got %q", out)
	}
}

func TestEventsCommand(t *testing.T) {
	t.Run("disabled without a path", func(t *testing.T) {
		testutil.Workspace(t)

		_, _, err := runCLI(t, nil, "", "events")
		if err == nil || !strings.Contains(err.Error(), "event log is disabled") {
			t.Errorf("expected disabled error, got %v", err)
		}
	})

	t.Run("events file flag", func(t *testing.T) {
		dir := testutil.Workspace(t)
		writeEventLog(t, dir, 3)

		stdout, _, err := runCLI(t, nil, "", "events", "--events-file", "events.jsonl", "--count", "1")
		if err != nil {
			t.Fatalf("events failed: %v", err)
		}
		if strings.TrimSpace(stdout) != "[15:04:05] fit.requested: generation=3 reason=layout" {
			t.Errorf("unexpected output %q", stdout)
		}
	})
}
