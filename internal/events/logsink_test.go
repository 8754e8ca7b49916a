package events

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewLogSink(t *testing.T) {
	sink := NewLogSink("/tmp/test.log")
	if sink == nil {
		t.Fatal("NewLogSink returned nil")
	}
	if sink.Path() != "/tmp/test.log" {
		t.Errorf("path = %q, want %q", sink.Path(), "/tmp/test.log")
	}
}

func TestLogSinkCreatesDirectory(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "subdir", "nested", "events.log")

	sink := NewLogSink(path)
	events := make(chan Event, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sink.Start(ctx, events); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if _, err := os.Stat(filepath.Dir(path)); os.IsNotExist(err) {
		t.Error("expected directory to be created")
	}

	cancel()
	_ = sink.Stop()
}

func TestLogSinkWritesJSONLines(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "events.log")

	sink := NewLogSink(path)
	events := make(chan Event, 10)

	if err := sink.Start(context.Background(), events); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	events <- &GraphLoadedEvent{
		BaseEvent: NewEvent(EventGraphLoaded, "s1"),
		RootID:    "1",
		NodeCount: 4,
		EdgeCount: 3,
	}
	events <- pathEvent("2")
	close(events)

	if err := sink.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), data)
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 1 is not JSON: %v", err)
	}
	if first["type"] != "graph.loaded" || first["root_id"] != "1" {
		t.Errorf("unexpected first line %v", first)
	}

	var second map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("line 2 is not JSON: %v", err)
	}
	if second["type"] != "path.changed" {
		t.Errorf("unexpected second line %v", second)
	}
}

func TestLogSinkRotatesExistingFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "events.log")

	if err := os.WriteFile(path, []byte("{\"old\":true}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	sink := NewLogSink(path)
	events := make(chan Event)
	if err := sink.Start(context.Background(), events); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	close(events)
	_ = sink.Stop()

	matches, err := filepath.Glob(path + ".*.bak")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 backup, got %v", matches)
	}

	data, _ := os.ReadFile(path)
	if len(data) != 0 {
		t.Errorf("expected fresh log, got %q", data)
	}
}

func TestLogSinkHandlesClosedChannel(t *testing.T) {
	sink := NewLogSink(filepath.Join(t.TempDir(), "events.log"))
	events := make(chan Event)

	if err := sink.Start(context.Background(), events); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	close(events)

	done := make(chan struct{})
	go func() {
		_ = sink.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after channel close")
	}
}

func TestLogSinkStartFailure(t *testing.T) {
	tmp := t.TempDir()
	blocker := filepath.Join(tmp, "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	sink := NewLogSink(filepath.Join(blocker, "events.log"))
	if err := sink.Start(context.Background(), make(chan Event)); err == nil {
		t.Fatal("expected error when parent is a file")
	}
	if err := sink.Stop(); err != nil {
		t.Errorf("Stop after failed Start: %v", err)
	}
}
