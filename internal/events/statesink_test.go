package events

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func runStateSink(t *testing.T, path string, evs ...Event) *StateSink {
	t.Helper()

	sink := NewStateSink(path)
	sink.SetMinDelay(0)
	ch := make(chan Event, len(evs))
	if err := sink.Start(context.Background(), ch); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for _, e := range evs {
		ch <- e
	}
	close(ch)
	if err := sink.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	return sink
}

func TestStateSinkCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	runStateSink(t, path)

	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Errorf("expected directory to exist: %v", err)
	}
}

func TestStateSinkTracksPreferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	sink := runStateSink(t, path,
		&GraphLoadedEvent{BaseEvent: NewEvent(EventGraphLoaded, "s1"), RootID: "1", Topic: "Go"},
		&PathChangedEvent{BaseEvent: NewEvent(EventPathChanged, "s1"), NodeID: "2", Path: []string{"1", "2"}},
		&LayoutComputedEvent{BaseEvent: NewEvent(EventLayoutComputed, "s1"), Direction: "LR"},
		&FullscreenChangedEvent{BaseEvent: NewEvent(EventFullscreenChanged, "s1"), Fullscreen: true},
		&ExportCompletedEvent{BaseEvent: NewEvent(EventExportCompleted, "s1"), Format: "png", Path: "go.png"},
	)

	state := sink.State()
	if state.LastTopic != "Go" {
		t.Errorf("expected topic Go, got %q", state.LastTopic)
	}
	if state.Direction != "LR" || !state.Fullscreen {
		t.Errorf("unexpected view state %+v", state)
	}
	if state.Exports != 1 || state.LastExport != "go.png" {
		t.Errorf("unexpected export state %+v", state)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if _, ok := raw["path"]; ok {
		t.Error("expansion path must not be persisted")
	}
	var onDisk State
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if onDisk.Direction != "LR" {
		t.Errorf("expected persisted direction LR, got %q", onDisk.Direction)
	}
}

func TestStateSinkPersistsAndLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	runStateSink(t, path,
		&LayoutComputedEvent{BaseEvent: NewEvent(EventLayoutComputed, "s1"), Direction: "LR"},
		&ExportCompletedEvent{BaseEvent: NewEvent(EventExportCompleted, "s1"), Format: "svg", Path: "a.svg"},
	)

	sink := runStateSink(t, path,
		&ExportCompletedEvent{BaseEvent: NewEvent(EventExportCompleted, "s2"), Format: "png", Path: "b.png"},
	)
	state := sink.State()
	if state.Direction != "LR" {
		t.Errorf("expected restored direction LR, got %q", state.Direction)
	}
	if state.Exports != 2 || state.LastExport != "b.png" {
		t.Errorf("expected export counters to accumulate, got %+v", state)
	}
}

func TestStateSinkLoadCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	sink := NewStateSink(path)
	if err := sink.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sink.State().Version != CurrentStateVersion {
		t.Errorf("expected fresh state, got %+v", sink.State())
	}
	if _, err := os.Stat(path + ".backup"); err != nil {
		t.Errorf("expected backup file: %v", err)
	}
}

func TestStateSinkLoadOldVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte(`{"version": 0, "direction": "LR"}`), 0644); err != nil {
		t.Fatal(err)
	}

	sink := NewStateSink(path)
	if err := sink.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sink.State().Direction != "" {
		t.Errorf("expected old state to be discarded, got %+v", sink.State())
	}
}

func TestStateSinkLoadMissing(t *testing.T) {
	sink := NewStateSink(filepath.Join(t.TempDir(), "missing.json"))
	if err := sink.Load(); !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestStateSinkAtomicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	runStateSink(t, path,
		&FullscreenChangedEvent{BaseEvent: NewEvent(EventFullscreenChanged, "s1"), Fullscreen: true},
	)

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("expected temp file to be renamed away")
	}
}
