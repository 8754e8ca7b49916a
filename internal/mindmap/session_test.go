package mindmap

import (
	"errors"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/npratt/mindmap/internal/events"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(NewAdapter(NewLayered(0, 0), 100, 40))
	t.Cleanup(s.Close)
	return s
}

// drain collects events until the channel is idle.
func drain(ch <-chan events.Event) []events.Event {
	var out []events.Event
	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, e)
		case <-time.After(50 * time.Millisecond):
			return out
		}
	}
}

func eventTypes(evs []events.Event) []events.EventType {
	out := make([]events.EventType, len(evs))
	for i, e := range evs {
		out[i] = e.Type()
	}
	return out
}

func TestSessionLoad(t *testing.T) {
	s := newTestSession(t)
	ch := s.Events().Subscribe()

	s.Load(sampleData())

	v := s.Snapshot()
	if v.RootID != "1" {
		t.Errorf("expected root 1, got %q", v.RootID)
	}
	if !reflect.DeepEqual(v.Path, []string{"1"}) {
		t.Errorf("expected path [1], got %v", v.Path)
	}
	if len(v.Layout.Order) != 3 {
		t.Errorf("expected 3 positioned nodes, got %v", v.Layout.Order)
	}

	got := eventTypes(drain(ch))
	want := []events.EventType{events.EventGraphLoaded, events.EventLayoutComputed, events.EventFitRequested}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected events %v, got %v", want, got)
	}
}

func TestSessionLoadEmpty(t *testing.T) {
	s := newTestSession(t)
	ch := s.Events().Subscribe()

	s.Load(&Data{Nodes: []RawNode{}, Edges: []RawEdge{}})

	v := s.Snapshot()
	if v.RootID != "" || !v.Subgraph.Empty() || !v.Layout.Empty() {
		t.Errorf("expected empty view, got %+v", v)
	}
	evs := drain(ch)
	if len(evs) == 0 || evs[0].Type() != events.EventGraphEmpty {
		t.Errorf("expected graph.empty first, got %v", eventTypes(evs))
	}
	for _, e := range evs {
		if e.SessionID() != s.ID() {
			t.Errorf("expected session %s, got %s", s.ID(), e.SessionID())
		}
	}

	if res := s.Toggle("1"); res.Outcome != OutcomeNone {
		t.Errorf("expected toggle on empty graph to be a no-op, got %s", res.Outcome)
	}
}

func TestSessionToggle(t *testing.T) {
	s := newTestSession(t)
	s.Load(sampleData())
	ch := s.Events().SubscribeTypes(events.EventPathChanged, events.EventFitRequested)

	gen := s.Generation()
	res := s.Toggle("2")
	if res.Outcome != OutcomeExpanded {
		t.Fatalf("expected expanded, got %s", res.Outcome)
	}
	if s.Generation() != gen+1 {
		t.Errorf("expected generation %d, got %d", gen+1, s.Generation())
	}

	v := s.Snapshot()
	ids := v.Subgraph.IDs()
	sort.Strings(ids)
	if !reflect.DeepEqual(ids, []string{"1", "2", "3", "4"}) {
		t.Errorf("expected visible [1 2 3 4], got %v", ids)
	}

	evs := drain(ch)
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %v", eventTypes(evs))
	}
	pc, ok := evs[0].(*events.PathChangedEvent)
	if !ok {
		t.Fatalf("expected *PathChangedEvent, got %T", evs[0])
	}
	if pc.Outcome != "expanded" || !reflect.DeepEqual(pc.Path, []string{"1", "2"}) {
		t.Errorf("unexpected path event %+v", pc)
	}
	fit, ok := evs[1].(*events.FitRequestedEvent)
	if !ok {
		t.Fatalf("expected *FitRequestedEvent, got %T", evs[1])
	}
	if fit.Generation != s.Generation() {
		t.Errorf("expected fit for generation %d, got %d", s.Generation(), fit.Generation)
	}
}

func TestSessionToggleUnreachable(t *testing.T) {
	s := newTestSession(t)
	data := sampleData()
	data.Nodes = append(data.Nodes, RawNode{ID: "5"})
	s.Load(data)

	if len(s.Warnings()) == 0 {
		t.Error("expected warnings for disconnected node")
	}

	s.Toggle("2")
	res := s.Toggle("5")
	if res.Outcome != OutcomeUnreachable {
		t.Errorf("expected unreachable, got %s", res.Outcome)
	}
	if !reflect.DeepEqual(s.Snapshot().Path, []string{"1"}) {
		t.Errorf("expected path reset to [1], got %v", s.Snapshot().Path)
	}
}

func TestSessionLayoutCachedOnRevisit(t *testing.T) {
	s := newTestSession(t)
	s.Load(sampleData())
	ch := s.Events().SubscribeTypes(events.EventLayoutComputed)

	s.Toggle("2")
	s.Toggle("2")

	evs := drain(ch)
	if len(evs) != 2 {
		t.Fatalf("expected 2 layout events, got %d", len(evs))
	}
	if evs[0].(*events.LayoutComputedEvent).Cached {
		t.Error("expected first expansion to compute a new layout")
	}
	if !evs[1].(*events.LayoutComputedEvent).Cached {
		t.Error("expected collapse to reuse the cached layout")
	}
}

func TestSessionExpandTo(t *testing.T) {
	s := newTestSession(t)
	s.Load(sampleData())

	if err := s.ExpandTo("4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(s.Snapshot().Path, []string{"1", "2", "4"}) {
		t.Errorf("expected [1 2 4], got %v", s.Snapshot().Path)
	}
	if err := s.ExpandTo("ghost"); err == nil {
		t.Error("expected error for unknown node")
	}
}

func TestSessionDirectionAndFullscreen(t *testing.T) {
	s := newTestSession(t)
	s.Load(sampleData())
	ch := s.Events().Subscribe()

	gen := s.Generation()
	s.SetDirection(DirectionLR)
	if s.Snapshot().Layout.Direction != DirectionLR {
		t.Error("expected LR layout")
	}
	s.SetDirection(DirectionLR)
	if s.Generation() != gen+1 {
		t.Errorf("expected unchanged direction to be a no-op, generation %d", s.Generation())
	}

	s.SetFullscreen(true, true)
	if !s.Snapshot().Fullscreen {
		t.Error("expected fullscreen")
	}

	got := eventTypes(drain(ch))
	want := []events.EventType{
		events.EventLayoutComputed, events.EventFitRequested,
		events.EventFullscreenChanged, events.EventFitRequested,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSessionReportExport(t *testing.T) {
	s := newTestSession(t)
	ch := s.Events().SubscribeTypes(events.EventExportCompleted, events.EventExportFailed)

	s.ReportExport("png", "go.png", 1024, nil)
	s.ReportExport("svg", "", 0, errors.New("disk full"))

	evs := drain(ch)
	if len(evs) != 2 {
		t.Fatalf("expected 2 events, got %d", len(evs))
	}
	if done := evs[0].(*events.ExportCompletedEvent); done.Bytes != 1024 || done.Path != "go.png" {
		t.Errorf("unexpected completed event %+v", done)
	}
	if failed := evs[1].(*events.ExportFailedEvent); failed.Error != "disk full" {
		t.Errorf("unexpected failed event %+v", failed)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	a := newTestSession(t)
	b := newTestSession(t)
	if a.ID() == b.ID() {
		t.Fatal("expected distinct session ids")
	}

	chB := b.Events().Subscribe()
	a.Load(sampleData())
	a.RequestFit()

	if evs := drain(chB); len(evs) != 0 {
		t.Errorf("expected no cross-session events, got %v", eventTypes(evs))
	}
}
