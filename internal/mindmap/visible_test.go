package mindmap

import (
	"reflect"
	"sort"
	"testing"
)

func sortedIDs(sub Subgraph) []string {
	ids := sub.IDs()
	sort.Strings(ids)
	return ids
}

func edgePairs(edges []Edge) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.Source + ">" + e.Target
	}
	sort.Strings(out)
	return out
}

func TestResolveScenarios(t *testing.T) {
	m := BuildModel(sampleData())
	tr := NewTracker(m.RootID)

	steps := []struct {
		name   string
		toggle string
		path   []string
		nodes  []string
		edges  []string
	}{
		{"initial", "", []string{"1"}, []string{"1", "2", "3"}, []string{"1>2", "1>3"}},
		{"expand 2", "2", []string{"1", "2"}, []string{"1", "2", "3", "4"}, []string{"1>2", "1>3", "2>4"}},
		{"collapse 2", "2", []string{"1"}, []string{"1", "2", "3"}, []string{"1>2", "1>3"}},
		{"select leaf 3", "3", []string{"1", "3"}, []string{"1", "2", "3"}, []string{"1>2", "1>3"}},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			if step.toggle != "" {
				tr.Toggle(step.toggle, m.ParentOf)
			}
			if !reflect.DeepEqual(tr.Path(), step.path) {
				t.Fatalf("expected path %v, got %v", step.path, tr.Path())
			}
			sub := Resolve(m, tr.Path())
			if got := sortedIDs(sub); !reflect.DeepEqual(got, step.nodes) {
				t.Errorf("expected nodes %v, got %v", step.nodes, got)
			}
			if got := edgePairs(sub.Edges); !reflect.DeepEqual(got, step.edges) {
				t.Errorf("expected edges %v, got %v", step.edges, got)
			}
		})
	}
}

func TestResolveFlags(t *testing.T) {
	m := BuildModel(sampleData())
	sub := Resolve(m, []string{"1", "2"})

	root, _ := sub.Lookup("1")
	if !root.OnPath || root.Current || !root.Expanded || !root.HasChildren {
		t.Errorf("unexpected root flags: %+v", root)
	}
	two, _ := sub.Lookup("2")
	if !two.OnPath || !two.Current || !two.Expanded {
		t.Errorf("unexpected flags for 2: %+v", two)
	}
	three, _ := sub.Lookup("3")
	if three.OnPath || three.HasChildren || three.Expanded {
		t.Errorf("unexpected flags for 3: %+v", three)
	}
	four, _ := sub.Lookup("4")
	if four.OnPath || four.Expanded {
		t.Errorf("unexpected flags for 4: %+v", four)
	}
	if _, ok := sub.Lookup("missing"); ok {
		t.Error("expected lookup of missing id to fail")
	}
}

func TestResolveEmpty(t *testing.T) {
	m := BuildModel(&Data{Nodes: []RawNode{}, Edges: []RawEdge{}})
	tr := NewTracker(m.RootID)
	sub := Resolve(m, tr.Path())
	if !sub.Empty() {
		t.Errorf("expected empty subgraph, got %+v", sub)
	}
	if len(sub.Edges) != 0 {
		t.Errorf("expected no edges, got %v", sub.Edges)
	}
}

func TestResolveSkipsDanglingEdges(t *testing.T) {
	m := BuildModel(&Data{
		Nodes: []RawNode{{ID: "1"}, {ID: "2"}},
		Edges: []RawEdge{{Source: "1", Target: "2"}, {Source: "1", Target: "ghost"}},
	})
	sub := Resolve(m, []string{"1"})
	if got := edgePairs(sub.Edges); !reflect.DeepEqual(got, []string{"1>2"}) {
		t.Errorf("expected only 1>2, got %v", got)
	}
	if got := sortedIDs(sub); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Errorf("expected nodes [1 2], got %v", got)
	}
}

// TestVisibilityCompleteness checks visible == path ∪ children(path) for
// every reachable path in a small tree.
func TestVisibilityCompleteness(t *testing.T) {
	m := BuildModel(&Data{
		Nodes: []RawNode{{ID: "r"}, {ID: "a"}, {ID: "b"}, {ID: "a1"}, {ID: "a2"}, {ID: "a1x"}, {ID: "b1"}},
		Edges: []RawEdge{
			{Source: "r", Target: "a"},
			{Source: "r", Target: "b"},
			{Source: "a", Target: "a1"},
			{Source: "a", Target: "a2"},
			{Source: "a1", Target: "a1x"},
			{Source: "b", Target: "b1"},
		},
	})

	for _, n := range m.Nodes {
		path := PathTo(n.ID, m.ParentOf)
		want := map[string]bool{}
		for _, id := range path {
			want[id] = true
			for _, c := range m.ChildrenOf[id] {
				want[c] = true
			}
		}

		sub := Resolve(m, path)
		got := map[string]bool{}
		for _, id := range sub.IDs() {
			got[id] = true
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("path %v: expected %v, got %v", path, want, got)
		}
	}
}

func TestResolveIdempotent(t *testing.T) {
	m := BuildModel(sampleData())
	path := []string{"1", "2"}

	a := Resolve(m, path)
	b := Resolve(m, path)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected identical subgraphs, got %+v and %+v", a, b)
	}
}
