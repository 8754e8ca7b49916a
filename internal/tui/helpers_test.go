package tui

import (
	"testing"

	"github.com/npratt/mindmap/internal/mindmap"
)

// sampleData is a root with two children; Alpha has one more child.
func sampleData() *mindmap.Data {
	return &mindmap.Data{
		Nodes: []mindmap.RawNode{
			{ID: "1", Label: "Root"},
			{ID: "2", Label: "Alpha"},
			{ID: "3", Label: "Beta"},
			{ID: "4", Label: "Gamma"},
		},
		Edges: []mindmap.RawEdge{
			{Source: "1", Target: "2"},
			{Source: "1", Target: "3"},
			{Source: "2", Target: "4"},
		},
	}
}

// newTestSession returns a session laid out in cells: 12x3 boxes, two
// cells between ranks and between siblings.
func newTestSession(t *testing.T) *mindmap.Session {
	t.Helper()
	s := mindmap.NewSession(mindmap.NewAdapter(mindmap.NewLayered(2, 2), 12, 3))
	t.Cleanup(s.Close)
	return s
}

func loadedSession(t *testing.T) *mindmap.Session {
	t.Helper()
	s := newTestSession(t)
	s.Load(sampleData())
	return s
}
