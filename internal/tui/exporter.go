package tui

import (
	"github.com/npratt/mindmap/internal/export"
	"github.com/npratt/mindmap/internal/mindmap"
)

// Exporter writes the visible subgraph to an image file. The terminal
// layout is in cells, so the subgraph is laid out again with Adapter in
// pixel units before rendering.
type Exporter struct {
	Adapter *mindmap.Adapter
	Dir     string
	Options export.Options
}

// Export renders view and returns the written path and byte count.
func (e *Exporter) Export(view mindmap.View, topic string, format export.Format) (string, int, error) {
	layout := view.Layout
	if e.Adapter != nil {
		layout = e.Adapter.Apply(view.Subgraph, view.Direction)
	}
	return export.WriteFile(e.Dir, topic, view.Subgraph, layout, format, e.Options)
}
