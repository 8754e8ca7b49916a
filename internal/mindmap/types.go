// Package mindmap provides the graph model, single-branch expansion state,
// visibility resolution and layout adaptation for learning mind-maps.
package mindmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is a node or edge identifier in canonical string form.
// It decodes from JSON strings and numbers alike, so 1, 1.0 and "1" are equal.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(canonicalNumber(n))
	return nil
}

// canonicalNumber renders integral numbers without a fractional part.
func canonicalNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil {
		if f == float64(int64(f)) {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return n.String()
}

// String returns the id as a plain string.
func (id ID) String() string {
	return string(id)
}

// RawNode is a node as delivered by the learning backend.
type RawNode struct {
	ID    ID     `json:"id"`
	Label string `json:"label,omitempty"`
	Title string `json:"title,omitempty"`
}

// RawEdge is an edge as delivered by the learning backend.
type RawEdge struct {
	ID     ID `json:"id,omitempty"`
	Source ID `json:"source"`
	Target ID `json:"target"`
}

// Data is the mind-map input contract. A nil Nodes or Edges slice means the
// key was absent from the payload, which is treated as "no data yet".
type Data struct {
	Nodes []RawNode `json:"nodes"`
	Edges []RawEdge `json:"edges"`
}

// HasData reports whether both the nodes and edges keys were supplied.
func (d *Data) HasData() bool {
	return d != nil && d.Nodes != nil && d.Edges != nil
}

// Node is a normalized mind-map node.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Edge is a normalized directed parent->child edge.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// nodeLabel picks the display label: label, then title, then "Node {id}".
func nodeLabel(n RawNode) string {
	if l := strings.TrimSpace(n.Label); l != "" {
		return l
	}
	if t := strings.TrimSpace(n.Title); t != "" {
		return t
	}
	return "Node " + string(n.ID)
}

// edgeID returns the supplied edge id or a deterministic synthesized one.
func edgeID(e RawEdge, index int) string {
	if e.ID != "" {
		return string(e.ID)
	}
	return fmt.Sprintf("edge-%s-%s-%d", e.Source, e.Target, index)
}

// Direction is the layout rank direction.
type Direction string

const (
	// DirectionTB ranks nodes top to bottom (root at top).
	DirectionTB Direction = "TB"
	// DirectionLR ranks nodes left to right (root at left).
	DirectionLR Direction = "LR"
)

// ParseDirection converts a string to a Direction, defaulting to TB.
func ParseDirection(s string) Direction {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LR", "LEFT-RIGHT", "HORIZONTAL":
		return DirectionLR
	default:
		return DirectionTB
	}
}

// Side identifies the side of a node box where a connector attaches.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// Sides returns the fixed target and source connection sides for a direction.
func (d Direction) Sides() (target, source Side) {
	if d == DirectionLR {
		return SideLeft, SideRight
	}
	return SideTop, SideBottom
}
