package mindmap

// VisibleNode is a node selected for rendering, tagged with its role in the
// current expansion.
type VisibleNode struct {
	Node
	OnPath      bool // Node is part of the expansion path
	Current     bool // Node is the last element of the path
	HasChildren bool // Node has at least one child in the full model
	Expanded    bool // Node's children are shown because it is on the path
}

// Subgraph is the visible portion of a model for one expansion path.
type Subgraph struct {
	RootID string
	Path   []string
	Nodes  []VisibleNode
	Edges  []Edge
}

// Empty reports whether there is nothing to render.
func (s Subgraph) Empty() bool {
	return len(s.Nodes) == 0
}

// IDs returns the visible node ids in render order.
func (s Subgraph) IDs() []string {
	ids := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Lookup returns the visible node with the given id.
func (s Subgraph) Lookup(id string) (VisibleNode, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return VisibleNode{}, false
}

// VisibleIDs returns path ∪ children(path) ∪ {root}.
func VisibleIDs(m *Model, path []string) map[string]bool {
	visible := make(map[string]bool)
	if m.Empty() {
		return visible
	}
	visible[m.RootID] = true
	for _, id := range path {
		visible[id] = true
		for _, child := range m.ChildrenOf[id] {
			visible[child] = true
		}
	}
	return visible
}

// Resolve computes the nodes and edges to render for the given path: every
// path node plus one level of preview children under each of them.
func Resolve(m *Model, path []string) Subgraph {
	if m.Empty() {
		return Subgraph{}
	}

	visible := VisibleIDs(m, path)
	onPath := make(map[string]bool, len(path))
	for _, id := range path {
		onPath[id] = true
	}
	current := ""
	if len(path) > 0 {
		current = path[len(path)-1]
	}

	sub := Subgraph{RootID: m.RootID, Path: append([]string(nil), path...)}
	for _, n := range m.Nodes {
		if !visible[n.ID] {
			continue
		}
		hasChildren := m.HasChildren(n.ID)
		sub.Nodes = append(sub.Nodes, VisibleNode{
			Node:        n,
			OnPath:      onPath[n.ID],
			Current:     n.ID == current,
			HasChildren: hasChildren,
			Expanded:    onPath[n.ID] && hasChildren,
		})
	}

	for _, e := range m.Edges {
		if visible[e.Source] && visible[e.Target] && m.HasNode(e.Source) && m.HasNode(e.Target) {
			sub.Edges = append(sub.Edges, e)
		}
	}
	return sub
}
