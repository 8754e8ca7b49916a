package mindmap

// Model is the derived graph model built once per data load.
type Model struct {
	Nodes      []Node
	Edges      []Edge
	ChildrenOf map[string][]string
	ParentOf   map[string]string
	RootID     string

	index       map[string]int
	Diagnostics Diagnostics
}

// Diagnostics describes how far the input deviates from a single rooted tree.
// A non-empty Diagnostics means the view runs in degraded mode: rendering
// still works, but some nodes may be unreachable by expansion.
type Diagnostics struct {
	MultiParent   []string // Nodes with more than one incoming edge
	ExtraRoots    []string // Parentless nodes other than the chosen root
	Unreachable   []string // Nodes not reachable from the root
	DanglingEdges []string // Edges whose source or target is not a node
	MissingIDs    int      // Nodes dropped because their id was missing or empty
	NoRoot        bool     // Every node has a parent; root fell back to the first node
}

// Degraded reports whether the input is anything other than a clean tree.
func (d Diagnostics) Degraded() bool {
	return len(d.MultiParent) > 0 || len(d.ExtraRoots) > 0 ||
		len(d.Unreachable) > 0 || len(d.DanglingEdges) > 0 || d.MissingIDs > 0 || d.NoRoot
}

// BuildModel derives parent/child adjacency and the root from raw input.
// Nil or empty input yields an empty model with RootID "".
func BuildModel(data *Data) *Model {
	m := &Model{
		ChildrenOf: make(map[string][]string),
		ParentOf:   make(map[string]string),
		index:      make(map[string]int),
	}
	if !data.HasData() {
		return m
	}

	for _, rn := range data.Nodes {
		id := string(rn.ID)
		if id == "" {
			m.Diagnostics.MissingIDs++
			continue
		}
		if _, dup := m.index[id]; dup {
			continue
		}
		m.index[id] = len(m.Nodes)
		m.Nodes = append(m.Nodes, Node{ID: id, Label: nodeLabel(rn)})
	}

	incoming := make(map[string]int)
	for i, re := range data.Edges {
		e := Edge{
			ID:     edgeID(re, i),
			Source: string(re.Source),
			Target: string(re.Target),
		}
		m.Edges = append(m.Edges, e)

		m.ChildrenOf[e.Source] = append(m.ChildrenOf[e.Source], e.Target)
		m.ParentOf[e.Target] = e.Source
		incoming[e.Target]++

		if !m.HasNode(e.Source) || !m.HasNode(e.Target) {
			m.Diagnostics.DanglingEdges = append(m.Diagnostics.DanglingEdges, e.ID)
		}
	}

	m.RootID = m.findRoot()
	m.diagnose(incoming)
	return m
}

// findRoot returns the first node without a parent, else the first node.
func (m *Model) findRoot() string {
	if len(m.Nodes) == 0 {
		return ""
	}
	for _, n := range m.Nodes {
		if _, ok := m.ParentOf[n.ID]; !ok {
			return n.ID
		}
	}
	m.Diagnostics.NoRoot = true
	return m.Nodes[0].ID
}

// diagnose fills in the tree-shape diagnostics.
func (m *Model) diagnose(incoming map[string]int) {
	for _, n := range m.Nodes {
		if incoming[n.ID] > 1 {
			m.Diagnostics.MultiParent = append(m.Diagnostics.MultiParent, n.ID)
		}
		if _, ok := m.ParentOf[n.ID]; !ok && n.ID != m.RootID {
			m.Diagnostics.ExtraRoots = append(m.Diagnostics.ExtraRoots, n.ID)
		}
	}

	if m.RootID == "" {
		return
	}
	reached := map[string]bool{m.RootID: true}
	queue := []string{m.RootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range m.ChildrenOf[id] {
			if !reached[child] {
				reached[child] = true
				queue = append(queue, child)
			}
		}
	}
	for _, n := range m.Nodes {
		if !reached[n.ID] {
			m.Diagnostics.Unreachable = append(m.Diagnostics.Unreachable, n.ID)
		}
	}
}

// HasNode reports whether id names a node in the model.
func (m *Model) HasNode(id string) bool {
	_, ok := m.index[id]
	return ok
}

// Node returns the node with the given id.
func (m *Model) Node(id string) (Node, bool) {
	i, ok := m.index[id]
	if !ok {
		return Node{}, false
	}
	return m.Nodes[i], true
}

// HasChildren reports whether id has at least one outgoing edge.
func (m *Model) HasChildren(id string) bool {
	return len(m.ChildrenOf[id]) > 0
}

// Empty reports whether the model has no root and therefore nothing to draw.
func (m *Model) Empty() bool {
	return m == nil || m.RootID == ""
}
