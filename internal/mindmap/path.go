package mindmap

// Outcome describes what a Toggle did to the expansion path.
type Outcome int

const (
	// OutcomeNone means the path was left untouched (no root loaded).
	OutcomeNone Outcome = iota
	// OutcomeExpanded means the path was rebuilt from root to the node.
	OutcomeExpanded
	// OutcomeCollapsed means the last path element was popped.
	OutcomeCollapsed
	// OutcomeUnreachable means the node was not reachable from the root and
	// the path was reset to the root.
	OutcomeUnreachable
)

// String returns a string representation of the Outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeExpanded:
		return "expanded"
	case OutcomeCollapsed:
		return "collapsed"
	case OutcomeUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// ToggleResult reports the outcome of a Toggle and the resulting path.
type ToggleResult struct {
	NodeID  string
	Outcome Outcome
	Path    []string
}

// Tracker owns the expansion path: the root-to-node walk the user has
// drilled into. It is not safe for concurrent use; Session serializes access.
type Tracker struct {
	rootID string
	path   []string
}

// NewTracker creates a Tracker whose path is [rootID].
func NewTracker(rootID string) *Tracker {
	t := &Tracker{}
	t.Reset(rootID)
	return t
}

// Reset sets the root and collapses the path back to it.
func (t *Tracker) Reset(rootID string) {
	t.rootID = rootID
	if rootID == "" {
		t.path = nil
		return
	}
	t.path = []string{rootID}
}

// Path returns a copy of the current path.
func (t *Tracker) Path() []string {
	out := make([]string, len(t.path))
	copy(out, t.path)
	return out
}

// Current returns the last element of the path, or "" if there is none.
func (t *Tracker) Current() string {
	if len(t.path) == 0 {
		return ""
	}
	return t.path[len(t.path)-1]
}

// Toggle collapses one level when nodeID is the end of a path longer than
// one, and otherwise replaces the path with the walk from root to nodeID.
func (t *Tracker) Toggle(nodeID string, parentOf map[string]string) ToggleResult {
	if t.rootID == "" {
		return ToggleResult{NodeID: nodeID, Outcome: OutcomeNone}
	}

	if len(t.path) > 1 && t.path[len(t.path)-1] == nodeID {
		t.path = t.path[:len(t.path)-1]
		return ToggleResult{NodeID: nodeID, Outcome: OutcomeCollapsed, Path: t.Path()}
	}

	walk := PathTo(nodeID, parentOf)
	if len(walk) == 0 || walk[0] != t.rootID {
		t.path = []string{t.rootID}
		return ToggleResult{NodeID: nodeID, Outcome: OutcomeUnreachable, Path: t.Path()}
	}

	t.path = walk
	return ToggleResult{NodeID: nodeID, Outcome: OutcomeExpanded, Path: t.Path()}
}

// PathTo walks parentOf links back from nodeID and returns the walk in
// root-first order. The walk stops at the first repeated id.
func PathTo(nodeID string, parentOf map[string]string) []string {
	var rev []string
	seen := make(map[string]bool)
	for cur := nodeID; ; {
		if seen[cur] {
			break
		}
		seen[cur] = true
		rev = append(rev, cur)

		parent, ok := parentOf[cur]
		if !ok {
			break
		}
		cur = parent
	}

	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

// ExpandTo replaces the path with the walk from root to nodeID without the
// collapse behaviour of Toggle. It reports false and leaves the path alone
// when nodeID is not reachable from the root.
func (t *Tracker) ExpandTo(nodeID string, parentOf map[string]string) bool {
	if t.rootID == "" {
		return false
	}
	walk := PathTo(nodeID, parentOf)
	if len(walk) == 0 || walk[0] != t.rootID {
		return false
	}
	t.path = walk
	return true
}
