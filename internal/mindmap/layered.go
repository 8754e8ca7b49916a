package mindmap

import (
	"fmt"
	"math"
	"sort"
)

// Default spacing for the layered engine, in the same unit as node sizes.
const (
	DefaultRankSep = 60.0
	DefaultNodeSep = 24.0
)

// Layered is the default layout engine. It assigns each node a rank equal
// to its tree depth, places leaves side by side along the breadth axis and
// centers parents over their children. A final sweep per rank pushes apart
// any boxes that would still overlap.
type Layered struct {
	RankSep float64 // Gap between consecutive ranks
	NodeSep float64 // Minimum gap between boxes in the same rank
}

// NewLayered creates a Layered engine, substituting defaults for
// non-positive spacing.
func NewLayered(rankSep, nodeSep float64) Layered {
	if rankSep <= 0 {
		rankSep = DefaultRankSep
	}
	if nodeSep <= 0 {
		nodeSep = DefaultNodeSep
	}
	return Layered{RankSep: rankSep, NodeSep: nodeSep}
}

// layeredState holds per-call working data.
type layeredState struct {
	sizes    map[string]Size
	children map[string][]string
	visited  map[string]bool
	depth    map[string]int
	center   map[string]float64
	cursor   float64
	dir      Direction
	nodeSep  float64
}

// breadth returns the node extent along the within-rank axis.
func (s *layeredState) breadth(id string) float64 {
	if s.dir == DirectionLR {
		return s.sizes[id].Height
	}
	return s.sizes[id].Width
}

// span returns the node extent along the rank axis.
func (s *layeredState) span(id string) float64 {
	if s.dir == DirectionLR {
		return s.sizes[id].Width
	}
	return s.sizes[id].Height
}

// Layout implements Engine.
func (l Layered) Layout(nodes []Size, edges []Edge, dir Direction) (map[string]Point, error) {
	rankSep, nodeSep := l.RankSep, l.NodeSep
	if rankSep <= 0 {
		rankSep = DefaultRankSep
	}
	if nodeSep <= 0 {
		nodeSep = DefaultNodeSep
	}

	s := &layeredState{
		sizes:    make(map[string]Size, len(nodes)),
		children: make(map[string][]string),
		visited:  make(map[string]bool, len(nodes)),
		depth:    make(map[string]int, len(nodes)),
		center:   make(map[string]float64, len(nodes)),
		dir:      dir,
		nodeSep:  nodeSep,
	}

	var order []string
	for _, n := range nodes {
		if n.Width < 0 || n.Height < 0 || math.IsNaN(n.Width) || math.IsNaN(n.Height) {
			return nil, fmt.Errorf("invalid size for node %q", n.ID)
		}
		if _, dup := s.sizes[n.ID]; dup {
			continue
		}
		s.sizes[n.ID] = n
		order = append(order, n.ID)
	}
	if len(order) == 0 {
		return map[string]Point{}, nil
	}

	hasParent := make(map[string]bool)
	for _, e := range edges {
		_, okS := s.sizes[e.Source]
		_, okT := s.sizes[e.Target]
		if !okS || !okT || e.Source == e.Target {
			continue
		}
		s.children[e.Source] = append(s.children[e.Source], e.Target)
		hasParent[e.Target] = true
	}

	// Roots first in input order, then anything a cycle kept unvisited.
	for _, id := range order {
		if !hasParent[id] && !s.visited[id] {
			s.place(id, 0)
		}
	}
	for _, id := range order {
		if !s.visited[id] {
			s.place(id, 0)
		}
	}

	// Group by rank and resolve remaining overlaps.
	maxRank := 0
	ranks := make(map[int][]string)
	for _, id := range order {
		d := s.depth[id]
		ranks[d] = append(ranks[d], id)
		if d > maxRank {
			maxRank = d
		}
	}
	for r := 0; r <= maxRank; r++ {
		ids := ranks[r]
		sort.SliceStable(ids, func(i, j int) bool {
			return s.center[ids[i]] < s.center[ids[j]]
		})
		for i := 1; i < len(ids); i++ {
			prev, cur := ids[i-1], ids[i]
			minCenter := s.center[prev] + s.breadth(prev)/2 + nodeSep + s.breadth(cur)/2
			if s.center[cur] < minCenter {
				s.center[cur] = minCenter
			}
		}
	}

	// Rank offsets along the rank axis.
	offset := make([]float64, maxRank+1)
	for r := 1; r <= maxRank; r++ {
		widest := 0.0
		for _, id := range ranks[r-1] {
			widest = math.Max(widest, s.span(id))
		}
		offset[r] = offset[r-1] + widest + rankSep
	}

	minBreadth := math.Inf(1)
	for _, id := range order {
		minBreadth = math.Min(minBreadth, s.center[id]-s.breadth(id)/2)
	}

	positions := make(map[string]Point, len(order))
	for _, id := range order {
		lo := s.center[id] - s.breadth(id)/2 - minBreadth
		rank := offset[s.depth[id]]
		if dir == DirectionLR {
			positions[id] = Point{X: rank, Y: lo}
		} else {
			positions[id] = Point{X: lo, Y: rank}
		}
	}
	return positions, nil
}

// place assigns depth and breadth center to id and its unvisited subtree.
func (s *layeredState) place(id string, depth int) {
	s.visited[id] = true
	s.depth[id] = depth

	var placed []string
	for _, child := range s.children[id] {
		if s.visited[child] {
			continue
		}
		s.place(child, depth+1)
		placed = append(placed, child)
	}

	if len(placed) == 0 {
		b := s.breadth(id)
		s.center[id] = s.cursor + b/2
		s.cursor += b + s.nodeSep
		return
	}

	first, last := placed[0], placed[len(placed)-1]
	s.center[id] = (s.center[first] + s.center[last]) / 2
}
