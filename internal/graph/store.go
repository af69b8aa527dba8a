package graph

import (
	creerrors "cre/internal/errors"
)

// Store is the knowledge graph for one exploration. Nodes are deduplicated
// by id, insertion order is preserved (ranking tie-breaks depend on it),
// and edges are indexed in both directions.
//
// A Store is owned by a single Explore call and is not safe for concurrent
// use. Callers that want cross-call caching should layer that explicitly
// rather than sharing one Store.
type Store struct {
	nodes   map[string]*Node
	order   []string
	edges   []Edge
	out     map[string][]int // node id -> indices into edges
	in      map[string][]int
	visited map[string]bool
}

// NewStore creates an empty knowledge graph.
func NewStore() *Store {
	return &Store{
		nodes:   make(map[string]*Node),
		out:     make(map[string][]int),
		in:      make(map[string][]int),
		visited: make(map[string]bool),
	}
}

// AddNode inserts a node, deduplicating by id. If a node with the same id
// already exists the existing node is returned and the insert is a no-op:
// relevance scores are fixed at first discovery and never revised.
// The second return value reports whether the node was newly inserted.
func (s *Store) AddNode(n *Node) (*Node, bool) {
	if existing, ok := s.nodes[n.ID]; ok {
		return existing, false
	}
	if n.Relationships == nil {
		n.Relationships = []Relationship{}
	}
	s.nodes[n.ID] = n
	s.order = append(s.order, n.ID)
	return n, true
}

// Node returns the node with the given id, if present.
func (s *Store) Node(id string) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Nodes returns all nodes in discovery order.
func (s *Store) Nodes() []*Node {
	out := make([]*Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodes[id])
	}
	return out
}

// Len returns the number of nodes in the store.
func (s *Store) Len() int {
	return len(s.order)
}

// AddEdge records a directed relationship between two existing nodes and
// appends it to the source node's relationship list. Re-adding an edge
// with the same endpoints and type is a no-op, so re-discovery is
// idempotent. An edge referencing an unknown node id is skipped and a
// GRAPH_INCONSISTENCY error is returned; callers treat this as non-fatal.
func (s *Store) AddEdge(e Edge) error {
	from, okFrom := s.nodes[e.From]
	if !okFrom {
		return creerrors.New(creerrors.GraphInconsistency,
			"edge source node not in store: "+e.From)
	}
	if _, okTo := s.nodes[e.To]; !okTo {
		return creerrors.New(creerrors.GraphInconsistency,
			"edge target node not in store: "+e.To)
	}

	for _, idx := range s.out[e.From] {
		prev := s.edges[idx]
		if prev.To == e.To && prev.Type == e.Type {
			return nil
		}
	}

	idx := len(s.edges)
	s.edges = append(s.edges, e)
	s.out[e.From] = append(s.out[e.From], idx)
	s.in[e.To] = append(s.in[e.To], idx)

	from.Relationships = append(from.Relationships, Relationship{
		TargetID: e.To,
		Type:     e.Type,
		Strength: e.Strength,
	})
	return nil
}

// Edges returns all edges in insertion order.
func (s *Store) Edges() []Edge {
	out := make([]Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// NumEdges returns the number of edges in the store.
func (s *Store) NumEdges() int {
	return len(s.edges)
}

// EdgeBetween returns the first edge connecting a and b in either
// direction. Path adjacency ignores edge direction.
func (s *Store) EdgeBetween(a, b string) (Edge, bool) {
	for _, idx := range s.out[a] {
		if s.edges[idx].To == b {
			return s.edges[idx], true
		}
	}
	for _, idx := range s.in[a] {
		if s.edges[idx].From == b {
			return s.edges[idx], true
		}
	}
	return Edge{}, false
}

// Neighbors returns the ids of nodes connected to id by any edge,
// in edge insertion order, ignoring direction.
func (s *Store) Neighbors(id string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, idx := range s.out[id] {
		to := s.edges[idx].To
		if !seen[to] {
			seen[to] = true
			out = append(out, to)
		}
	}
	for _, idx := range s.in[id] {
		from := s.edges[idx].From
		if !seen[from] {
			seen[from] = true
			out = append(out, from)
		}
	}
	return out
}

// MarkVisited marks a node as already expanded.
func (s *Store) MarkVisited(id string) {
	s.visited[id] = true
}

// Visited reports whether a node has been expanded.
func (s *Store) Visited(id string) bool {
	return s.visited[id]
}

// Snapshot returns a value copy of the graph suitable for embedding in an
// ExplorationResult after the store is no longer mutated.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Snapshot copies the current nodes and edges.
func (s *Store) Snapshot() Snapshot {
	snap := Snapshot{
		Nodes: make([]Node, 0, len(s.order)),
		Edges: make([]Edge, len(s.edges)),
	}
	for _, id := range s.order {
		snap.Nodes = append(snap.Nodes, *s.nodes[id])
	}
	copy(snap.Edges, s.edges)
	return snap
}
