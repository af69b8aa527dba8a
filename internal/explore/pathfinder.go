package explore

import (
	"fmt"
	"strings"

	"cre/internal/graph"
	"cre/internal/logging"
)

const (
	// primarySeedScore is the relevance floor for first-round path seeds.
	primarySeedScore = 0.7
	// fallbackSeedScore is the floor for the second seeding round, used
	// when the first round yields fewer than minPrimaryPaths paths.
	fallbackSeedScore = 0.4
	minPrimaryPaths   = 3

	// similarityFloor is the minimum heuristic similarity for two nodes
	// without an explicit edge to count as path-adjacent.
	similarityFloor = 0.3
)

// PathFinder walks the completed (or partially completed) graph from
// high-relevance seeds, greedily choosing the most related unvisited
// neighbor at each step, to produce candidate explanation paths.
type PathFinder struct {
	logger *logging.Logger
}

// NewPathFinder creates a PathFinder.
func NewPathFinder(logger *logging.Logger) *PathFinder {
	return &PathFinder{logger: logger.With("paths")}
}

// BuildPaths constructs candidate paths from the discovered graph. Seeds
// are nodes scoring at least 0.7; if fewer than three paths result, nodes
// in [0.4, 0.7) are seeded as well. Seed order follows discovery order,
// which keeps ranking deterministic for identical inputs.
func (pf *PathFinder) BuildPaths(store *graph.Store, req *Request) []Path {
	nodes := store.Nodes()

	var primary, fallback []*graph.Node
	for _, n := range nodes {
		switch {
		case n.RelevanceScore >= primarySeedScore:
			primary = append(primary, n)
		case n.RelevanceScore >= fallbackSeedScore:
			fallback = append(fallback, n)
		}
	}

	paths := make([]Path, 0, len(primary))
	for _, seed := range primary {
		paths = append(paths, pf.walk(store, seed, req))
	}

	if len(paths) < minPrimaryPaths {
		for _, seed := range fallback {
			paths = append(paths, pf.walk(store, seed, req))
		}
	}

	pf.logger.Debug("Path construction complete", logging.Fields{
		"primarySeeds":  len(primary),
		"fallbackSeeds": len(fallback),
		"paths":         len(paths),
	})
	return paths
}

// walk greedily extends a path from seed for up to maxDepth-1 hops. At
// each step the candidate set is every unvisited node that either shares
// an edge with the current node or clears the similarity floor; the
// highest relevance x similarity wins, first-discovered wins ties.
func (pf *PathFinder) walk(store *graph.Store, seed *graph.Node, req *Request) Path {
	visited := map[string]bool{seed.ID: true}
	sequence := []*graph.Node{seed}
	var edges []graph.Edge

	current := seed
	for hop := 0; hop < req.Constraints.MaxDepth-1; hop++ {
		next, similarity := pf.nextHop(store, current, visited)
		if next == nil {
			break
		}

		if edge, ok := store.EdgeBetween(current.ID, next.ID); ok {
			edges = append(edges, edge)
		} else {
			edges = append(edges, graph.Edge{
				From:     current.ID,
				To:       next.ID,
				Type:     graph.RelRelated,
				Strength: similarity,
			})
		}

		visited[next.ID] = true
		sequence = append(sequence, next)
		current = next
	}

	return finishPath(sequence, edges, req.Constraints.MaxDepth)
}

// nextHop picks the best unvisited continuation from current.
func (pf *PathFinder) nextHop(store *graph.Store, current *graph.Node, visited map[string]bool) (*graph.Node, float64) {
	var best *graph.Node
	bestSim := 0.0
	bestScore := 0.0

	for _, candidate := range store.Nodes() {
		if visited[candidate.ID] {
			continue
		}

		var similarity float64
		if edge, ok := store.EdgeBetween(current.ID, candidate.ID); ok {
			similarity = edge.Strength
		} else {
			similarity = graph.Similarity(current, candidate)
			if similarity < similarityFloor {
				continue
			}
		}

		score := candidate.RelevanceScore * similarity
		if score > bestScore {
			best = candidate
			bestSim = similarity
			bestScore = score
		}
	}

	return best, bestSim
}

// finishPath computes the derived path fields. TotalScore is the mean of
// node relevance scores; Confidence is min(0.95, totalScore x pathLength /
// maxDepth).
func finishPath(sequence []*graph.Node, edges []graph.Edge, maxDepth int) Path {
	total := 0.0
	nodes := make([]graph.Node, 0, len(sequence))
	for _, n := range sequence {
		total += n.RelevanceScore
		nodes = append(nodes, *n)
	}
	total /= float64(len(sequence))

	confidence := total * float64(len(sequence)) / float64(maxDepth)
	if confidence > 0.95 {
		confidence = 0.95
	}

	if edges == nil {
		edges = []graph.Edge{}
	}

	return Path{
		Nodes:      nodes,
		Edges:      edges,
		TotalScore: total,
		Confidence: confidence,
		Reasoning:  pathReasoning(sequence, edges, total),
	}
}

// pathReasoning renders the human-readable justification for a path.
func pathReasoning(sequence []*graph.Node, edges []graph.Edge, total float64) string {
	head := sequence[0]
	if len(sequence) == 1 {
		return fmt.Sprintf("%s %q stands alone with relevance %.2f; no related entities were close enough to chain",
			head.Type, head.Name, head.RelevanceScore)
	}

	hops := make([]string, 0, len(edges))
	for i, e := range edges {
		hops = append(hops, fmt.Sprintf("%s %s %q", e.Type, arrow(e, sequence[i+1].ID), sequence[i+1].Name))
	}

	return fmt.Sprintf("Starts at %s %q (relevance %.2f), then %s; mean relevance %.2f",
		head.Type, head.Name, head.RelevanceScore, strings.Join(hops, ", then "), total)
}

// arrow renders edge direction relative to the walk order.
func arrow(e graph.Edge, nextID string) string {
	if e.To == nextID {
		return "->"
	}
	return "<-"
}
