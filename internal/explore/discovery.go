package explore

import (
	"context"
	"strings"

	"cre/internal/graph"
	"cre/internal/index"
	"cre/internal/logging"
)

// Discoverer seeds the knowledge graph with initial candidate nodes by
// issuing one bounded search call to the code index.
type Discoverer struct {
	index  index.CodeIndex
	logger *logging.Logger
}

// NewDiscoverer creates a Discoverer bound to a code index.
func NewDiscoverer(idx index.CodeIndex, logger *logging.Logger) *Discoverer {
	return &Discoverer{index: idx, logger: logger.With("discovery")}
}

// Discover runs the seed search, converts hits into scored nodes, inserts
// them into the store, and marks them visited. A failed search is logged
// and yields zero seeds; it never aborts the exploration.
func (d *Discoverer) Discover(ctx context.Context, req *Request, store *graph.Store, metrics *Metrics) []*graph.Node {
	q := index.SearchQuery{
		Query:          req.PrimaryGoal,
		MaxResults:     req.Constraints.MaxNodes / 2,
		IncludeContext: true,
	}

	metrics.ExternalCallsMade++
	hits, err := d.index.Search(ctx, q)
	if err != nil {
		d.logger.Warn("Seed search failed, continuing with empty seed set", logging.Fields{
			"backend": d.index.Name(),
			"error":   err.Error(),
		})
		return nil
	}
	hits = index.CleanSearchHits(hits)

	var seeds []*graph.Node
	for _, h := range hits {
		if store.Len() >= req.Constraints.MaxNodes {
			break
		}
		n := nodeFromHit(h, req.PrimaryGoal)
		inserted, isNew := store.AddNode(n)
		store.MarkVisited(inserted.ID)
		if isNew {
			seeds = append(seeds, inserted)
		}
	}

	d.logger.Debug("Seed discovery complete", logging.Fields{
		"hits":  len(hits),
		"seeds": len(seeds),
	})
	return seeds
}

// nodeFromHit converts a search hit into a reasoning node with its
// relevance score fixed at creation time.
func nodeFromHit(h index.SearchHit, goal string) *graph.Node {
	nodeType := hitNodeType(h.Type)

	context := h.Context
	if context == "" {
		context = h.Signature
	}

	return &graph.Node{
		ID:             graph.NodeID(nodeType, h.File, h.Name),
		Type:           nodeType,
		Name:           h.Name,
		Location:       graph.Location{File: h.File, Line: h.Line},
		Context:        context,
		RelevanceScore: scoreSearchHit(h, goal),
		Metadata: map[string]interface{}{
			"signature": h.Signature,
		},
	}
}

// scoreSearchHit computes the discovery relevance heuristic:
// exact name match 1.0; match on the goal's focus symbol 0.9; substring
// match either direction 0.6-0.7; otherwise a 0.4 baseline. A hit whose
// type is textually echoed in the goal gains +0.2, and a hit whose context
// contains the goal string gains +0.3. Capped at 1.0.
func scoreSearchHit(h index.SearchHit, goal string) float64 {
	name := strings.ToLower(h.Name)
	goalLower := strings.ToLower(goal)
	focus := strings.ToLower(FocusSymbol(goal))

	var score float64
	switch {
	case name == goalLower:
		score = 1.0
	case name == focus && focus != "":
		score = 0.9
	case strings.Contains(goalLower, name):
		score = 0.7
	case strings.Contains(name, goalLower):
		score = 0.6
	default:
		score = 0.4
	}

	if h.Type != "" && strings.Contains(goalLower, strings.ToLower(h.Type)) {
		score += 0.2
	}
	if h.Context != "" && strings.Contains(strings.ToLower(h.Context), goalLower) {
		score += 0.3
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// hitNodeType maps a collaborator-reported entity type onto a node type.
func hitNodeType(t string) graph.NodeType {
	switch strings.ToLower(t) {
	case "function", "method":
		return graph.NodeFunction
	case "class", "struct", "type":
		return graph.NodeClass
	case "interface":
		return graph.NodeInterface
	case "variable", "constant", "field":
		return graph.NodeVariable
	case "import", "module":
		return graph.NodeImport
	default:
		return graph.NodeFile
	}
}
