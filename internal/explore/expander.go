package explore

import (
	"context"
	"strings"

	creerrors "cre/internal/errors"
	"cre/internal/graph"
	"cre/internal/index"
	"cre/internal/logging"
)

// Edge strengths and node scores used by the expander. Import edges carry
// a fixed strength; usage edges inherit the collaborator's confidence.
const (
	importEdgeStrength = 0.8
	importScoreRelated = 0.7
	importScoreBase    = 0.4

	usageEdgeStrengthBase = 0.6
	usageScoreOverlap     = 0.8
	usageScoreBase        = 0.5

	importTraceDepth = 3
)

// Expander grows the graph around one frontier node by tracing its imports
// and finding usages of its symbol. Each sub-query failure is caught
// independently and treated as "no neighbors found".
type Expander struct {
	index  index.CodeIndex
	logger *logging.Logger
}

// NewExpander creates an Expander bound to a code index.
func NewExpander(idx index.CodeIndex, logger *logging.Logger) *Expander {
	return &Expander{index: idx, logger: logger.With("expand")}
}

// Expand discovers neighbors of node and merges them into the store.
// Returns the newly inserted nodes; re-discovered nodes gain edges but are
// not returned again. The store's node budget is never exceeded.
func (e *Expander) Expand(ctx context.Context, node *graph.Node, req *Request, store *graph.Store, metrics *Metrics) []*graph.Node {
	var discovered []*graph.Node

	if req.Preferences.IncludeDependencies && node.Location.File != "" {
		discovered = append(discovered, e.expandImports(ctx, node, req, store, metrics)...)
	}
	if req.Preferences.IncludeUsages && node.Name != "" {
		discovered = append(discovered, e.expandUsages(ctx, node, req, store, metrics)...)
	}

	return discovered
}

func (e *Expander) expandImports(ctx context.Context, node *graph.Node, req *Request, store *graph.Store, metrics *Metrics) []*graph.Node {
	metrics.ExternalCallsMade++
	trace, err := e.index.TraceImports(ctx, index.ImportQuery{
		FilePath: node.Location.File,
		Symbol:   node.Name,
		MaxDepth: importTraceDepth,
	})
	if err != nil {
		e.logger.Warn("Import trace failed", logging.Fields{
			"node":  node.ID,
			"file":  node.Location.File,
			"error": err.Error(),
		})
		return nil
	}
	trace = index.CleanImportTrace(trace)

	var discovered []*graph.Node
	for _, file := range trace.Files {
		for _, imp := range file.Imports {
			if store.Len() >= req.Constraints.MaxNodes {
				return discovered
			}

			score := importScoreBase
			if importRelatesToGoal(imp, req.PrimaryGoal) {
				score = importScoreRelated
			}

			n := &graph.Node{
				ID:             graph.NodeID(graph.NodeImport, file.File, imp.Module),
				Type:           graph.NodeImport,
				Name:           imp.Module,
				Location:       graph.Location{File: file.File, Line: imp.Line},
				Context:        strings.Join(imp.Symbols, ", "),
				RelevanceScore: score,
				Metadata: map[string]interface{}{
					"importDepth": file.Depth,
				},
			}

			inserted, isNew := store.AddNode(n)
			if inserted.ID == node.ID {
				continue
			}
			e.addEdge(store, graph.Edge{
				From:     node.ID,
				To:       inserted.ID,
				Type:     graph.RelImports,
				Strength: importEdgeStrength,
			})
			if isNew {
				discovered = append(discovered, inserted)
			}
		}
	}
	return discovered
}

func (e *Expander) expandUsages(ctx context.Context, node *graph.Node, req *Request, store *graph.Store, metrics *Metrics) []*graph.Node {
	metrics.ExternalCallsMade++
	usages, err := e.index.FindUsages(ctx, index.UsageQuery{
		Symbol:             node.Name,
		SymbolType:         string(node.Type),
		IncludeDefinitions: false,
	})
	if err != nil {
		e.logger.Warn("Usage search failed", logging.Fields{
			"node":   node.ID,
			"symbol": node.Name,
			"error":  err.Error(),
		})
		return nil
	}
	usages = index.CleanUsages(usages)

	var discovered []*graph.Node
	for _, u := range usages {
		if store.Len() >= req.Constraints.MaxNodes {
			return discovered
		}

		score := usageScoreBase
		if u.Context != "" && graph.TokensMatch(u.Context, req.PrimaryGoal) {
			score = usageScoreOverlap
		}

		strength := u.Confidence
		if strength == 0 {
			strength = usageEdgeStrengthBase
		}

		n := &graph.Node{
			ID:             graph.NodeIDForLine(graph.NodeUsage, u.File, u.Line),
			Type:           graph.NodeUsage,
			Name:           node.Name,
			Location:       graph.Location{File: u.File, Line: u.Line},
			Context:        u.Context,
			RelevanceScore: score,
			Metadata: map[string]interface{}{
				"usageOf": node.ID,
			},
		}

		inserted, isNew := store.AddNode(n)
		if inserted.ID == node.ID {
			// A usage node's own occurrence comes back from the index;
			// a self loop says nothing.
			continue
		}
		e.addEdge(store, graph.Edge{
			From:     node.ID,
			To:       inserted.ID,
			Type:     graph.RelUses,
			Strength: strength,
		})
		if isNew {
			discovered = append(discovered, inserted)
		}
	}
	return discovered
}

// addEdge inserts an edge, downgrading graph-inconsistency errors to a
// logged skip. Deterministic id generation should make this unreachable.
func (e *Expander) addEdge(store *graph.Store, edge graph.Edge) {
	if err := store.AddEdge(edge); err != nil {
		if creerrors.HasCode(err, creerrors.GraphInconsistency) {
			e.logger.Warn("Skipping inconsistent edge", logging.Fields{
				"from":  edge.From,
				"to":    edge.To,
				"error": err.Error(),
			})
			return
		}
		e.logger.Error("Failed to add edge", logging.Fields{
			"from":  edge.From,
			"to":    edge.To,
			"error": err.Error(),
		})
	}
}

// importRelatesToGoal reports whether an imported module or one of its
// symbols textually relates to the goal.
func importRelatesToGoal(imp index.ImportStatement, goal string) bool {
	if graph.TokensMatch(imp.Module, goal) {
		return true
	}
	for _, sym := range imp.Symbols {
		if graph.TokensMatch(sym, goal) {
			return true
		}
	}
	return false
}
