package explore

import (
	"context"
	"fmt"
	"time"

	"cre/internal/graph"
	"cre/internal/logging"
)

// timeFloor is the minimum remaining budget required to schedule another
// expansion. The budget is enforced cooperatively: a call already in
// flight is never aborted, only further work is withheld.
const timeFloor = time.Second

// StopReason explains why the frontier scheduler terminated.
type StopReason string

const (
	StopFrontierEmpty StopReason = "frontier_empty"
	StopDepthLimit    StopReason = "depth_limit"
	StopNodeLimit     StopReason = "node_limit"
	StopTimeBudget    StopReason = "time_budget"
	StopCancelled     StopReason = "cancelled"
)

// Scheduler drives the expansion loop: a breadth-first, relevance-gated
// frontier. Low-relevance nodes are discovered and kept in the graph but
// never used as further expansion points.
type Scheduler struct {
	expander *Expander
	logger   *logging.Logger
}

// NewScheduler creates a Scheduler around an Expander.
func NewScheduler(expander *Expander, logger *logging.Logger) *Scheduler {
	return &Scheduler{expander: expander, logger: logger.With("frontier")}
}

// Run expands nodes from the seed frontier until the frontier drains or a
// budget is exhausted. Hitting a budget is the expected stopping
// condition, not an error; the reason is recorded on the trace.
func (s *Scheduler) Run(ctx context.Context, req *Request, store *graph.Store, seeds []*graph.Node, rec *TraceRecorder, metrics *Metrics) StopReason {
	deadline := time.Now().Add(time.Duration(req.Constraints.TimeLimitMs) * time.Millisecond)

	frontier := make([]*graph.Node, len(seeds))
	copy(frontier, seeds)

	depth := 0
	reason := StopFrontierEmpty
	for {
		if len(frontier) == 0 {
			reason = StopFrontierEmpty
			break
		}
		if depth >= req.Constraints.MaxDepth {
			reason = StopDepthLimit
			break
		}
		if store.Len() >= req.Constraints.MaxNodes {
			reason = StopNodeLimit
			break
		}
		if time.Until(deadline) <= timeFloor {
			reason = StopTimeBudget
			break
		}
		if ctx.Err() != nil {
			reason = StopCancelled
			break
		}

		node := frontier[0]
		frontier = frontier[1:]
		depth++

		neighbors := s.expander.Expand(ctx, node, req, store, metrics)
		metrics.NodesExplored++

		enqueued := 0
		for _, n := range neighbors {
			if n.RelevanceScore >= req.Constraints.RelevanceThreshold && !store.Visited(n.ID) {
				store.MarkVisited(n.ID)
				frontier = append(frontier, n)
				enqueued++
			}
		}

		rec.Add(ActionNodeExpansion,
			fmt.Sprintf("Expanded %s %q at depth %d", node.Type, node.Name, depth),
			fmt.Sprintf("%d neighbors discovered, %d above threshold", len(neighbors), enqueued),
			node.RelevanceScore)
	}

	s.logger.Debug("Frontier scheduling stopped", logging.Fields{
		"reason":   string(reason),
		"depth":    depth,
		"nodes":    store.Len(),
		"frontier": len(frontier),
	})
	return reason
}
