package explore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	creerrors "cre/internal/errors"
	"cre/internal/graph"
	"cre/internal/index"
	"cre/internal/logging"
)

// Options configures an Engine.
type Options struct {
	// HistoryCapacity bounds the exploration history ring buffer.
	// Zero means DefaultHistoryCapacity.
	HistoryCapacity int
}

// Engine is the exploration facade. It owns no graph state between calls:
// every Explore gets a fresh store, so concurrent calls on a shared engine
// never interleave node merges. The only long-lived state is the bounded
// history cache.
type Engine struct {
	idx        index.CodeIndex
	logger     *logging.Logger
	discoverer *Discoverer
	expander   *Expander
	scheduler  *Scheduler
	pathfinder *PathFinder
	history    *History
}

// NewEngine creates an Engine bound to a code index collaborator.
func NewEngine(idx index.CodeIndex, logger *logging.Logger, opts Options) *Engine {
	engineLogger := logger.With("engine")
	expander := NewExpander(idx, engineLogger)
	return &Engine{
		idx:        idx,
		logger:     engineLogger,
		discoverer: NewDiscoverer(idx, engineLogger),
		expander:   expander,
		scheduler:  NewScheduler(expander, engineLogger),
		pathfinder: NewPathFinder(engineLogger),
		history:    NewHistory(opts.HistoryCapacity),
	}
}

// History exposes the bounded exploration history for introspection.
func (e *Engine) History() *History {
	return e.history
}

// Explore parses the goal and runs one full exploration. Only a malformed
// goal is returned as an error; every other failure mode degrades the
// result instead.
func (e *Engine) Explore(ctx context.Context, goal string, contextHints []string) (*Result, error) {
	req, err := ParseRequest(goal, contextHints)
	if err != nil {
		return nil, err
	}
	return e.ExploreRequest(ctx, req)
}

// ExploreRequest runs one exploration for an already-built request.
// Constraints are clamped into their valid ranges before use.
func (e *Engine) ExploreRequest(ctx context.Context, req *Request) (*Result, error) {
	if req == nil || req.PrimaryGoal == "" {
		return nil, creerrors.New(creerrors.MalformedQuery, "exploration goal is empty")
	}
	req.Constraints = req.Constraints.Clamped()

	start := time.Now()
	store := graph.NewStore()
	rec := NewTraceRecorder()
	metrics := &Metrics{}

	e.logger.Info("Starting exploration", logging.Fields{
		"goal":     req.PrimaryGoal,
		"maxDepth": req.Constraints.MaxDepth,
		"maxNodes": req.Constraints.MaxNodes,
		"backend":  e.idx.Name(),
	})

	// Phase 1: seed the graph.
	seeds := e.discoverer.Discover(ctx, req, store, metrics)
	rec.Add(ActionInitialDiscovery,
		fmt.Sprintf("Searched the code index for entities matching %q", req.PrimaryGoal),
		fmt.Sprintf("%d seed nodes discovered", len(seeds)),
		discoveryConfidence(len(seeds)))

	// Phase 2: expand the frontier under budget.
	stop := e.scheduler.Run(ctx, req, store, seeds, rec, metrics)
	rec.Add(ActionRelationshipExploration,
		"Expanded frontier nodes through import and usage relationships",
		fmt.Sprintf("graph holds %d nodes and %d edges; stopped: %s", store.Len(), store.NumEdges(), stop),
		0.8)

	// Phase 3: construct candidate paths.
	candidates := e.pathfinder.BuildPaths(store, req)
	rec.Add(ActionPathConstruction,
		"Walked the graph greedily from high-relevance seeds",
		fmt.Sprintf("%d candidate paths", len(candidates)),
		0.75)

	// Phase 4: rank and filter.
	ranked := RankPaths(candidates, req.Constraints.RelevanceThreshold)
	rec.Add(ActionPathRanking,
		fmt.Sprintf("Ranked by score x confidence, filtered below threshold %.2f", req.Constraints.RelevanceThreshold),
		fmt.Sprintf("%d paths returned", len(ranked)),
		0.85)

	metrics.ElapsedMs = time.Since(start).Milliseconds()
	metrics.PathsFound = len(ranked)
	metrics.AverageConfidence = averageConfidence(ranked)

	result := &Result{
		ID:      uuid.NewString(),
		Request: *req,
		Paths:   ranked,
		Graph:   store.Snapshot(),
		Trace:   rec.Steps(),
		Metrics: *metrics,
	}

	e.history.Add(HistoryEntry{
		ID:        result.ID,
		Query:     req.PrimaryGoal,
		Timestamp: time.Now().UTC(),
		Result:    result,
	})

	e.logger.Info("Exploration finished", logging.Fields{
		"goal":      req.PrimaryGoal,
		"elapsedMs": metrics.ElapsedMs,
		"nodes":     store.Len(),
		"paths":     len(ranked),
	})
	return result, nil
}

// discoveryConfidence estimates how trustworthy the seeding phase was.
func discoveryConfidence(seeds int) float64 {
	switch {
	case seeds == 0:
		return 0.1
	case seeds < 3:
		return 0.6
	default:
		return 0.9
	}
}

func averageConfidence(paths []Path) float64 {
	if len(paths) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range paths {
		sum += p.Confidence
	}
	return sum / float64(len(paths))
}
