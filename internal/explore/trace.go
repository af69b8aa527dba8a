package explore

import (
	"time"
)

// Trace step actions, one per major engine phase plus per-node expansion.
const (
	ActionInitialDiscovery        = "initial_discovery"
	ActionNodeExpansion           = "node_expansion"
	ActionRelationshipExploration = "relationship_exploration"
	ActionPathConstruction        = "path_construction"
	ActionPathRanking             = "path_ranking"
)

// TraceStep is one ordered, human-readable step of the reasoning trace.
type TraceStep struct {
	Step       int       `json:"step"`
	Action     string    `json:"action"`
	Reasoning  string    `json:"reasoning"`
	Result     string    `json:"result,omitempty"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// TraceRecorder appends ordered steps describing what the engine did and
// why. The trace is pure observation: nothing reads it back to influence
// scheduling or scoring.
type TraceRecorder struct {
	steps []TraceStep
	now   func() time.Time
}

// NewTraceRecorder creates an empty recorder.
func NewTraceRecorder() *TraceRecorder {
	return &TraceRecorder{now: time.Now}
}

// Add appends a step with the next monotonic index.
func (r *TraceRecorder) Add(action, reasoning, result string, confidence float64) {
	r.steps = append(r.steps, TraceStep{
		Step:       len(r.steps) + 1,
		Action:     action,
		Reasoning:  reasoning,
		Result:     result,
		Confidence: confidence,
		Timestamp:  r.now().UTC(),
	})
}

// Steps returns the recorded steps in order.
func (r *TraceRecorder) Steps() []TraceStep {
	out := make([]TraceStep, len(r.steps))
	copy(out, r.steps)
	return out
}
