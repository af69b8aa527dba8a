package explore

import (
	"cre/internal/graph"
)

// Path is one candidate explanation: an ordered node sequence with the
// edges that connect consecutive nodes. TotalScore is the arithmetic mean
// of the node relevance scores; Confidence combines score and path
// completeness and never exceeds 0.95.
type Path struct {
	Nodes      []graph.Node `json:"nodes"`
	Edges      []graph.Edge `json:"edges"`
	TotalScore float64      `json:"totalScore"`
	Confidence float64      `json:"confidence"`
	Reasoning  string       `json:"reasoning"`
}

// Metrics are the performance counters attached to every result.
type Metrics struct {
	ElapsedMs         int64   `json:"elapsedMs"`
	NodesExplored     int     `json:"nodesExplored"`
	ExternalCallsMade int     `json:"externalCallsMade"`
	PathsFound        int     `json:"pathsFound"`
	AverageConfidence float64 `json:"averageConfidence"`
}

// Result is the complete outcome of one exploration. It is always
// structurally valid: in the worst case Paths is empty, the graph holds
// zero nodes, and the trace describes what went wrong.
type Result struct {
	ID      string         `json:"id"`
	Request Request        `json:"request"`
	Paths   []Path         `json:"paths"`
	Graph   graph.Snapshot `json:"knowledgeGraph"`
	Trace   []TraceStep    `json:"trace"`
	Metrics Metrics        `json:"performance"`
}
