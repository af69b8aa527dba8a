// Package graph provides the in-memory knowledge graph built during a
// single exploration: deduplicated code-entity nodes and typed,
// bidirectionally indexed relationship edges.
package graph

// NodeType represents the kind of code entity a node stands for
type NodeType string

const (
	NodeFile      NodeType = "file"
	NodeFunction  NodeType = "function"
	NodeClass     NodeType = "class"
	NodeInterface NodeType = "interface"
	NodeVariable  NodeType = "variable"
	NodeImport    NodeType = "import"
	NodeUsage     NodeType = "usage"
)

// RelationType represents the kind of relationship between two nodes.
// Direction is meaningful for "imports" and "uses"; "related" is a
// direction-free adjacency used when no typed relationship exists.
type RelationType string

const (
	RelImports    RelationType = "imports"
	RelExports    RelationType = "exports"
	RelCalls      RelationType = "calls"
	RelInherits   RelationType = "inherits"
	RelImplements RelationType = "implements"
	RelUses       RelationType = "uses"
	RelDefines    RelationType = "defines"
	RelRelated    RelationType = "related"
)

// Location is where a code entity lives
type Location struct {
	File string `json:"file"`
	Line int    `json:"line,omitempty"`
}

// Relationship records an edge from one node's perspective
type Relationship struct {
	TargetID string       `json:"targetId"`
	Type     RelationType `json:"relationType"`
	Strength float64      `json:"strength"`
}

// Node represents one discovered code entity. RelevanceScore is fixed at
// creation time by the heuristic that produced the node and is never
// revised within the same exploration.
type Node struct {
	ID             string                 `json:"id"`
	Type           NodeType               `json:"type"`
	Name           string                 `json:"name"`
	Location       Location               `json:"location"`
	Context        string                 `json:"context,omitempty"`
	RelevanceScore float64                `json:"relevanceScore"`
	Relationships  []Relationship         `json:"relationships"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// Edge is a graph-level directed relationship between two nodes
type Edge struct {
	From     string       `json:"from"`
	To       string       `json:"to"`
	Type     RelationType `json:"type"`
	Strength float64      `json:"strength"`
}
