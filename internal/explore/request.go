// Package explore implements the multi-hop code-reasoning engine: budgeted
// knowledge-graph construction over an external code index, explanation
// path search, ranking, and a self-documenting reasoning trace.
package explore

// Valid ranges for exploration constraints. Values outside a range are
// clamped onto its edge before any exploration work starts.
const (
	MinDepth = 1
	MaxDepth = 10

	MinNodes = 10
	MaxNodes = 1000

	MinTimeLimitMs = 1000
	MaxTimeLimitMs = 300000
)

// Default constraint values applied by the query parser.
const (
	DefaultMaxDepth           = 5
	DefaultMaxNodes           = 100
	DefaultRelevanceThreshold = 0.3
	DefaultTimeLimitMs        = 30000
)

// Constraints bound how much work one exploration may perform.
type Constraints struct {
	MaxDepth           int     `json:"maxDepth"`
	MaxNodes           int     `json:"maxNodes"`
	RelevanceThreshold float64 `json:"relevanceThreshold"`
	TimeLimitMs        int     `json:"timeLimitMs"`
}

// DefaultConstraints returns the parser defaults.
func DefaultConstraints() Constraints {
	return Constraints{
		MaxDepth:           DefaultMaxDepth,
		MaxNodes:           DefaultMaxNodes,
		RelevanceThreshold: DefaultRelevanceThreshold,
		TimeLimitMs:        DefaultTimeLimitMs,
	}
}

// Clamped returns a copy with every field forced into its valid range.
func (c Constraints) Clamped() Constraints {
	c.MaxDepth = clampInt(c.MaxDepth, MinDepth, MaxDepth)
	c.MaxNodes = clampInt(c.MaxNodes, MinNodes, MaxNodes)
	c.TimeLimitMs = clampInt(c.TimeLimitMs, MinTimeLimitMs, MaxTimeLimitMs)
	if c.RelevanceThreshold < 0 {
		c.RelevanceThreshold = 0
	}
	if c.RelevanceThreshold > 1 {
		c.RelevanceThreshold = 1
	}
	return c
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Preferences steer which relationship types the expander follows.
type Preferences struct {
	IncludeUsages       bool `json:"includeUsages"`
	IncludeDependencies bool `json:"includeDependencies"`
	IncludeInheritance  bool `json:"includeInheritance"`
	PreferRecent        bool `json:"preferRecent"`
}

// Request is a validated exploration request.
type Request struct {
	PrimaryGoal  string      `json:"primaryGoal"`
	ContextHints []string    `json:"contextHints,omitempty"`
	Constraints  Constraints `json:"constraints"`
	Preferences  Preferences `json:"preferences"`
}
