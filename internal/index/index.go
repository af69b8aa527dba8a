// Package index defines the boundary to the external code-index
// collaborator. The engine only ever talks to a CodeIndex; concrete
// backends (tool-server bridge, SCIP index, tree-sitter scan) live in
// subpackages.
package index

import (
	"context"
)

// CodeIndex is the abstract code-index collaborator. All three operations
// are bounded by their query parameters; implementations must respect
// ctx cancellation since the scheduler's time budget is enforced between
// calls, not inside them.
type CodeIndex interface {
	// Name identifies the backend for logs and traces
	Name() string

	// Available reports whether the backend can currently serve queries
	Available() bool

	// Search finds code entities matching a free-text query
	Search(ctx context.Context, q SearchQuery) ([]SearchHit, error)

	// TraceImports follows the import chain out of a file
	TraceImports(ctx context.Context, q ImportQuery) (*ImportTrace, error)

	// FindUsages locates places where a symbol is used
	FindUsages(ctx context.Context, q UsageQuery) ([]Usage, error)
}

// SearchQuery bounds a search call
type SearchQuery struct {
	Query          string `json:"query"`
	MaxResults     int    `json:"maxResults"`
	IncludeContext bool   `json:"includeContext"`
}

// SearchHit is one entity returned by Search
type SearchHit struct {
	Type      string `json:"type"` // file|function|class|interface|variable
	Name      string `json:"name"`
	File      string `json:"file"`
	Line      int    `json:"line,omitempty"`
	Context   string `json:"context,omitempty"`
	Signature string `json:"signature,omitempty"`
}

// ImportQuery bounds an import-trace call
type ImportQuery struct {
	FilePath string `json:"filePath"`
	Symbol   string `json:"symbol,omitempty"`
	MaxDepth int    `json:"maxDepth"`
}

// ImportStatement is a single import found in a file
type ImportStatement struct {
	Module  string   `json:"module"`
	Line    int      `json:"line,omitempty"`
	Symbols []string `json:"symbols,omitempty"`
}

// ImportFile is one file in an import chain
type ImportFile struct {
	File    string            `json:"file"`
	Depth   int               `json:"depth"`
	Imports []ImportStatement `json:"imports"`
}

// ImportTrace is the result of TraceImports
type ImportTrace struct {
	Files []ImportFile `json:"files"`
}

// UsageQuery bounds a usage-find call
type UsageQuery struct {
	Symbol             string `json:"symbol"`
	SymbolType         string `json:"symbolType,omitempty"`
	IncludeDefinitions bool   `json:"includeDefinitions"`
}

// Usage is one place a symbol is used
type Usage struct {
	File       string  `json:"file"`
	Line       int     `json:"line"`
	Context    string  `json:"usageContext,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}
