// Package output renders exploration results for the CLI and writes
// them to files.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	creerrors "cre/internal/errors"
	"cre/internal/explore"
)

// Format selects a result rendering.
type Format string

const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatHuman Format = "human"
)

// ParseFormat validates a format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	case FormatHuman, "":
		return FormatHuman, nil
	default:
		return "", creerrors.New(creerrors.MalformedQuery,
			fmt.Sprintf("unknown output format %q (want json, yaml or human)", s))
	}
}

// Render serializes a result in the requested format.
func Render(result *explore.Result, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(result, "", "  ")
	case FormatYAML:
		return yaml.Marshal(result)
	case FormatHuman:
		return []byte(renderHuman(result)), nil
	default:
		return nil, creerrors.New(creerrors.InternalError,
			fmt.Sprintf("unhandled output format %q", format))
	}
}

// renderHuman produces the terminal summary: ranked paths first, then
// graph and performance counters, then the reasoning trace.
func renderHuman(result *explore.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Exploration %s\n", result.ID)
	fmt.Fprintf(&b, "Goal: %s\n\n", result.Request.PrimaryGoal)

	if len(result.Paths) == 0 {
		b.WriteString("No reasoning paths found.\n")
	}
	for i, path := range result.Paths {
		fmt.Fprintf(&b, "Path %d (score %.2f, confidence %.2f)\n", i+1, path.TotalScore, path.Confidence)
		for j, node := range path.Nodes {
			loc := node.Location.File
			if node.Location.Line > 0 {
				loc = fmt.Sprintf("%s:%d", loc, node.Location.Line)
			}
			fmt.Fprintf(&b, "  %d. [%s] %s (%s, relevance %.2f)\n", j+1, node.Type, node.Name, loc, node.RelevanceScore)
		}
		if path.Reasoning != "" {
			fmt.Fprintf(&b, "  %s\n", path.Reasoning)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Graph: %d nodes, %d edges\n", len(result.Graph.Nodes), len(result.Graph.Edges))
	fmt.Fprintf(&b, "Explored %d nodes in %dms with %d external calls\n",
		result.Metrics.NodesExplored, result.Metrics.ElapsedMs, result.Metrics.ExternalCallsMade)

	if len(result.Trace) > 0 {
		b.WriteString("\nTrace:\n")
		for _, step := range result.Trace {
			fmt.Fprintf(&b, "  %d. %s: %s -> %s (%.2f)\n",
				step.Step, step.Action, step.Reasoning, step.Result, step.Confidence)
		}
	}

	return b.String()
}
