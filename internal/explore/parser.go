package explore

import (
	"strings"

	creerrors "cre/internal/errors"
)

// ParseRequest turns a raw goal string and context hints into a validated
// Request with defaulted constraints and preference flags inferred from
// coarse keyword heuristics. An empty goal is rejected with
// MALFORMED_QUERY before any external call is made.
func ParseRequest(goal string, contextHints []string) (*Request, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, creerrors.New(creerrors.MalformedQuery, "exploration goal is empty")
	}

	req := &Request{
		PrimaryGoal:  goal,
		ContextHints: contextHints,
		Constraints:  DefaultConstraints(),
		Preferences: Preferences{
			IncludeUsages:       true,
			IncludeDependencies: true,
		},
	}

	lower := strings.ToLower(goal)

	// Broad goals get a wider budget.
	if strings.Contains(lower, "find all") || strings.Contains(lower, "everywhere") {
		req.Constraints.MaxNodes = 200
		req.Constraints.MaxDepth = 8
	}

	if strings.Contains(lower, "usage") || strings.Contains(lower, "used") {
		req.Preferences.IncludeUsages = true
	}
	if strings.Contains(lower, "inherit") || strings.Contains(lower, "extend") {
		req.Preferences.IncludeInheritance = true
	}
	if strings.Contains(lower, "import") || strings.Contains(lower, "depend") {
		req.Preferences.IncludeDependencies = true
	}
	if strings.Contains(lower, "recent") || strings.Contains(lower, "latest") {
		req.Preferences.PreferRecent = true
	}

	req.Constraints = req.Constraints.Clamped()
	return req, nil
}

// FocusSymbol extracts the final dotted segment of a goal, the symbol the
// request is most directly about. "UserService.login" -> "login".
func FocusSymbol(goal string) string {
	goal = strings.TrimSpace(goal)
	fields := strings.Fields(goal)
	if len(fields) == 0 {
		return goal
	}
	// Prefer the first field that looks like an identifier path.
	candidate := fields[0]
	for _, f := range fields {
		if strings.Contains(f, ".") || strings.Contains(f, "::") {
			candidate = f
			break
		}
	}
	candidate = strings.TrimRight(candidate, ".:(),;")
	if idx := strings.LastIndexAny(candidate, ".:"); idx >= 0 && idx < len(candidate)-1 {
		return candidate[idx+1:]
	}
	return candidate
}
