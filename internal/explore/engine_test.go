package explore

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	creerrors "cre/internal/errors"
	"cre/internal/graph"
	"cre/internal/index"
	"cre/internal/logging"
)

// mockIndex is a scripted code index. Call counters let tests assert how
// many external calls the engine made.
type mockIndex struct {
	searchHits   []index.SearchHit
	searchErr    error
	imports      map[string]*index.ImportTrace
	importsErr   error
	usagesByName map[string][]index.Usage
	usagesErr    error

	searchCalls int
	importCalls int
	usageCalls  int
}

func (m *mockIndex) Name() string    { return "mock" }
func (m *mockIndex) Available() bool { return true }

func (m *mockIndex) Search(ctx context.Context, q index.SearchQuery) ([]index.SearchHit, error) {
	m.searchCalls++
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return append([]index.SearchHit(nil), m.searchHits...), nil
}

func (m *mockIndex) TraceImports(ctx context.Context, q index.ImportQuery) (*index.ImportTrace, error) {
	m.importCalls++
	if m.importsErr != nil {
		return nil, m.importsErr
	}
	if trace, ok := m.imports[q.FilePath]; ok {
		cp := *trace
		return &cp, nil
	}
	return &index.ImportTrace{}, nil
}

func (m *mockIndex) FindUsages(ctx context.Context, q index.UsageQuery) ([]index.Usage, error) {
	m.usageCalls++
	if m.usagesErr != nil {
		return nil, m.usagesErr
	}
	return append([]index.Usage(nil), m.usagesByName[q.Symbol]...), nil
}

// loginScenario is the canonical exploration: one strong seed, one import
// neighbor, one usage neighbor.
func loginScenario() *mockIndex {
	return &mockIndex{
		searchHits: []index.SearchHit{
			{Type: "function", Name: "login", File: "src/auth.ts", Line: 42, Context: "async login(email, password)"},
		},
		imports: map[string]*index.ImportTrace{
			"src/auth.ts": {
				Files: []index.ImportFile{
					{
						File:  "src/auth.ts",
						Depth: 1,
						Imports: []index.ImportStatement{
							{Module: "UserRepository", Line: 3, Symbols: []string{"UserRepository"}},
						},
					},
				},
			},
		},
		usagesByName: map[string][]index.Usage{
			"login": {
				{File: "src/routes/auth.ts", Line: 10, Context: "await userService.login(req.body)", Confidence: 0.6},
			},
		},
	}
}

func newTestEngine(idx index.CodeIndex) *Engine {
	return NewEngine(idx, logging.NewNopLogger(), Options{})
}

const loginGoal = "understand how UserService.login works"

func TestExploreLoginScenario(t *testing.T) {
	mock := loginScenario()
	engine := newTestEngine(mock)

	result, err := engine.Explore(context.Background(), loginGoal, nil)
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}

	if len(result.Graph.Nodes) != 3 {
		t.Fatalf("graph nodes = %d, want 3", len(result.Graph.Nodes))
	}
	if len(result.Graph.Edges) != 2 {
		t.Fatalf("graph edges = %d, want 2", len(result.Graph.Edges))
	}

	// Fixed-at-discovery relevance scores: the focus-symbol match, the
	// goal-related import, and the goal-overlapping usage.
	wantScores := map[string]float64{
		"login":          0.9,
		"UserRepository": 0.7,
	}
	for _, n := range result.Graph.Nodes {
		want, ok := wantScores[n.Name]
		if n.Type == graph.NodeUsage {
			want, ok = 0.8, true
		}
		if !ok {
			t.Errorf("unexpected node %q in graph", n.Name)
			continue
		}
		if math.Abs(n.RelevanceScore-want) > 1e-9 {
			t.Errorf("node %q relevance = %v, want %v", n.Name, n.RelevanceScore, want)
		}
	}

	if len(result.Paths) != 3 {
		t.Fatalf("paths = %d, want 3 (every node seeds a path)", len(result.Paths))
	}

	// The two three-node chains outrank the two-node path that stops at
	// the import.
	top := result.Paths[0]
	if len(top.Nodes) != 3 {
		t.Errorf("top path length = %d, want 3", len(top.Nodes))
	}
	if math.Abs(top.TotalScore-0.8) > 1e-9 {
		t.Errorf("top path TotalScore = %v, want 0.8", top.TotalScore)
	}
	if math.Abs(top.Confidence-0.48) > 1e-9 {
		t.Errorf("top path Confidence = %v, want 0.48 (0.8 x 3 / 5)", top.Confidence)
	}

	foundLoginStart := false
	for _, p := range result.Paths {
		if p.Nodes[0].Name == "login" && p.Nodes[0].Type == graph.NodeFunction {
			foundLoginStart = true
		}
	}
	if !foundLoginStart {
		t.Error("no path starts at the login seed")
	}

	if result.Metrics.NodesExplored != 3 {
		t.Errorf("NodesExplored = %d, want 3", result.Metrics.NodesExplored)
	}
	wantCalls := mock.searchCalls + mock.importCalls + mock.usageCalls
	if result.Metrics.ExternalCallsMade != wantCalls {
		t.Errorf("ExternalCallsMade = %d, want %d (every index call counted)",
			result.Metrics.ExternalCallsMade, wantCalls)
	}
}

func TestExploreResultInvariants(t *testing.T) {
	engine := newTestEngine(loginScenario())

	result, err := engine.Explore(context.Background(), loginGoal, nil)
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}

	threshold := result.Request.Constraints.RelevanceThreshold
	for i, p := range result.Paths {
		if p.TotalScore < threshold {
			t.Errorf("paths[%d].TotalScore = %v, below threshold %v", i, p.TotalScore, threshold)
		}
		if p.Confidence > 0.95 {
			t.Errorf("paths[%d].Confidence = %v, above the 0.95 cap", i, p.Confidence)
		}
		if len(p.Edges) != len(p.Nodes)-1 {
			t.Errorf("paths[%d]: %d edges for %d nodes, want len(nodes)-1", i, len(p.Edges), len(p.Nodes))
		}

		// The reported score must be reconstructible from the nodes.
		sum := 0.0
		for _, n := range p.Nodes {
			sum += n.RelevanceScore
		}
		if mean := sum / float64(len(p.Nodes)); math.Abs(mean-p.TotalScore) > 1e-9 {
			t.Errorf("paths[%d].TotalScore = %v, but node mean is %v", i, p.TotalScore, mean)
		}
	}

	// Ranking order is non-increasing in score x confidence.
	for i := 1; i < len(result.Paths); i++ {
		prev := result.Paths[i-1].TotalScore * result.Paths[i-1].Confidence
		cur := result.Paths[i].TotalScore * result.Paths[i].Confidence
		if cur > prev+1e-9 {
			t.Errorf("paths[%d] outranks paths[%d]: %v > %v", i, i-1, cur, prev)
		}
	}

	if len(result.Trace) == 0 {
		t.Fatal("trace is empty")
	}
	if result.Trace[0].Action != ActionInitialDiscovery {
		t.Errorf("trace starts with %q, want %q", result.Trace[0].Action, ActionInitialDiscovery)
	}
	if last := result.Trace[len(result.Trace)-1]; last.Action != ActionPathRanking {
		t.Errorf("trace ends with %q, want %q", last.Action, ActionPathRanking)
	}
	for i, step := range result.Trace {
		if step.Step != i+1 {
			t.Errorf("trace[%d].Step = %d, want %d", i, step.Step, i+1)
		}
	}
}

func TestExploreMalformedGoal(t *testing.T) {
	mock := loginScenario()
	engine := newTestEngine(mock)

	_, err := engine.Explore(context.Background(), "   ", nil)
	if !creerrors.HasCode(err, creerrors.MalformedQuery) {
		t.Fatalf("Explore() error = %v, want MALFORMED_QUERY", err)
	}
	if mock.searchCalls+mock.importCalls+mock.usageCalls != 0 {
		t.Error("malformed goal reached the code index; validation must happen first")
	}
}

func TestExploreDegradesWhenIndexFails(t *testing.T) {
	boom := errors.New("index exploded")
	engine := newTestEngine(&mockIndex{
		searchErr:  boom,
		importsErr: boom,
		usagesErr:  boom,
	})

	result, err := engine.Explore(context.Background(), loginGoal, nil)
	if err != nil {
		t.Fatalf("Explore() error = %v, want degraded result instead", err)
	}

	if len(result.Graph.Nodes) != 0 || len(result.Paths) != 0 {
		t.Errorf("degraded result has %d nodes, %d paths; want empty", len(result.Graph.Nodes), len(result.Paths))
	}
	if len(result.Trace) == 0 {
		t.Error("degraded result has no trace; the trace must say what happened")
	}
	if result.Trace[0].Confidence != 0.1 {
		t.Errorf("discovery step confidence = %v, want 0.1 for zero seeds", result.Trace[0].Confidence)
	}
}

func TestExplorePartialDegradation(t *testing.T) {
	mock := loginScenario()
	mock.usagesErr = errors.New("usages backend down")
	engine := newTestEngine(mock)

	result, err := engine.Explore(context.Background(), loginGoal, nil)
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}

	// Imports still expand; only the usage neighbor is missing.
	if len(result.Graph.Nodes) != 2 {
		t.Errorf("graph nodes = %d, want 2 (login + import)", len(result.Graph.Nodes))
	}
	if len(result.Paths) == 0 {
		t.Error("no paths despite a usable import expansion")
	}
}

func TestExploreDeterministic(t *testing.T) {
	run := func() *Result {
		result, err := newTestEngine(loginScenario()).Explore(context.Background(), loginGoal, nil)
		if err != nil {
			t.Fatalf("Explore() error = %v", err)
		}
		return result
	}

	a, b := run(), run()

	if len(a.Graph.Nodes) != len(b.Graph.Nodes) {
		t.Fatalf("node counts differ: %d vs %d", len(a.Graph.Nodes), len(b.Graph.Nodes))
	}
	for i := range a.Graph.Nodes {
		if a.Graph.Nodes[i].ID != b.Graph.Nodes[i].ID {
			t.Errorf("node[%d] id differs: %q vs %q", i, a.Graph.Nodes[i].ID, b.Graph.Nodes[i].ID)
		}
	}

	if len(a.Paths) != len(b.Paths) {
		t.Fatalf("path counts differ: %d vs %d", len(a.Paths), len(b.Paths))
	}
	for i := range a.Paths {
		if len(a.Paths[i].Nodes) != len(b.Paths[i].Nodes) {
			t.Fatalf("paths[%d] lengths differ", i)
		}
		for j := range a.Paths[i].Nodes {
			if a.Paths[i].Nodes[j].ID != b.Paths[i].Nodes[j].ID {
				t.Errorf("paths[%d].Nodes[%d] differs: %q vs %q",
					i, j, a.Paths[i].Nodes[j].ID, b.Paths[i].Nodes[j].ID)
			}
		}
	}
}

func TestExploreRespectsNodeBudget(t *testing.T) {
	hits := make([]index.SearchHit, 30)
	for i := range hits {
		hits[i] = index.SearchHit{
			Type: "function",
			Name: fmt.Sprintf("handler%d", i),
			File: "src/handlers.ts",
			Line: i + 1,
		}
	}
	usages := make([]index.Usage, 40)
	for i := range usages {
		usages[i] = index.Usage{File: "src/calls.ts", Line: i + 1, Confidence: 0.5}
	}

	engine := newTestEngine(&mockIndex{
		searchHits:   hits,
		usagesByName: map[string][]index.Usage{"handler0": usages},
	})

	req, err := ParseRequest("handler", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Constraints.MaxNodes = 10

	result, err := engine.ExploreRequest(context.Background(), req)
	if err != nil {
		t.Fatalf("ExploreRequest() error = %v", err)
	}
	if len(result.Graph.Nodes) > 10 {
		t.Errorf("graph nodes = %d, exceeds MaxNodes 10", len(result.Graph.Nodes))
	}
}

func TestExploreHighThresholdFiltersPaths(t *testing.T) {
	engine := newTestEngine(loginScenario())

	req, err := ParseRequest(loginGoal, nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Constraints.RelevanceThreshold = 0.99

	result, err := engine.ExploreRequest(context.Background(), req)
	if err != nil {
		t.Fatalf("ExploreRequest() error = %v", err)
	}
	if len(result.Paths) != 0 {
		t.Errorf("paths = %d, want 0 above a 0.99 threshold", len(result.Paths))
	}
	if len(result.Graph.Nodes) == 0 {
		t.Error("graph is empty; filtering paths must not discard the graph")
	}
}

func TestExploreRecordsHistory(t *testing.T) {
	engine := newTestEngine(loginScenario())

	result, err := engine.Explore(context.Background(), loginGoal, nil)
	if err != nil {
		t.Fatalf("Explore() error = %v", err)
	}

	entries := engine.History().Entries()
	if len(entries) != 1 {
		t.Fatalf("history entries = %d, want 1", len(entries))
	}
	if entries[0].ID != result.ID || entries[0].Query != loginGoal {
		t.Errorf("history entry = %+v, want id %q query %q", entries[0], result.ID, loginGoal)
	}
}

func TestExploreNilRequest(t *testing.T) {
	engine := newTestEngine(loginScenario())
	if _, err := engine.ExploreRequest(context.Background(), nil); !creerrors.HasCode(err, creerrors.MalformedQuery) {
		t.Errorf("ExploreRequest(nil) error = %v, want MALFORMED_QUERY", err)
	}
}
