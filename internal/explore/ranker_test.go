package explore

import (
	"testing"

	"cre/internal/graph"
)

func pathWith(name string, totalScore, confidence float64) Path {
	return Path{
		Nodes:      []graph.Node{{ID: name, Name: name}},
		Edges:      []graph.Edge{},
		TotalScore: totalScore,
		Confidence: confidence,
	}
}

func TestRankPathsFiltersBelowThreshold(t *testing.T) {
	paths := []Path{
		pathWith("keep", 0.8, 0.5),
		pathWith("drop", 0.2, 0.9),
		pathWith("edge", 0.3, 0.1),
	}

	ranked := RankPaths(paths, 0.3)
	if len(ranked) != 2 {
		t.Fatalf("len(ranked) = %d, want 2", len(ranked))
	}
	for _, p := range ranked {
		if p.TotalScore < 0.3 {
			t.Errorf("path %q scored %v, below threshold", p.Nodes[0].Name, p.TotalScore)
		}
	}
}

func TestRankPathsOrdering(t *testing.T) {
	paths := []Path{
		pathWith("low", 0.5, 0.4),    // 0.20
		pathWith("high", 0.9, 0.9),   // 0.81
		pathWith("middle", 0.8, 0.5), // 0.40
	}

	ranked := RankPaths(paths, 0)
	want := []string{"high", "middle", "low"}
	for i, name := range want {
		if ranked[i].Nodes[0].Name != name {
			t.Errorf("ranked[%d] = %q, want %q", i, ranked[i].Nodes[0].Name, name)
		}
	}
}

func TestRankPathsStableOnTies(t *testing.T) {
	paths := []Path{
		pathWith("first", 0.6, 0.5),
		pathWith("second", 0.6, 0.5),
		pathWith("third", 0.6, 0.5),
	}

	ranked := RankPaths(paths, 0)
	want := []string{"first", "second", "third"}
	for i, name := range want {
		if ranked[i].Nodes[0].Name != name {
			t.Errorf("ranked[%d] = %q, want %q (construction order on ties)", i, ranked[i].Nodes[0].Name, name)
		}
	}
}

func TestRankPathsTruncatesToTen(t *testing.T) {
	var paths []Path
	for i := 0; i < 25; i++ {
		paths = append(paths, pathWith("p", 0.5, 0.5))
	}

	ranked := RankPaths(paths, 0)
	if len(ranked) != maxRankedPaths {
		t.Errorf("len(ranked) = %d, want %d", len(ranked), maxRankedPaths)
	}
}

func TestRankPathsEmpty(t *testing.T) {
	ranked := RankPaths(nil, 0.3)
	if len(ranked) != 0 {
		t.Errorf("len(ranked) = %d, want 0", len(ranked))
	}
}
