package treesitter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cre/internal/index"
	"cre/internal/logging"
)

// preloaded returns a scanner whose scan tables are set directly, so the
// tests run the same with or without parser support compiled in.
func preloaded(root string, files []string, symbols []symbolRecord, imports map[string][]importRecord) *Scanner {
	s := NewScanner(root, 0, logging.NewNopLogger())
	s.once.Do(func() {})
	s.files = files
	s.symbols = symbols
	if imports != nil {
		s.imports = imports
	}
	return s
}

func TestSupportedExt(t *testing.T) {
	tests := []struct {
		ext  string
		want bool
	}{
		{".go", true},
		{".ts", true},
		{".tsx", true},
		{".py", true},
		{".rb", false},
		{".md", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := supportedExt(tt.ext); got != tt.want {
			t.Errorf("supportedExt(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}

func TestResolveModule(t *testing.T) {
	s := preloaded("/src", []string{
		"src/app.ts",
		"src/lib/util.ts",
		"pkg/store.go",
	}, nil, nil)

	tests := []struct {
		from   string
		module string
		want   string
	}{
		{"src/app.ts", "./lib/util", "src/lib/util.ts"},
		{"src/app.ts", "lib/util", "src/lib/util.ts"},
		{"src/app.ts", "pkg/store", "pkg/store.go"},
		{"src/app.ts", "./missing", ""},
		{"src/app.ts", "left-pad", ""},
	}
	for _, tt := range tests {
		if got := s.resolveModule(tt.from, tt.module); got != tt.want {
			t.Errorf("resolveModule(%q, %q) = %q, want %q", tt.from, tt.module, got, tt.want)
		}
	}
}

func TestSearchOverPreloadedSymbols(t *testing.T) {
	s := preloaded("/src", nil, []symbolRecord{
		{name: "loginUser", kind: "function", file: "auth.ts", line: 10, signature: "function loginUser(email)"},
		{name: "Logger", kind: "class", file: "log.ts", line: 3},
		{name: "unrelated", kind: "function", file: "x.ts", line: 1},
	}, nil)

	hits, err := s.Search(context.Background(), index.SearchQuery{
		Query:          "login",
		MaxResults:     10,
		IncludeContext: true,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("len(hits) = %d, want 1", len(hits))
	}
	if hits[0].Name != "loginUser" || hits[0].Context != "function loginUser(email)" {
		t.Errorf("hit = %+v, want loginUser with its signature as context", hits[0])
	}
}

func TestSearchRespectsMaxResults(t *testing.T) {
	s := preloaded("/src", nil, []symbolRecord{
		{name: "handlerA", kind: "function", file: "a.ts", line: 1},
		{name: "handlerB", kind: "function", file: "b.ts", line: 1},
		{name: "handlerC", kind: "function", file: "c.ts", line: 1},
	}, nil)

	hits, err := s.Search(context.Background(), index.SearchQuery{Query: "handler", MaxResults: 2})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("len(hits) = %d, want 2", len(hits))
	}
}

func TestTraceImportsFollowsChain(t *testing.T) {
	s := preloaded("/src", []string{"src/app.ts", "src/lib/util.ts"}, nil, map[string][]importRecord{
		"src/app.ts":      {{module: "./lib/util", line: 1}},
		"src/lib/util.ts": {{module: "left-pad", line: 2}},
	})

	trace, err := s.TraceImports(context.Background(), index.ImportQuery{
		FilePath: "src/app.ts",
		MaxDepth: 3,
	})
	if err != nil {
		t.Fatalf("TraceImports() error = %v", err)
	}

	if len(trace.Files) != 2 {
		t.Fatalf("len(trace.Files) = %d, want 2", len(trace.Files))
	}
	if trace.Files[0].File != "src/app.ts" || trace.Files[0].Depth != 1 {
		t.Errorf("Files[0] = %+v, want src/app.ts at depth 1", trace.Files[0])
	}
	if trace.Files[1].File != "src/lib/util.ts" || trace.Files[1].Depth != 2 {
		t.Errorf("Files[1] = %+v, want src/lib/util.ts at depth 2", trace.Files[1])
	}
}

func TestTraceImportsDepthLimit(t *testing.T) {
	s := preloaded("/src", []string{"a.ts", "b.ts", "c.ts"}, nil, map[string][]importRecord{
		"a.ts": {{module: "b", line: 1}},
		"b.ts": {{module: "c", line: 1}},
		"c.ts": {{module: "a", line: 1}},
	})

	trace, err := s.TraceImports(context.Background(), index.ImportQuery{FilePath: "a.ts", MaxDepth: 2})
	if err != nil {
		t.Fatalf("TraceImports() error = %v", err)
	}
	if len(trace.Files) != 2 {
		t.Errorf("len(trace.Files) = %d, want 2 (depth capped)", len(trace.Files))
	}
}

func TestFindUsagesLexical(t *testing.T) {
	root := t.TempDir()
	source := "func login() {}\n" +
		"func handler() {\n" +
		"\tlogin()\n" +
		"}\n"
	if err := os.WriteFile(filepath.Join(root, "main.go"), []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}

	s := preloaded(root, []string{"main.go"}, []symbolRecord{
		{name: "login", kind: "function", file: "main.go", line: 1},
	}, nil)

	usages, err := s.FindUsages(context.Background(), index.UsageQuery{Symbol: "login"})
	if err != nil {
		t.Fatalf("FindUsages() error = %v", err)
	}
	// Line 1 is the definition and stays excluded by default.
	if len(usages) != 1 {
		t.Fatalf("len(usages) = %d, want 1", len(usages))
	}
	if usages[0].Line != 3 || usages[0].Context != "login()" {
		t.Errorf("usage = %+v, want line 3 with trimmed context", usages[0])
	}
	if usages[0].Confidence != usageConfidence {
		t.Errorf("confidence = %v, want %v", usages[0].Confidence, usageConfidence)
	}

	withDefs, err := s.FindUsages(context.Background(), index.UsageQuery{Symbol: "login", IncludeDefinitions: true})
	if err != nil {
		t.Fatalf("FindUsages() error = %v", err)
	}
	if len(withDefs) != 2 {
		t.Errorf("len(withDefs) = %d, want 2", len(withDefs))
	}
}
