// Package treesitter implements the code-index collaborator as a local
// source scan. It is the backend of last resort: no tool server, no
// prebuilt index, just parsing whatever source sits under the root.
package treesitter

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cre/internal/index"
	"cre/internal/logging"
)

// DefaultMaxFiles bounds how many source files one scan will parse.
const DefaultMaxFiles = 2000

// usageConfidence reflects that lexical matches are only a weak signal.
const usageConfidence = 0.6

type symbolRecord struct {
	name      string
	kind      string
	file      string
	line      int
	signature string
}

type importRecord struct {
	module string
	line   int
}

// Scanner is a CodeIndex that lazily parses the source tree under root.
// The scan runs once, on first use, and its tables serve every later call.
type Scanner struct {
	root     string
	maxFiles int
	logger   *logging.Logger

	once    sync.Once
	symbols []symbolRecord
	imports map[string][]importRecord
	files   []string
}

// NewScanner creates a scanner rooted at the given directory. maxFiles
// of zero or less means DefaultMaxFiles.
func NewScanner(root string, maxFiles int, logger *logging.Logger) *Scanner {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	return &Scanner{
		root:     root,
		maxFiles: maxFiles,
		logger:   logger.With("treesitter"),
		imports:  make(map[string][]importRecord),
	}
}

// Name identifies the backend.
func (s *Scanner) Name() string {
	return "treesitter:" + filepath.Base(s.root)
}

// Available reports whether parser support was compiled in.
func (s *Scanner) Available() bool {
	return parserAvailable()
}

// load walks the tree once and fills the symbol and import tables.
func (s *Scanner) load(ctx context.Context) {
	s.once.Do(func() {
		parsed := 0
		err := filepath.Walk(s.root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				name := info.Name()
				if strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor" || name == "__pycache__" {
					return filepath.SkipDir
				}
				return nil
			}
			if parsed >= s.maxFiles {
				return filepath.SkipAll
			}
			if !supportedExt(strings.ToLower(filepath.Ext(path))) {
				return nil
			}

			rel, relErr := filepath.Rel(s.root, path)
			if relErr != nil {
				return nil
			}
			rel = filepath.ToSlash(rel)

			source, readErr := os.ReadFile(path)
			if readErr != nil {
				return nil
			}

			syms, imps, parseErr := extractFile(ctx, rel, source)
			if parseErr != nil {
				s.logger.Debug("Skipping unparseable file", logging.Fields{
					"file":  rel,
					"error": parseErr.Error(),
				})
				return nil
			}

			s.symbols = append(s.symbols, syms...)
			if len(imps) > 0 {
				s.imports[rel] = imps
			}
			s.files = append(s.files, rel)
			parsed++
			return nil
		})
		if err != nil {
			s.logger.Warn("Source scan aborted", logging.Fields{"error": err.Error()})
		}

		s.logger.Debug("Source scan complete", logging.Fields{
			"files":   len(s.files),
			"symbols": len(s.symbols),
		})
	})
}

// Search implements index.CodeIndex with case-insensitive substring
// matching over extracted symbol names.
func (s *Scanner) Search(ctx context.Context, q index.SearchQuery) ([]index.SearchHit, error) {
	s.load(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(q.Query))
	var hits []index.SearchHit
	for _, sym := range s.symbols {
		if q.MaxResults > 0 && len(hits) >= q.MaxResults {
			break
		}
		name := strings.ToLower(sym.name)
		if !strings.Contains(name, query) && !strings.Contains(query, name) {
			continue
		}

		hit := index.SearchHit{
			Type: sym.kind,
			Name: sym.name,
			File: sym.file,
			Line: sym.line,
		}
		if q.IncludeContext {
			hit.Context = sym.signature
		}
		hits = append(hits, hit)
	}
	return index.CleanSearchHits(hits), nil
}

// TraceImports implements index.CodeIndex over the per-file import tables.
func (s *Scanner) TraceImports(ctx context.Context, q index.ImportQuery) (*index.ImportTrace, error) {
	s.load(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trace := &index.ImportTrace{}
	visited := map[string]bool{}
	frontier := []string{filepath.ToSlash(q.FilePath)}

	for depth := 1; depth <= q.MaxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, file := range frontier {
			if visited[file] {
				continue
			}
			visited[file] = true

			imports := s.imports[file]
			if len(imports) == 0 {
				continue
			}

			out := index.ImportFile{File: file, Depth: depth}
			for _, imp := range imports {
				out.Imports = append(out.Imports, index.ImportStatement{
					Module: imp.module,
					Line:   imp.line,
				})
				if target := s.resolveModule(file, imp.module); target != "" && !visited[target] {
					next = append(next, target)
				}
			}
			trace.Files = append(trace.Files, out)
		}
		frontier = next
	}

	return index.CleanImportTrace(trace), nil
}

// FindUsages implements index.CodeIndex as a lexical scan of parsed files.
func (s *Scanner) FindUsages(ctx context.Context, q index.UsageQuery) ([]index.Usage, error) {
	s.load(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	symbol := strings.TrimSpace(q.Symbol)
	if symbol == "" {
		return nil, nil
	}

	defLines := map[string]map[int]bool{}
	for _, sym := range s.symbols {
		if sym.name != symbol {
			continue
		}
		if defLines[sym.file] == nil {
			defLines[sym.file] = map[int]bool{}
		}
		defLines[sym.file][sym.line] = true
	}

	var usages []index.Usage
	for _, file := range s.files {
		f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(file)))
		if err != nil {
			continue
		}

		scanner := bufio.NewScanner(f)
		for line := 1; scanner.Scan(); line++ {
			text := scanner.Text()
			if !strings.Contains(text, symbol) {
				continue
			}
			if defLines[file][line] && !q.IncludeDefinitions {
				continue
			}
			usages = append(usages, index.Usage{
				File:       file,
				Line:       line,
				Context:    strings.TrimSpace(text),
				Confidence: usageConfidence,
			})
		}
		_ = f.Close()
	}
	return index.CleanUsages(usages), nil
}

// resolveModule maps an import module string onto a scanned file path,
// best-effort. Relative specifiers resolve against the importing file;
// everything else matches by path suffix.
func (s *Scanner) resolveModule(fromFile, module string) string {
	candidates := []string{module}
	if strings.HasPrefix(module, ".") {
		base := filepath.ToSlash(filepath.Join(filepath.Dir(fromFile), module))
		candidates = []string{base}
	}

	exts := []string{"", ".go", ".ts", ".tsx", ".js", ".py", "/index.ts", "/index.js"}
	for _, cand := range candidates {
		for _, ext := range exts {
			want := cand + ext
			for _, file := range s.files {
				if file == want || strings.HasSuffix(file, "/"+want) {
					return file
				}
			}
		}
	}
	return ""
}

// supportedExt reports whether a file extension has a grammar.
func supportedExt(ext string) bool {
	switch ext {
	case ".go", ".js", ".jsx", ".ts", ".tsx", ".py":
		return true
	default:
		return false
	}
}
