// Package scipindex implements the code-index collaborator on top of a
// SCIP index file, so repositories with an existing index can be explored
// without any external tool server.
package scipindex

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	creerrors "cre/internal/errors"
	"cre/internal/index"
	"cre/internal/logging"
)

// usageConfidence is reported for index-backed usages; a compiler-grade
// index is more trustworthy than a lexical scan but the occurrence may
// still be stale relative to the working tree.
const usageConfidence = 0.9

type symbolEntry struct {
	name string
	kind string
	file string
	line int
	doc  string
}

type occurrenceEntry struct {
	file         string
	line         int
	isDefinition bool
}

// Index is a CodeIndex backed by a loaded SCIP index.
type Index struct {
	path   string
	root   string
	logger *logging.Logger

	symbols       []symbolEntry
	occurrences   map[string][]occurrenceEntry // lowercased name -> occurrences
	importsByFile map[string][]index.ImportStatement
	fileByModule  map[string]string
}

// Open loads a SCIP index from path. root is the repository root used to
// resolve context snippets; it may be empty.
func Open(path, root string, logger *logging.Logger) (*Index, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, creerrors.Wrap(creerrors.IndexMissing,
			fmt.Sprintf("SCIP index not found at %s", path), err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, creerrors.Wrap(creerrors.InternalError,
			fmt.Sprintf("failed to read SCIP index from %s", path), err)
	}

	var raw scippb.Index
	if err := proto.Unmarshal(data, &raw); err != nil {
		return nil, creerrors.Wrap(creerrors.InternalError,
			fmt.Sprintf("failed to parse SCIP index from %s", path), err)
	}

	idx := &Index{
		path:          path,
		root:          root,
		logger:        logger.With("scipindex"),
		occurrences:   make(map[string][]occurrenceEntry),
		importsByFile: make(map[string][]index.ImportStatement),
		fileByModule:  make(map[string]string),
	}
	idx.build(&raw)

	idx.logger.Debug("SCIP index loaded", logging.Fields{
		"path":    path,
		"symbols": len(idx.symbols),
	})
	return idx, nil
}

// build flattens the protobuf index into lookup tables.
func (i *Index) build(raw *scippb.Index) {
	info := make(map[string]*scippb.SymbolInformation)
	for _, doc := range raw.Documents {
		for _, sym := range doc.Symbols {
			info[sym.Symbol] = sym
		}
	}

	for _, doc := range raw.Documents {
		if module := moduleOf(doc); module != "" {
			if _, ok := i.fileByModule[module]; !ok {
				i.fileByModule[module] = doc.RelativePath
			}
		}

		for _, occ := range doc.Occurrences {
			if len(occ.Range) == 0 {
				continue
			}
			line := int(occ.Range[0]) + 1 // SCIP lines are 0-indexed

			name := displayName(occ.Symbol, info[occ.Symbol])
			if name == "" {
				continue
			}

			isDef := occ.SymbolRoles&int32(scippb.SymbolRole_Definition) != 0
			i.occurrences[strings.ToLower(name)] = append(i.occurrences[strings.ToLower(name)], occurrenceEntry{
				file:         doc.RelativePath,
				line:         line,
				isDefinition: isDef,
			})

			if isDef {
				i.symbols = append(i.symbols, symbolEntry{
					name: name,
					kind: kindOf(info[occ.Symbol]),
					file: doc.RelativePath,
					line: line,
					doc:  firstDoc(info[occ.Symbol]),
				})
			}

			if occ.SymbolRoles&int32(scippb.SymbolRole_Import) != 0 {
				module := packageOf(occ.Symbol)
				if module != "" {
					i.importsByFile[doc.RelativePath] = append(i.importsByFile[doc.RelativePath], index.ImportStatement{
						Module:  module,
						Line:    line,
						Symbols: []string{name},
					})
				}
			}
		}
	}
}

// Name identifies the backend.
func (i *Index) Name() string {
	return "scip:" + filepath.Base(i.path)
}

// Available reports whether the index loaded any symbols.
func (i *Index) Available() bool {
	return len(i.symbols) > 0
}

// Search implements index.CodeIndex with case-insensitive substring
// matching over definition names.
func (i *Index) Search(ctx context.Context, q index.SearchQuery) ([]index.SearchHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(q.Query))
	var hits []index.SearchHit
	for _, sym := range i.symbols {
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
			hit.Context = sym.doc
			if hit.Context == "" {
				hit.Context = i.sourceLine(sym.file, sym.line)
			}
		}
		hits = append(hits, hit)
	}
	return index.CleanSearchHits(hits), nil
}

// TraceImports implements index.CodeIndex by following recorded import
// occurrences file-to-file up to MaxDepth.
func (i *Index) TraceImports(ctx context.Context, q index.ImportQuery) (*index.ImportTrace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trace := &index.ImportTrace{}
	visited := map[string]bool{}
	frontier := []string{q.FilePath}

	for depth := 1; depth <= q.MaxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, file := range frontier {
			if visited[file] {
				continue
			}
			visited[file] = true

			imports := i.importsByFile[file]
			if len(imports) == 0 {
				continue
			}
			trace.Files = append(trace.Files, index.ImportFile{
				File:    file,
				Depth:   depth,
				Imports: imports,
			})

			for _, imp := range imports {
				if target, ok := i.fileByModule[imp.Module]; ok && !visited[target] {
					next = append(next, target)
				}
			}
		}
		frontier = next
	}

	return index.CleanImportTrace(trace), nil
}

// FindUsages implements index.CodeIndex over recorded occurrences.
func (i *Index) FindUsages(ctx context.Context, q index.UsageQuery) ([]index.Usage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var usages []index.Usage
	for _, occ := range i.occurrences[strings.ToLower(q.Symbol)] {
		if occ.isDefinition && !q.IncludeDefinitions {
			continue
		}
		usages = append(usages, index.Usage{
			File:       occ.file,
			Line:       occ.line,
			Context:    i.sourceLine(occ.file, occ.line),
			Confidence: usageConfidence,
		})
	}
	return index.CleanUsages(usages), nil
}

// sourceLine reads one line of a source file under the repo root,
// best-effort. Missing files simply yield no context.
func (i *Index) sourceLine(relPath string, line int) string {
	if i.root == "" || line <= 0 {
		return ""
	}

	f, err := os.Open(filepath.Join(i.root, relPath))
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for n := 1; scanner.Scan(); n++ {
		if n == line {
			return strings.TrimSpace(scanner.Text())
		}
	}
	return ""
}

// displayName prefers the index-provided display name and falls back to
// parsing the trailing descriptor of the SCIP symbol string.
func displayName(symbol string, info *scippb.SymbolInformation) string {
	if info != nil && info.DisplayName != "" {
		return info.DisplayName
	}
	return lastDescriptor(symbol)
}

// lastDescriptor extracts the final descriptor name from a SCIP symbol,
// e.g. "... `pkg/auth`/UserService#login()." -> "login".
func lastDescriptor(symbol string) string {
	s := strings.TrimRight(symbol, "().#/:!")
	if idx := strings.LastIndexAny(s, "#/."); idx >= 0 && idx < len(s)-1 {
		s = s[idx+1:]
	} else if idx := strings.LastIndex(s, " "); idx >= 0 {
		s = s[idx+1:]
	}
	return strings.Trim(s, "`")
}

// packageOf extracts the package name field from a SCIP symbol string.
// Format: "<scheme> <manager> <package-name> <version> <descriptors>".
func packageOf(symbol string) string {
	fields := strings.SplitN(symbol, " ", 5)
	if len(fields) < 3 || fields[2] == "." {
		return ""
	}
	return fields[2]
}

// moduleOf derives a module key for a document from its first definition.
func moduleOf(doc *scippb.Document) string {
	for _, occ := range doc.Occurrences {
		if occ.SymbolRoles&int32(scippb.SymbolRole_Definition) != 0 {
			if pkg := packageOf(occ.Symbol); pkg != "" {
				return pkg
			}
		}
	}
	return ""
}

// kindOf maps a SCIP symbol kind onto the collaborator's entity types.
func kindOf(info *scippb.SymbolInformation) string {
	if info == nil {
		return "function"
	}
	switch info.Kind {
	case scippb.SymbolInformation_Class, scippb.SymbolInformation_Struct:
		return "class"
	case scippb.SymbolInformation_Interface, scippb.SymbolInformation_Trait:
		return "interface"
	case scippb.SymbolInformation_Variable, scippb.SymbolInformation_Constant, scippb.SymbolInformation_Field, scippb.SymbolInformation_Property:
		return "variable"
	case scippb.SymbolInformation_File, scippb.SymbolInformation_Module, scippb.SymbolInformation_Package, scippb.SymbolInformation_Namespace:
		return "file"
	default:
		return "function"
	}
}

// firstDoc returns the first documentation line for a symbol.
func firstDoc(info *scippb.SymbolInformation) string {
	if info == nil || len(info.Documentation) == 0 {
		return ""
	}
	line := strings.TrimSpace(info.Documentation[0])
	if idx := strings.IndexByte(line, '\n'); idx > 0 {
		line = line[:idx]
	}
	return line
}
