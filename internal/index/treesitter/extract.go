//go:build cgo

package treesitter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

func parserAvailable() bool {
	return true
}

// extractFile parses one source file and returns its symbol definitions
// and import statements.
func extractFile(ctx context.Context, relPath string, source []byte) ([]symbolRecord, []importRecord, error) {
	ext := strings.ToLower(filepath.Ext(relPath))
	lang := languageFor(ext)
	if lang == nil {
		return nil, nil, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", relPath, err)
	}
	root := tree.RootNode()

	var symbols []symbolRecord
	var imports []importRecord

	walk(root, func(node *sitter.Node) {
		switch node.Type() {
		case "function_declaration", "method_declaration", "function_definition", "method_definition":
			if name := fieldText(node, "name", source); name != "" {
				kind := "function"
				if node.Type() == "method_declaration" || node.Type() == "method_definition" {
					kind = "method"
				}
				symbols = append(symbols, record(name, kind, relPath, node, source))
			}

		case "class_declaration", "class_definition":
			if name := fieldText(node, "name", source); name != "" {
				symbols = append(symbols, record(name, "class", relPath, node, source))
			}

		case "interface_declaration":
			if name := fieldText(node, "name", source); name != "" {
				symbols = append(symbols, record(name, "interface", relPath, node, source))
			}

		case "type_declaration":
			// Go wraps the name one level down in a type_spec.
			for i := 0; i < int(node.ChildCount()); i++ {
				child := node.Child(i)
				if child != nil && child.Type() == "type_spec" {
					if name := fieldText(child, "name", source); name != "" {
						symbols = append(symbols, record(name, "type", relPath, node, source))
					}
				}
			}

		case "import_spec":
			if module := trimQuotes(fieldText(node, "path", source)); module != "" {
				imports = append(imports, importRecord{module: module, line: lineOf(node)})
			}

		case "import_statement":
			if module := trimQuotes(fieldText(node, "source", source)); module != "" {
				// JS/TS import with a source string.
				imports = append(imports, importRecord{module: module, line: lineOf(node)})
			} else if module := firstChildText(node, "dotted_name", source); module != "" {
				// Python plain import.
				imports = append(imports, importRecord{module: module, line: lineOf(node)})
			}

		case "import_from_statement":
			if module := fieldText(node, "module_name", source); module != "" {
				imports = append(imports, importRecord{module: module, line: lineOf(node)})
			}
		}
	})

	return symbols, imports, nil
}

func languageFor(ext string) *sitter.Language {
	switch ext {
	case ".go":
		return golang.GetLanguage()
	case ".js", ".jsx":
		return javascript.GetLanguage()
	case ".ts":
		return typescript.GetLanguage()
	case ".tsx":
		return tsx.GetLanguage()
	case ".py":
		return python.GetLanguage()
	default:
		return nil
	}
}

func walk(node *sitter.Node, visit func(*sitter.Node)) {
	if node == nil {
		return
	}
	visit(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), visit)
	}
}

func record(name, kind, relPath string, node *sitter.Node, source []byte) symbolRecord {
	return symbolRecord{
		name:      name,
		kind:      kind,
		file:      relPath,
		line:      lineOf(node),
		signature: firstLine(node, source),
	}
}

func fieldText(node *sitter.Node, field string, source []byte) string {
	child := node.ChildByFieldName(field)
	if child == nil {
		return ""
	}
	return string(source[child.StartByte():child.EndByte()])
}

func firstChildText(node *sitter.Node, childType string, source []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Type() == childType {
			return string(source[child.StartByte():child.EndByte()])
		}
	}
	return ""
}

func lineOf(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// firstLine trims a declaration down to its opening line.
func firstLine(node *sitter.Node, source []byte) string {
	text := source[node.StartByte():node.EndByte()]
	for i, b := range text {
		if b == '\n' || b == '{' {
			return strings.TrimSpace(string(text[:i]))
		}
	}
	if len(text) > 200 {
		text = text[:200]
	}
	return strings.TrimSpace(string(text))
}

func trimQuotes(s string) string {
	return strings.Trim(s, "\"'`")
}
