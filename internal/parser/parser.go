// Package parser wraps tree-sitter for the languages the analysis core
// understands. It answers three questions: does this snippet parse, which
// imports does a file declare, and where do its functions live.
package parser

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// langSpec ties a language name to its grammar and the node types that
// represent functions and imports in that grammar.
type langSpec struct {
	grammar     *sitter.Language
	funcTypes   []string
	importTypes []string
}

// registry maps catalog language names to grammar metadata.
var registry = map[string]langSpec{
	"go": {
		grammar:     golang.GetLanguage(),
		funcTypes:   []string{"function_declaration", "method_declaration"},
		importTypes: []string{"import_declaration"},
	},
	"python": {
		grammar:     python.GetLanguage(),
		funcTypes:   []string{"function_definition"},
		importTypes: []string{"import_statement", "import_from_statement"},
	},
	"javascript": {
		grammar:     javascript.GetLanguage(),
		funcTypes:   []string{"function_declaration", "method_definition", "arrow_function"},
		importTypes: []string{"import_statement"},
	},
	"typescript": {
		grammar:     typescript.GetLanguage(),
		funcTypes:   []string{"function_declaration", "method_definition", "arrow_function"},
		importTypes: []string{"import_statement"},
	},
	"tsx": {
		grammar:     tsx.GetLanguage(),
		funcTypes:   []string{"function_declaration", "method_definition", "arrow_function"},
		importTypes: []string{"import_statement"},
	},
	"java": {
		grammar:     java.GetLanguage(),
		funcTypes:   []string{"method_declaration", "constructor_declaration"},
		importTypes: []string{"import_declaration"},
	},
	"ruby": {
		grammar:     ruby.GetLanguage(),
		funcTypes:   []string{"method"},
		importTypes: []string{"call"},
	},
}

// Supported reports whether the language has a registered grammar.
func Supported(language string) bool {
	_, ok := registry[language]
	return ok
}

// FunctionSpan is a function definition's location in a file, 1-based
// inclusive lines.
type FunctionSpan struct {
	Name      string
	StartLine int
	EndLine   int
}

// Parser wraps a tree-sitter parser. Not safe for concurrent use; create
// one per goroutine.
type Parser struct {
	inner *sitter.Parser
}

// New creates a Parser.
func New() *Parser {
	return &Parser{inner: sitter.NewParser()}
}

// Parse parses source as the given language. Unsupported languages are an
// error; a successful call returns a Tree the caller must Close.
func (p *Parser) Parse(language string, source []byte) (*Tree, error) {
	spec, ok := registry[language]
	if !ok {
		return nil, fmt.Errorf("parser: unsupported language %q", language)
	}
	p.inner.SetLanguage(spec.grammar)
	tree, err := p.inner.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}
	return &Tree{tree: tree, source: source, spec: spec}, nil
}

// Valid parses source and reports whether the grammar accepted it without
// error nodes. This is the syntactic gate for extracted examples.
func (p *Parser) Valid(language string, source []byte) (bool, error) {
	t, err := p.Parse(language, source)
	if err != nil {
		return false, err
	}
	defer t.Close()
	return !t.HasError(), nil
}

// Tree is a parsed syntax tree.
type Tree struct {
	tree   *sitter.Tree
	source []byte
	spec   langSpec
}

// Close releases the underlying tree-sitter tree.
func (t *Tree) Close() { t.tree.Close() }

// HasError reports whether the tree contains any parse error node.
func (t *Tree) HasError() bool {
	return t.tree.RootNode().HasError()
}

// Functions returns the spans of all named function and method
// definitions.
func (t *Tree) Functions() []FunctionSpan {
	types := toSet(t.spec.funcTypes)
	var spans []FunctionSpan
	walk(t.tree.RootNode(), func(n *sitter.Node) {
		if !types[n.Type()] {
			return
		}
		name := funcName(n, t.source)
		spans = append(spans, FunctionSpan{
			Name:      name,
			StartLine: int(n.StartPoint().Row) + 1,
			EndLine:   int(n.EndPoint().Row) + 1,
		})
	})
	return spans
}

// Imports returns the cleaned module paths the file imports.
func (t *Tree) Imports() []string {
	types := toSet(t.spec.importTypes)
	var out []string
	seen := map[string]bool{}
	walk(t.tree.RootNode(), func(n *sitter.Node) {
		if !types[n.Type()] {
			return
		}
		for _, path := range importPaths(n, t.source) {
			if path != "" && !seen[path] {
				seen[path] = true
				out = append(out, path)
			}
		}
	})
	return out
}

// walk visits every node depth-first.
func walk(node *sitter.Node, fn func(*sitter.Node)) {
	if node == nil {
		return
	}
	fn(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), fn)
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}

// funcName extracts the identifier of a function node where the grammar
// exposes one; anonymous functions return "".
func funcName(n *sitter.Node, source []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return name.Content(source)
	}
	return ""
}

// importPaths extracts module paths from an import-like node. The node
// types here match the registry's importTypes.
func importPaths(n *sitter.Node, source []byte) []string {
	text := strings.TrimSpace(n.Content(source))

	switch n.Type() {
	case "import_declaration":
		// Go grouped/single imports and Java scoped identifiers.
		var paths []string
		walk(n, func(c *sitter.Node) {
			switch c.Type() {
			case "interpreted_string_literal":
				paths = append(paths, trimPath(c.Content(source)))
			case "scoped_identifier":
				if c.Parent() != nil && c.Parent().Type() == "scoped_identifier" {
					return
				}
				paths = append(paths, c.Content(source))
			}
		})
		return paths
	case "import_statement":
		// JS/TS: import x from "y"; Python: import a, b
		if idx := strings.LastIndex(text, " from "); idx >= 0 {
			return []string{trimPath(text[idx+len(" from "):])}
		}
		rest := strings.TrimPrefix(text, "import ")
		var paths []string
		for _, part := range strings.Split(rest, ",") {
			part = strings.TrimSpace(part)
			if i := strings.Index(part, " as "); i >= 0 {
				part = part[:i]
			}
			if part != "" {
				paths = append(paths, trimPath(part))
			}
		}
		return paths
	case "import_from_statement":
		// Python: from x import y
		rest := strings.TrimPrefix(text, "from ")
		if idx := strings.Index(rest, " import "); idx >= 0 {
			return []string{strings.TrimSpace(rest[:idx])}
		}
		return nil
	case "call":
		// Ruby require / require_relative.
		for _, prefix := range []string{"require_relative ", "require "} {
			if strings.HasPrefix(text, prefix) {
				return []string{trimPath(strings.TrimPrefix(text, prefix))}
			}
		}
		return nil
	default:
		return []string{trimPath(text)}
	}
}

// trimPath strips quotes and statement punctuation around a module path.
func trimPath(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`();")
	return strings.TrimSpace(s)
}
