// Package pyast parses Python source files with tree-sitter and locates
// artifact definitions and reference occurrences by name. Traversal branches
// on a closed set of node kinds; unmodeled kinds are descended into but
// never matched, so new grammar constructs degrade to "no match" instead of
// silent mis-handling.
package pyast

import (
	"fmt"
	"os"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	lsperrors "github.com/standardbeagle/manifest-lsp/internal/errors"
)

// Grammar node kinds the extractor branches on.
const (
	kindModule              = "module"
	kindFunctionDef         = "function_definition"
	kindClassDef            = "class_definition"
	kindDecoratedDef        = "decorated_definition"
	kindExpressionStatement = "expression_statement"
	kindAssignment          = "assignment"
	kindAugmentedAssignment = "augmented_assignment"
	kindCall                = "call"
	kindAttribute           = "attribute"
	kindIdentifier          = "identifier"
	kindImport              = "import_statement"
	kindImportFrom          = "import_from_statement"
	kindAliasedImport       = "aliased_import"
	kindDottedName          = "dotted_name"
	kindKeywordArgument     = "keyword_argument"
	kindParameters          = "parameters"
	kindPatternList         = "pattern_list"
	kindTuplePattern        = "tuple_pattern"
	kindListPattern         = "list_pattern"
	kindForStatement        = "for_statement"
	kindGlobalStatement     = "global_statement"
	kindNonlocalStatement   = "nonlocal_statement"
)

var (
	pythonLanguage     *tree_sitter.Language
	pythonLanguageOnce sync.Once
)

func language() *tree_sitter.Language {
	pythonLanguageOnce.Do(func() {
		pythonLanguage = tree_sitter.NewLanguage(tree_sitter_python.Language())
	})
	return pythonLanguage
}

// Parser pool avoids re-creating tree-sitter parsers per request while
// keeping each instance single-threaded.
var parserPool = sync.Pool{
	New: func() any {
		parser := tree_sitter.NewParser()
		if err := parser.SetLanguage(language()); err != nil {
			return nil
		}
		return parser
	},
}

// Module is one parsed Python source file. Callers must Close it to release
// the underlying tree.
type Module struct {
	tree    *tree_sitter.Tree
	content []byte
	path    string
}

// Close releases the parse tree.
func (m *Module) Close() {
	if m != nil && m.tree != nil {
		m.tree.Close()
		m.tree = nil
	}
}

func (m *Module) root() *tree_sitter.Node {
	return m.tree.RootNode()
}

func (m *Module) text(n *tree_sitter.Node) string {
	return string(m.content[n.StartByte():n.EndByte()])
}

// Parse parses Python source text. A file that does not parse cleanly is
// rejected outright: the extractor never works from partial trees, matching
// the skip-malformed-files policy of the wider search.
func Parse(content []byte, path string) (mod *Module, err error) {
	pooled := parserPool.Get()
	if pooled == nil {
		return nil, lsperrors.NewParseError(path, fmt.Errorf("python grammar unavailable"))
	}
	parser := pooled.(*tree_sitter.Parser)
	defer parserPool.Put(parser)

	// The tree-sitter C library mutates input buffers via CGO; parse from a
	// defensive copy so callers keep their content immutable. The copy also
	// backs Module.text for the tree's lifetime.
	buffer := make([]byte, len(content))
	copy(buffer, content)

	defer func() {
		if r := recover(); r != nil {
			mod = nil
			err = lsperrors.NewParseError(path, fmt.Errorf("tree-sitter panic: %v", r))
		}
	}()

	tree := parser.Parse(buffer, nil)
	if tree == nil {
		return nil, lsperrors.NewParseError(path, fmt.Errorf("parser returned no tree"))
	}
	if tree.RootNode().HasError() {
		tree.Close()
		return nil, lsperrors.NewParseError(path, fmt.Errorf("syntax error"))
	}
	return &Module{tree: tree, content: buffer, path: path}, nil
}

// ParseFile reads and parses a Python file from disk.
func ParseFile(path string) (*Module, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, lsperrors.NewParseError(path, err)
	}
	return Parse(content, path)
}

// walk traverses the tree pre-order. visit returning false prunes the
// subtree below the node.
func walk(node *tree_sitter.Node, visit func(*tree_sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		walk(node.Child(i), visit)
	}
}

// isChildField reports whether child occupies the named field of parent.
func isChildField(parent *tree_sitter.Node, field string, child *tree_sitter.Node) bool {
	if parent == nil || child == nil {
		return false
	}
	fieldNode := parent.ChildByFieldName(field)
	return fieldNode != nil && fieldNode.Id() == child.Id()
}

// enclosingClass returns the nearest class_definition strictly above node,
// ignoring decorator wrappers. Returns nil for module-level code.
func enclosingClass(node *tree_sitter.Node) *tree_sitter.Node {
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		switch parent.Kind() {
		case kindClassDef:
			return parent
		case kindFunctionDef:
			// A method of a class nested inside this function is not a
			// method of any outer class.
			return nil
		}
	}
	return nil
}

// enclosingFunction returns the nearest function_definition strictly above
// node, or nil.
func enclosingFunction(node *tree_sitter.Node) *tree_sitter.Node {
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		if parent.Kind() == kindFunctionDef {
			return parent
		}
	}
	return nil
}
