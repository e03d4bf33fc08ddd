package pyast

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/manifest-lsp/internal/types"
)

// FindOccurrences locates every reference occurrence of name in Python
// source: call targets, attribute accesses, plain name reads outside
// assignment-target position, and import bindings. Definition sites
// (def/class name tokens, assignment targets) are not occurrences.
// Results are in traversal order, deduplicated by start position.
func FindOccurrences(content []byte, path, name string) ([]types.SourceLocation, error) {
	mod, err := Parse(content, path)
	if err != nil {
		return nil, err
	}
	defer mod.Close()

	var locations []types.SourceLocation
	seen := make(map[types.LocationKey]struct{})
	record := func(n *tree_sitter.Node) {
		loc := mod.nameTokenLocation(n)
		if _, dup := seen[loc.Key()]; dup {
			return
		}
		seen[loc.Key()] = struct{}{}
		locations = append(locations, loc)
	}

	walk(mod.root(), func(node *tree_sitter.Node) bool {
		switch node.Kind() {
		case kindCall:
			// Bare-name callees are also plain reads and dedupe away;
			// attribute callees are covered by the attribute case below.
			if fn := node.ChildByFieldName("function"); fn != nil && fn.Kind() == kindIdentifier && mod.text(fn) == name {
				record(fn)
			}

		case kindAttribute:
			if attr := node.ChildByFieldName("attribute"); attr != nil && mod.text(attr) == name {
				record(attr)
			}

		case kindIdentifier:
			if mod.text(node) == name && !mod.isNonReferenceContext(node) {
				record(node)
			}

		case kindImport, kindImportFrom:
			for _, bound := range mod.importBindings(node, name) {
				record(bound)
			}
		}
		return true
	})

	return locations, nil
}

// isNonReferenceContext reports whether an identifier occupies a position
// that is not a name read: a definition's own name token, an assignment
// target, a parameter, a keyword-argument label, an import path segment, or
// a global/nonlocal declaration.
func (m *Module) isNonReferenceContext(node *tree_sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}

	switch parent.Kind() {
	case kindFunctionDef, kindClassDef:
		return isChildField(parent, "name", node)
	case kindKeywordArgument:
		return isChildField(parent, "name", node)
	case kindAttribute:
		// The accessed member is reported by the attribute rule; the object
		// side remains a plain read.
		return isChildField(parent, "attribute", node)
	case kindDottedName, kindAliasedImport:
		return true
	case kindParameters, "lambda_parameters", "typed_parameter":
		return true
	case "default_parameter", "typed_default_parameter":
		return isChildField(parent, "name", node)
	case kindGlobalStatement, kindNonlocalStatement:
		return true
	case "named_expression":
		return isChildField(parent, "name", node)
	case "as_pattern_target":
		return true
	}

	return m.isAssignmentTarget(node)
}

// isAssignmentTarget reports whether the identifier is (part of) the target
// of an assignment, augmented assignment, or for-loop binding.
func (m *Module) isAssignmentTarget(node *tree_sitter.Node) bool {
	current := node
	for parent := current.Parent(); parent != nil; parent = current.Parent() {
		switch parent.Kind() {
		case kindPatternList, kindTuplePattern, kindListPattern:
			current = parent
			continue
		case kindAssignment, kindAugmentedAssignment, kindForStatement:
			return isChildField(parent, "left", current)
		}
		return false
	}
	return false
}

// importBindings returns the name tokens an import statement binds to the
// given name: the alias token when the import is renamed, else the full
// dotted module or symbol token.
func (m *Module) importBindings(node *tree_sitter.Node, name string) []*tree_sitter.Node {
	moduleName := node.ChildByFieldName("module_name") // import_from only

	var bound []*tree_sitter.Node
	count := node.ChildCount()
	for i := uint(0); i < count; i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		if moduleName != nil && child.Id() == moduleName.Id() {
			continue
		}
		switch child.Kind() {
		case kindDottedName:
			if m.text(child) == name {
				bound = append(bound, child)
			}
		case kindAliasedImport:
			if alias := child.ChildByFieldName("alias"); alias != nil && m.text(alias) == name {
				bound = append(bound, alias)
			}
		}
	}
	return bound
}
