package pyast

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	lsperrors "github.com/standardbeagle/manifest-lsp/internal/errors"
	"github.com/standardbeagle/manifest-lsp/internal/types"
	"github.com/standardbeagle/manifest-lsp/pkg/pathutil"
)

// FindDefinition reads a Python file and locates the definition named by the
// descriptor. The returned span covers exactly the name token. First match
// in pre-order wins; the descriptor's kind disambiguates a class and a
// module attribute sharing one name.
func FindDefinition(path string, desc types.ArtifactDescriptor) (types.SourceLocation, error) {
	mod, err := ParseFile(path)
	if err != nil {
		return types.SourceLocation{}, err
	}
	defer mod.Close()
	return mod.FindDefinition(desc)
}

// FindDefinitionInSource is FindDefinition over in-memory document text.
func FindDefinitionInSource(content []byte, path string, desc types.ArtifactDescriptor) (types.SourceLocation, error) {
	mod, err := Parse(content, path)
	if err != nil {
		return types.SourceLocation{}, err
	}
	defer mod.Close()
	return mod.FindDefinition(desc)
}

// FindDefinition locates the definition named by the descriptor within the
// parsed module.
func (m *Module) FindDefinition(desc types.ArtifactDescriptor) (types.SourceLocation, error) {
	var found *tree_sitter.Node

	switch desc.Kind {
	case types.KindFunction:
		found = m.findFunction(desc.Name, desc.OwningClass)
	case types.KindClass:
		found = m.findClass(desc.Name)
	case types.KindAttribute:
		found = m.findModuleAttribute(desc.Name)
	default:
		return types.SourceLocation{}, fmt.Errorf("artifact %s: unknown kind %q: %w", desc.Name, desc.Kind, lsperrors.ErrNotFound)
	}

	if found == nil {
		return types.SourceLocation{}, fmt.Errorf("artifact %s (%s): %w", desc.Name, desc.Kind, lsperrors.ErrNotFound)
	}
	return m.nameTokenLocation(found), nil
}

// findFunction matches both `def` and `async def` forms; the grammar folds
// them into one function_definition node. With no owning class only
// module-level functions qualify; with one, the nearest enclosing class
// must carry exactly that name.
func (m *Module) findFunction(name, owningClass string) *tree_sitter.Node {
	var found *tree_sitter.Node
	walk(m.root(), func(node *tree_sitter.Node) bool {
		if found != nil {
			return false
		}
		if node.Kind() != kindFunctionDef {
			return true
		}
		nameNode := node.ChildByFieldName("name")
		if nameNode == nil || m.text(nameNode) != name {
			return true
		}
		owner := enclosingClass(node)
		if owningClass == "" {
			if owner == nil && enclosingFunction(node) == nil {
				found = nameNode
			}
			return true
		}
		if owner != nil {
			ownerName := owner.ChildByFieldName("name")
			if ownerName != nil && m.text(ownerName) == owningClass {
				found = nameNode
			}
		}
		return true
	})
	return found
}

func (m *Module) findClass(name string) *tree_sitter.Node {
	var found *tree_sitter.Node
	walk(m.root(), func(node *tree_sitter.Node) bool {
		if found != nil {
			return false
		}
		if node.Kind() == kindClassDef {
			nameNode := node.ChildByFieldName("name")
			if nameNode != nil && m.text(nameNode) == name {
				found = nameNode
			}
		}
		return true
	})
	return found
}

// findModuleAttribute matches a module-level simple or annotated assignment
// whose left-hand target is a bare name. Assignments inside functions or
// classes do not qualify.
func (m *Module) findModuleAttribute(name string) *tree_sitter.Node {
	var found *tree_sitter.Node
	walk(m.root(), func(node *tree_sitter.Node) bool {
		if found != nil {
			return false
		}
		if node.Kind() != kindAssignment {
			return true
		}
		if !m.isModuleLevelStatement(node) {
			return true
		}
		left := node.ChildByFieldName("left")
		if left != nil && left.Kind() == kindIdentifier && m.text(left) == name {
			found = left
		}
		return true
	})
	return found
}

// isModuleLevelStatement reports whether an assignment sits directly in the
// module body (wrapped only by its expression statement).
func (m *Module) isModuleLevelStatement(node *tree_sitter.Node) bool {
	parent := node.Parent()
	if parent == nil || parent.Kind() != kindExpressionStatement {
		return false
	}
	grandparent := parent.Parent()
	return grandparent != nil && grandparent.Kind() == kindModule
}

// nameTokenLocation builds the span of exactly the given name token:
// start at its first character, end at start plus the name length.
func (m *Module) nameTokenLocation(nameNode *tree_sitter.Node) types.SourceLocation {
	start := nameNode.StartPosition()
	length := int(nameNode.EndByte()) - int(nameNode.StartByte())
	return types.SourceLocation{
		FilePath:    pathutil.Canonicalize(m.path),
		StartLine:   int(start.Row),
		StartColumn: int(start.Column),
		EndLine:     int(start.Row),
		EndColumn:   int(start.Column) + length,
	}
}

// DescriptorForName builds an artifact descriptor from whatever definition
// of name the source contains: a function (with its owning class when the
// definition is a method), a class, or a module-level attribute. Used when
// a reference search starts from a source file instead of a manifest.
func DescriptorForName(content []byte, path, name string) (types.ArtifactDescriptor, bool) {
	mod, err := Parse(content, path)
	if err != nil {
		return types.ArtifactDescriptor{}, false
	}
	defer mod.Close()

	var desc types.ArtifactDescriptor
	var ok bool
	walk(mod.root(), func(node *tree_sitter.Node) bool {
		if ok {
			return false
		}
		switch node.Kind() {
		case kindFunctionDef:
			nameNode := node.ChildByFieldName("name")
			if nameNode != nil && mod.text(nameNode) == name {
				desc = types.ArtifactDescriptor{Name: name, Kind: types.KindFunction}
				if owner := enclosingClass(node); owner != nil {
					if ownerName := owner.ChildByFieldName("name"); ownerName != nil {
						desc.OwningClass = mod.text(ownerName)
					}
				}
				ok = true
			}
		case kindClassDef:
			nameNode := node.ChildByFieldName("name")
			if nameNode != nil && mod.text(nameNode) == name {
				desc = types.ArtifactDescriptor{Name: name, Kind: types.KindClass}
				ok = true
			}
		case kindAssignment:
			if !mod.isModuleLevelStatement(node) {
				return true
			}
			left := node.ChildByFieldName("left")
			if left != nil && left.Kind() == kindIdentifier && mod.text(left) == name {
				desc = types.ArtifactDescriptor{Name: name, Kind: types.KindAttribute}
				ok = true
			}
		}
		return true
	})
	return desc, ok
}
