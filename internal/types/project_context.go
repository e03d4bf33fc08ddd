package types

import "path/filepath"

// DefaultExcludedDirs is the fixed deny-list of directory names skipped
// during source-file enumeration, matched against any path segment.
var DefaultExcludedDirs = []string{
	"test",
	"tests",
	"__pycache__",
	"build",
	"dist",
	".venv",
	"venv",
	"node_modules",
	".git",
}

// ProjectContext carries the per-session search scope: the project root,
// the configured source directories, and the exclusion set. It is built
// once from configuration and threaded into every search call so nothing
// depends on the process working directory.
type ProjectContext struct {
	Root       string   // absolute project root
	SourceDirs []string // configured source roots, relative to Root; may be empty
	excluded   map[string]struct{}
}

// NewProjectContext builds a context rooted at root. An empty excludeDirs
// selects DefaultExcludedDirs.
func NewProjectContext(root string, sourceDirs []string, excludeDirs []string) ProjectContext {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	if len(excludeDirs) == 0 {
		excludeDirs = DefaultExcludedDirs
	}
	excluded := make(map[string]struct{}, len(excludeDirs))
	for _, d := range excludeDirs {
		excluded[d] = struct{}{}
	}
	return ProjectContext{Root: root, SourceDirs: sourceDirs, excluded: excluded}
}

// Excluded reports whether a directory name is on the deny-list.
func (p ProjectContext) Excluded(dirName string) bool {
	_, ok := p.excluded[dirName]
	return ok
}

// ManifestsDir returns the conventional manifests directory under the root.
func (p ProjectContext) ManifestsDir() string {
	return filepath.Join(p.Root, "manifests")
}
