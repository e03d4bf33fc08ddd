package manifest

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/standardbeagle/manifest-lsp/internal/types"
)

// Enumerate lists every manifest file in the project: the conventional
// manifests/ directory plus the project root, both recursive, filtered to
// the .manifest.json suffix. Paths are returned in deterministic
// (lexicographic, manifests-dir-first) order with duplicates removed.
// Unreadable directories are skipped, not fatal.
func Enumerate(pctx types.ProjectContext) []string {
	seen := make(map[string]struct{})
	var found []string

	collect := func(root string) {
		var batch []string
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				// The deny-list keeps the root sweep out of vendored and
				// cache trees; the manifests dir itself is never excluded.
				if path != root && pctx.Excluded(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(d.Name(), ".manifest.json") {
				batch = append(batch, path)
			}
			return nil
		})
		sort.Strings(batch)
		for _, p := range batch {
			if _, dup := seen[p]; !dup {
				seen[p] = struct{}{}
				found = append(found, p)
			}
		}
	}

	collect(pctx.ManifestsDir())
	collect(pctx.Root)
	return found
}

// ProjectRootFor infers the project root for a manifest path: the parent of
// the first ancestor directory literally named "manifests", else the
// manifest's own directory.
func ProjectRootFor(manifestPath string) string {
	dir := filepath.Dir(manifestPath)
	for current := dir; ; {
		if filepath.Base(current) == "manifests" {
			return filepath.Dir(current)
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return dir
}
