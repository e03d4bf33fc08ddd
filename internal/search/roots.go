package search

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/manifest-lsp/internal/types"
)

// conventionalRoots are probed when neither the config nor pyproject.toml
// names a source directory.
var conventionalRoots = []string{"src", "lib", "app"}

// pyprojectProbe is the subset of pyproject.toml consulted for a source
// directory hint.
type pyprojectProbe struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Tool struct {
		Maid struct {
			PackageDir string `toml:"package-dir"`
		} `toml:"maid"`
	} `toml:"tool"`
}

// SourceRoots resolves the directories to walk for Python sources, in
// priority order: configured dirs, a pyproject.toml hint, the conventional
// layout directories, and finally the project root itself. Only directories
// that exist are returned.
func SourceRoots(pctx types.ProjectContext) []string {
	if len(pctx.SourceDirs) > 0 {
		var roots []string
		for _, dir := range pctx.SourceDirs {
			path := dir
			if !filepath.IsAbs(path) {
				path = filepath.Join(pctx.Root, path)
			}
			if dirExists(path) {
				roots = append(roots, path)
			}
		}
		if len(roots) > 0 {
			return roots
		}
	}

	if hint := pyprojectHint(pctx.Root); hint != "" {
		path := filepath.Join(pctx.Root, hint)
		if dirExists(path) {
			return []string{path}
		}
	}

	var roots []string
	for _, dir := range conventionalRoots {
		path := filepath.Join(pctx.Root, dir)
		if dirExists(path) {
			roots = append(roots, path)
		}
	}
	if len(roots) > 0 {
		return roots
	}

	return []string{pctx.Root}
}

// pyprojectHint reads a source directory name from pyproject.toml:
// tool.maid.package-dir when set, else the project name, which by Python
// packaging convention matches the top-level package directory.
func pyprojectHint(root string) string {
	data, err := os.ReadFile(filepath.Join(root, "pyproject.toml"))
	if err != nil {
		return ""
	}
	var probe pyprojectProbe
	if err := toml.Unmarshal(data, &probe); err != nil {
		return ""
	}
	if probe.Tool.Maid.PackageDir != "" {
		return probe.Tool.Maid.PackageDir
	}
	return probe.Project.Name
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
