package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/manifest-lsp/internal/types"
)

func mkdir(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
}

func TestSourceRootsConfiguredDirs(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "backend"))
	mkdir(t, filepath.Join(root, "src"))

	pctx := types.NewProjectContext(root, []string{"backend", "missing"}, nil)
	assert.Equal(t, []string{filepath.Join(root, "backend")}, SourceRoots(pctx))
}

func TestSourceRootsPyprojectPackageDir(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "billing"))
	mkdir(t, filepath.Join(root, "src"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte(`
[project]
name = "other"

[tool.maid]
package-dir = "billing"
`), 0o644))

	pctx := types.NewProjectContext(root, nil, nil)
	assert.Equal(t, []string{filepath.Join(root, "billing")}, SourceRoots(pctx))
}

func TestSourceRootsPyprojectProjectName(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "billing"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte(`
[project]
name = "billing"
`), 0o644))

	pctx := types.NewProjectContext(root, nil, nil)
	assert.Equal(t, []string{filepath.Join(root, "billing")}, SourceRoots(pctx))
}

func TestSourceRootsConventionalLayout(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "src"))
	mkdir(t, filepath.Join(root, "lib"))

	pctx := types.NewProjectContext(root, nil, nil)
	assert.Equal(t, []string{
		filepath.Join(root, "src"),
		filepath.Join(root, "lib"),
	}, SourceRoots(pctx))
}

func TestSourceRootsFallbackToProjectRoot(t *testing.T) {
	root := t.TempDir()
	pctx := types.NewProjectContext(root, nil, nil)
	assert.Equal(t, []string{pctx.Root}, SourceRoots(pctx))
}

func TestSourceRootsMalformedPyprojectIgnored(t *testing.T) {
	root := t.TempDir()
	mkdir(t, filepath.Join(root, "src"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte("not toml ["), 0o644))

	pctx := types.NewProjectContext(root, nil, nil)
	assert.Equal(t, []string{filepath.Join(root, "src")}, SourceRoots(pctx))
}
