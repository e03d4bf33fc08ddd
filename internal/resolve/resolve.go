// Package resolve implements go-to-definition in both directions: from a
// manifest artifact entry to its Python definition, and from a Python
// identifier back to the manifest entry that expects it.
package resolve

import (
	"context"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"

	lsperrors "github.com/standardbeagle/manifest-lsp/internal/errors"
	"github.com/standardbeagle/manifest-lsp/internal/manifest"
	"github.com/standardbeagle/manifest-lsp/internal/position"
	"github.com/standardbeagle/manifest-lsp/internal/pyast"
	"github.com/standardbeagle/manifest-lsp/internal/runner"
	"github.com/standardbeagle/manifest-lsp/internal/types"
	"github.com/standardbeagle/manifest-lsp/pkg/pathutil"
)

// Resolver answers definition requests.
type Resolver struct {
	pctx      types.ProjectContext
	discovery runner.ManifestDiscoveryService
	log       commonlog.Logger
}

// New returns a Resolver backed by the given manifest discovery service.
func New(pctx types.ProjectContext, discovery runner.ManifestDiscoveryService) *Resolver {
	return &Resolver{
		pctx:      pctx,
		discovery: discovery,
		log:       commonlog.GetLogger("resolve"),
	}
}

// FromManifest resolves the artifact name at the given position in a
// manifest document to its definition in the Python source file the manifest
// names. Positions are zero-based.
func (r *Resolver) FromManifest(docPath string, content []byte, line, column int) (types.SourceLocation, error) {
	word, ok := position.WordAt(string(content), line, column)
	if !ok {
		return types.SourceLocation{}, lsperrors.ErrNotFound
	}

	m, err := manifest.Parse(content, docPath)
	if err != nil {
		return types.SourceLocation{}, err
	}
	desc, ok := m.FindArtifact(word)
	if !ok {
		return types.SourceLocation{}, lsperrors.ErrNotFound
	}

	sourcePath, ok := r.resolveSourcePath(docPath, m.Artifacts.SourceFile)
	if !ok {
		return types.SourceLocation{}, lsperrors.ErrNotFound
	}
	return pyast.FindDefinition(sourcePath, desc)
}

// resolveSourcePath locates the manifest's source file, trying the path
// as-is when absolute, then relative to the inferred project root, then
// relative to the manifest's own directory.
func (r *Resolver) resolveSourcePath(manifestPath, sourceFile string) (string, bool) {
	if sourceFile == "" {
		return "", false
	}
	if filepath.IsAbs(sourceFile) {
		return sourceFile, fileExists(sourceFile)
	}

	candidates := []string{
		filepath.Join(manifest.ProjectRootFor(manifestPath), sourceFile),
		filepath.Join(filepath.Dir(manifestPath), sourceFile),
	}
	for _, candidate := range candidates {
		if fileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// FromSource resolves the identifier at the given position in a Python
// document to the manifest entry that declares it as an expected artifact.
// Manifest discovery goes through the CLI adapter; when that fails the
// request degrades to not-found rather than surfacing an adapter error.
func (r *Resolver) FromSource(ctx context.Context, docPath string, content []byte, line, column int) (types.SourceLocation, error) {
	word, ok := position.WordAt(string(content), line, column)
	if !ok {
		return types.SourceLocation{}, lsperrors.ErrNotFound
	}
	// Only names this document actually defines can map back to a manifest
	// entry; a plain read of an imported name does not.
	if _, ok := pyast.DescriptorForName(content, docPath, word); !ok {
		return types.SourceLocation{}, lsperrors.ErrNotFound
	}

	manifests, err := r.discovery.FindManifests(ctx, docPath)
	if err != nil {
		r.log.Warningf("manifest discovery failed for %s: %v", docPath, err)
		return types.SourceLocation{}, lsperrors.ErrNotFound
	}

	for _, manifestPath := range manifests {
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			r.log.Debugf("skipping unreadable manifest %s: %v", manifestPath, err)
			continue
		}
		if loc, ok := manifest.FindDefiningOccurrence(data, manifestPath, word); ok {
			return loc, nil
		}
	}
	return types.SourceLocation{}, lsperrors.ErrNotFound
}

// Resolve dispatches on the document kind: manifest documents resolve into
// source, Python documents resolve into manifests.
func (r *Resolver) Resolve(ctx context.Context, docPath string, content []byte, line, column int) (types.SourceLocation, error) {
	switch {
	case pathutil.IsManifestFile(docPath):
		return r.FromManifest(docPath, content, line, column)
	case pathutil.IsPythonFile(docPath):
		return r.FromSource(ctx, docPath, content, line, column)
	default:
		return types.SourceLocation{}, lsperrors.ErrNotFound
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
