// Package search implements workspace-wide reference resolution: given an
// identifier in a manifest or Python document, it finds every textual and
// syntactic occurrence across manifests, derived test files, and source
// trees.
package search

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	lsperrors "github.com/standardbeagle/manifest-lsp/internal/errors"
	"github.com/standardbeagle/manifest-lsp/internal/manifest"
	"github.com/standardbeagle/manifest-lsp/internal/position"
	"github.com/standardbeagle/manifest-lsp/internal/pyast"
	"github.com/standardbeagle/manifest-lsp/internal/types"
	"github.com/standardbeagle/manifest-lsp/pkg/pathutil"
)

// FileLister enumerates candidate files for the source stage, excluding
// paths present in skip. The default walks the project's source roots;
// an index-backed implementation can stand in without touching the
// matching logic.
type FileLister func(pctx types.ProjectContext, skip map[string]struct{}) []string

// Engine runs staged reference searches over a project.
type Engine struct {
	pctx    types.ProjectContext
	workers int
	list    FileLister
	log     commonlog.Logger
}

// New returns an Engine bounded to the given worker count (minimum 1).
func New(pctx types.ProjectContext, workers int) *Engine {
	return NewWithLister(pctx, workers, walkSourceFiles)
}

// NewWithLister is New with a replacement source-file enumerator.
func NewWithLister(pctx types.ProjectContext, workers int, lister FileLister) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		pctx:    pctx,
		workers: workers,
		list:    lister,
		log:     commonlog.GetLogger("search"),
	}
}

// FindReferences resolves the identifier at the given zero-based position in
// the document and returns every occurrence across the project, ordered by
// stage: manifests first, then test files named by validation commands, then
// the source tree. Duplicate start positions keep their first-seen entry.
// content is the document's current text, which may be newer than what is on
// disk. Files that cannot be read or parsed are skipped.
func (e *Engine) FindReferences(ctx context.Context, docPath string, content []byte, line, column int) ([]types.SourceLocation, error) {
	word, ok := position.WordAt(string(content), line, column)
	if !ok {
		return nil, lsperrors.ErrNotFound
	}
	docPath = pathutil.Canonicalize(docPath)
	if !e.describesArtifact(docPath, content, word) {
		return nil, lsperrors.ErrNotFound
	}
	return e.findByName(ctx, docPath, content, word)
}

// describesArtifact gates the fan-out: the cursor word must name a declared
// artifact. A manifest document consults its own contains list, a source
// document a structural lookup of its own definitions, falling back to the
// first manifest declaring an artifact of that name.
func (e *Engine) describesArtifact(docPath string, content []byte, name string) bool {
	if pathutil.IsManifestFile(docPath) {
		m, err := manifest.Parse(content, docPath)
		if err != nil {
			return false
		}
		_, ok := m.FindArtifact(name)
		return ok
	}
	if _, ok := pyast.DescriptorForName(content, docPath, name); ok {
		return true
	}
	needle := []byte(name)
	for _, path := range manifest.Enumerate(e.pctx) {
		data, err := os.ReadFile(path)
		if err != nil || !bytes.Contains(data, needle) {
			continue
		}
		m, err := manifest.Parse(data, path)
		if err != nil {
			continue
		}
		if _, ok := m.FindArtifact(name); ok {
			return true
		}
	}
	return false
}

func (e *Engine) findByName(ctx context.Context, docPath string, docContent []byte, name string) ([]types.SourceLocation, error) {
	needle := []byte(name)
	read := func(path string) ([]byte, bool) {
		if path == docPath || pathutil.Canonicalize(path) == docPath {
			return docContent, true
		}
		data, err := os.ReadFile(path)
		if err != nil {
			e.log.Debugf("skipping unreadable file %s: %v", pathutil.ToRelative(path, e.pctx.Root), err)
			return nil, false
		}
		return data, true
	}

	// Stage 1: manifests. Besides their own occurrences, matching manifests
	// contribute their validation commands for the test stage.
	manifestFiles := manifest.Enumerate(e.pctx)
	type manifestHit struct {
		locations []types.SourceLocation
		command   []string
	}
	manifestHits := make([]manifestHit, len(manifestFiles))
	e.forEach(ctx, len(manifestFiles), func(i int) {
		path := manifestFiles[i]
		data, ok := read(path)
		if !ok || !bytes.Contains(data, needle) {
			return
		}
		manifestHits[i].locations = manifest.ScanOccurrences(data, path, name)
		if len(manifestHits[i].locations) == 0 {
			return
		}
		m, err := manifest.Parse(data, path)
		if err != nil {
			e.log.Debugf("skipping malformed manifest %s: %v", pathutil.ToRelative(path, e.pctx.Root), err)
			return
		}
		manifestHits[i].command = m.ValidationCommand
	})

	var results []types.SourceLocation
	seen := make(map[types.LocationKey]struct{})
	add := func(locs []types.SourceLocation) {
		for _, loc := range locs {
			key := loc.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			results = append(results, loc)
		}
	}

	var testFiles []string
	testSeen := make(map[string]struct{})
	for _, hit := range manifestHits {
		add(hit.locations)
		for _, path := range manifest.TestPathsFromCommand(hit.command, e.pctx) {
			if _, dup := testSeen[path]; dup {
				continue
			}
			testSeen[path] = struct{}{}
			testFiles = append(testFiles, path)
		}
	}

	// Stage 2: test files named by the matching manifests' validation
	// commands.
	add(e.scanPython(ctx, testFiles, read, needle, name))

	// Stage 3: the source tree, skipping files the test stage already
	// covered.
	sourceFiles := e.list(e.pctx, testSeen)
	add(e.scanPython(ctx, sourceFiles, read, needle, name))

	return results, nil
}

// scanPython finds occurrences of name across files in parallel, preserving
// the input file order in its output.
func (e *Engine) scanPython(ctx context.Context, files []string, read func(string) ([]byte, bool), needle []byte, name string) []types.SourceLocation {
	perFile := make([][]types.SourceLocation, len(files))
	e.forEach(ctx, len(files), func(i int) {
		data, ok := read(files[i])
		if !ok || !bytes.Contains(data, needle) {
			return
		}
		locs, err := pyast.FindOccurrences(data, files[i], name)
		if err != nil {
			e.log.Debugf("skipping unparseable source %s: %v", pathutil.ToRelative(files[i], e.pctx.Root), err)
			return
		}
		perFile[i] = locs
	})

	var out []types.SourceLocation
	for _, locs := range perFile {
		out = append(out, locs...)
	}
	return out
}

// forEach runs fn for each index with bounded parallelism. Work items handle
// their own failures, so the group never carries an error.
func (e *Engine) forEach(ctx context.Context, n int, fn func(i int)) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

// walkSourceFiles is the default FileLister. It walks the source roots for
// Python files in deterministic order, honoring the excluded-directory list
// and skipping already-visited paths.
func walkSourceFiles(pctx types.ProjectContext, skip map[string]struct{}) []string {
	var files []string
	fileSeen := make(map[string]struct{})
	for _, root := range SourceRoots(pctx) {
		var underRoot []string
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != root && pctx.Excluded(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if !pathutil.IsPythonFile(path) {
				return nil
			}
			if _, dup := skip[path]; dup {
				return nil
			}
			if _, dup := fileSeen[path]; dup {
				return nil
			}
			fileSeen[path] = struct{}{}
			underRoot = append(underRoot, path)
			return nil
		})
		sort.Strings(underRoot)
		files = append(files, underRoot...)
	}
	return files
}
