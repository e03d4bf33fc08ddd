// Package pathutil provides conversions between filesystem paths and LSP
// document URIs, plus the file-classification predicates shared by the
// definition and reference lookups.
//
// Architecture Pattern:
// The engine uses absolute, canonicalized paths internally to avoid
// ambiguity; URIs exist only at the protocol boundary. This package is the
// conversion layer between the two representations.
package pathutil

import (
	"net/url"
	"path/filepath"
	"strings"
)

// URIToPath parses a file:// URI into an absolute filesystem path.
// Non-file URIs pass through unchanged as opaque paths; callers must handle
// the downstream failure when such a path is opened.
//
// Examples:
//   - URIToPath("file:///home/user/mod.py") → "/home/user/mod.py"
//   - URIToPath("untitled:Untitled-1") → "untitled:Untitled-1"
func URIToPath(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme != "file" {
		return uri
	}
	path := parsed.Path
	if path == "" {
		return uri
	}
	// Windows-style file:///c:/... URIs carry a leading slash before the
	// volume name.
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path)
}

// PathToURI canonicalizes a path (absolute, symlinks resolved where
// possible) and formats it as a file:// URI.
func PathToURI(path string) string {
	return "file://" + Canonicalize(path)
}

// Canonicalize returns the absolute form of path with symlinks resolved.
// Resolution failures (e.g. a not-yet-existing file) fall back to the
// cleaned absolute path.
func Canonicalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// IsManifestFile reports whether a path names a manifest document: either
// the ".manifest.json" suffix, or any ".json" file under a "manifests"
// path segment.
func IsManifestFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasSuffix(base, ".manifest.json") {
		return true
	}
	if filepath.Ext(base) != ".json" {
		return false
	}
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == "manifests" {
			return true
		}
	}
	return false
}

// IsPythonFile reports whether a path names a Python source file.
func IsPythonFile(path string) bool {
	return filepath.Ext(path) == ".py"
}

// ToRelative converts an absolute path to relative based on a root
// directory. Falls back to the original path if conversion fails, the path
// is already relative, or the file lies outside the root.
//
// Examples:
//   - ToRelative("/home/user/project/src/mod.py", "/home/user/project") → "src/mod.py"
//   - ToRelative("/other/location/mod.py", "/home/user/project") → "/other/location/mod.py"
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}
	if strings.HasPrefix(relPath, "..") {
		return absPath
	}
	return relPath
}
