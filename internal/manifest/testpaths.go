package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/manifest-lsp/internal/types"
)

// skippedTokens are tool names and subcommands that can appear in a
// validation command but never name a test file.
var skippedTokens = map[string]struct{}{
	"pytest":  {},
	"uv":      {},
	"run":     {},
	"python":  {},
	"python3": {},
	"maid":    {},
}

// TestPathsFromCommand extracts test-file paths from a validation command's
// token list. Tool names, subcommands, and flags are skipped; a surviving
// token qualifies when it contains "test" or ends in ".py". Relative tokens
// resolve against the project root, and glob tokens expand against the
// filesystem via doublestar. Only files that exist are returned, in token
// order.
func TestPathsFromCommand(tokens []string, pctx types.ProjectContext) []string {
	seen := make(map[string]struct{})
	var paths []string
	add := func(p string) {
		if !fileExists(p) {
			return
		}
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}

	for _, token := range tokens {
		if token == "" || strings.HasPrefix(token, "-") {
			continue
		}
		if _, skip := skippedTokens[token]; skip {
			continue
		}
		if !strings.Contains(token, "test") && !strings.HasSuffix(token, ".py") {
			continue
		}

		resolved := token
		if !filepath.IsAbs(resolved) {
			resolved = filepath.Join(pctx.Root, resolved)
		}

		if hasGlobMeta(token) {
			matches, err := doublestar.FilepathGlob(resolved)
			if err != nil {
				continue
			}
			for _, match := range matches {
				add(match)
			}
			continue
		}
		add(resolved)
	}
	return paths
}

func hasGlobMeta(token string) bool {
	return strings.ContainsAny(token, "*?[")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
