package manifest

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/manifest-lsp/internal/types"
	"github.com/standardbeagle/manifest-lsp/pkg/pathutil"
)

// definingContextWindow is how many preceding lines IsDefiningContext
// inspects for a "name" key.
const definingContextWindow = 5

// quotedNamePattern builds a regexp matching the artifact name between
// single or double quote delimiters.
func quotedNamePattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`["']` + regexp.QuoteMeta(name) + `["']`)
}

// ScanOccurrences finds every quoted occurrence of name in manifest text,
// line by line. The span covers the name itself, not its quote delimiters.
// Definition-site entries (inside a "name" field) and other textual
// occurrences are reported undistinguished; callers that need the
// distinction apply IsDefiningContext.
func ScanOccurrences(content []byte, path, name string) []types.SourceLocation {
	pattern := quotedNamePattern(name)
	canonical := pathutil.Canonicalize(path)

	var locations []types.SourceLocation
	for lineIdx, line := range strings.Split(string(content), "\n") {
		for _, span := range pattern.FindAllStringIndex(line, -1) {
			// span includes both quote characters; trim them.
			start := span[0] + 1
			end := span[1] - 1
			locations = append(locations, types.SourceLocation{
				FilePath:    canonical,
				StartLine:   lineIdx,
				StartColumn: start,
				EndLine:     lineIdx,
				EndColumn:   end,
			})
		}
	}
	return locations
}

// IsDefiningContext is the heuristic that classifies a quoted occurrence as
// an artifact definition site: a "name" key token appearing within the
// preceding five lines (exclusive of the occurrence's own line). It is a
// textual approximation, not a JSON-path oracle: a "name" key belonging to
// a neighboring artifact entry yields a false positive, and a definition
// more than five lines below its key a false negative. The definition
// resolver uses it as a filter; the reference pipeline deliberately does
// not.
func IsDefiningContext(lines []string, lineIdx int) bool {
	start := lineIdx - definingContextWindow
	if start < 0 {
		start = 0
	}
	for i := start; i < lineIdx && i < len(lines); i++ {
		if strings.Contains(lines[i], `"name"`) || strings.Contains(lines[i], `'name'`) {
			return true
		}
	}
	return false
}

// FindDefiningOccurrence returns the first quoted occurrence of name that
// sits in a defining context, scanning top to bottom. Used by the
// source→manifest definition path.
func FindDefiningOccurrence(content []byte, path, name string) (types.SourceLocation, bool) {
	lines := strings.Split(string(content), "\n")
	for _, loc := range ScanOccurrences(content, path, name) {
		if IsDefiningContext(lines, loc.StartLine) || lineHasNameKey(lines[loc.StartLine]) {
			return loc, true
		}
	}
	return types.SourceLocation{}, false
}

// lineHasNameKey covers the common single-line form `"name": "run"`, where
// the key sits on the occurrence's own line rather than a preceding one.
func lineHasNameKey(line string) bool {
	return strings.Contains(line, `"name"`) || strings.Contains(line, `'name'`)
}
