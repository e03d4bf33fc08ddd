// Package position extracts identifier tokens from document text at cursor
// positions. Lines and columns are zero-based throughout.
package position

import (
	"regexp"
	"strings"
)

// identifierPattern matches maximal identifier runs. Underscore counts as a
// word character; artifact names never contain anything outside this set.
var identifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// WordAt returns the identifier whose span contains the cursor column on
// the given line. Both span boundaries are inclusive: a cursor sitting
// immediately after the last character of an identifier still selects it.
// Returns "" (and false) when the line is out of range, the column is past
// the end of the line, or no identifier contains the column.
func WordAt(text string, line, column int) (string, bool) {
	if line < 0 || column < 0 {
		return "", false
	}
	lines := strings.Split(text, "\n")
	if line >= len(lines) {
		return "", false
	}
	current := lines[line]
	if column > len(current) {
		return "", false
	}

	for _, span := range identifierPattern.FindAllStringIndex(current, -1) {
		if span[0] <= column && column <= span[1] {
			return current[span[0]:span[1]], true
		}
	}
	return "", false
}
