package pyast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/manifest-lsp/internal/types"
)

func findAll(t *testing.T, source, name string) []types.SourceLocation {
	t.Helper()
	locs, err := FindOccurrences([]byte(source), "/project/src/use.py", name)
	require.NoError(t, err)
	return locs
}

func TestFindOccurrencesCallAndRead(t *testing.T) {
	source := "from src.calc import calc\n" +
		"\n" +
		"\n" +
		"def use_calc():\n" +
		"    total = calc(1, 2)\n" +
		"    return calc\n"

	locs := findAll(t, source, "calc")
	require.Len(t, locs, 3)

	// Import binding.
	assert.Equal(t, 0, locs[0].StartLine)
	assert.Equal(t, 21, locs[0].StartColumn)
	assert.Equal(t, 25, locs[0].EndColumn)
	// Call target.
	assert.Equal(t, 4, locs[1].StartLine)
	assert.Equal(t, 12, locs[1].StartColumn)
	// Plain read.
	assert.Equal(t, 5, locs[2].StartLine)
	assert.Equal(t, 11, locs[2].StartColumn)
}

func TestFindOccurrencesNoDuplicateStartPositions(t *testing.T) {
	source := "calc = None\n" +
		"calc\n" +
		"calc()\n"

	locs := findAll(t, source, "calc")
	seen := make(map[types.LocationKey]struct{})
	for _, loc := range locs {
		_, dup := seen[loc.Key()]
		assert.False(t, dup, "duplicate location at %d:%d", loc.StartLine, loc.StartColumn)
		seen[loc.Key()] = struct{}{}
	}
	// Line 0 is an assignment target; lines 1 and 2 are reads.
	require.Len(t, locs, 2)
}

func TestFindOccurrencesAttributeAccess(t *testing.T) {
	source := "def report(engine):\n" +
		"    engine.calc(3)\n" +
		"    return engine.calc\n"

	locs := findAll(t, source, "calc")
	require.Len(t, locs, 2)
	assert.Equal(t, 1, locs[0].StartLine)
	assert.Equal(t, 11, locs[0].StartColumn)
	assert.Equal(t, 15, locs[0].EndColumn)
	assert.Equal(t, 2, locs[1].StartLine)
	assert.Equal(t, 18, locs[1].StartColumn)
}

func TestFindOccurrencesImportForms(t *testing.T) {
	source := "import calc\n" +
		"import helpers as calc\n" +
		"from lib import other as calc\n" +
		"from lib import calc\n"

	locs := findAll(t, source, "calc")
	require.Len(t, locs, 4)
	assert.Equal(t, 0, locs[0].StartLine)
	assert.Equal(t, 7, locs[0].StartColumn)
	assert.Equal(t, 1, locs[1].StartLine)
	assert.Equal(t, 18, locs[1].StartColumn)
	assert.Equal(t, 2, locs[2].StartLine)
	assert.Equal(t, 25, locs[2].StartColumn)
	assert.Equal(t, 3, locs[3].StartLine)
	assert.Equal(t, 16, locs[3].StartColumn)
}

func TestFindOccurrencesSkipsDefinitionSites(t *testing.T) {
	source := "def calc():\n" +
		"    pass\n" +
		"\n" +
		"\n" +
		"class calc:\n" +
		"    pass\n"

	locs := findAll(t, source, "calc")
	assert.Empty(t, locs)
}

func TestFindOccurrencesSkipsParametersAndKeywords(t *testing.T) {
	source := "def wrap(calc=None):\n" +
		"    return invoke(calc=1)\n"

	locs := findAll(t, source, "calc")
	assert.Empty(t, locs)
}

func TestFindOccurrencesSkipsAugmentedTargetCountsValue(t *testing.T) {
	source := "total = 0\n" +
		"total += calc\n"

	locs := findAll(t, source, "calc")
	require.Len(t, locs, 1)
	assert.Equal(t, 1, locs[0].StartLine)
	assert.Equal(t, 9, locs[0].StartColumn)
}

func TestFindOccurrencesParseFailureReturnsError(t *testing.T) {
	_, err := FindOccurrences([]byte("def broken(:\n"), "/project/src/broken.py", "calc")
	assert.Error(t, err)
}
