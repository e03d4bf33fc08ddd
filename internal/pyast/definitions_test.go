package pyast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lsperrors "github.com/standardbeagle/manifest-lsp/internal/errors"
	"github.com/standardbeagle/manifest-lsp/internal/types"
)

const sampleModule = `GREETING = "hi"
LIMIT: int = 10


def run():
    return GREETING


async def fetch():
    return LIMIT


class Calculator:
    def add(self, a, b):
        return a + b


class Register:
    def add(self, item):
        self.items.append(item)
`

func TestFindDefinitionFunction(t *testing.T) {
	loc, err := FindDefinitionInSource([]byte(sampleModule), "/project/src/mod.py", types.ArtifactDescriptor{
		Name: "run",
		Kind: types.KindFunction,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, loc.StartLine)
	assert.Equal(t, 4, loc.StartColumn)
	assert.Equal(t, 4, loc.EndLine)
	assert.Equal(t, 7, loc.EndColumn)
}

func TestFindDefinitionAsyncFunction(t *testing.T) {
	loc, err := FindDefinitionInSource([]byte(sampleModule), "/project/src/mod.py", types.ArtifactDescriptor{
		Name: "fetch",
		Kind: types.KindFunction,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, loc.StartLine)
	assert.Equal(t, 10, loc.StartColumn)
	assert.Equal(t, 15, loc.EndColumn)
}

func TestFindDefinitionClass(t *testing.T) {
	loc, err := FindDefinitionInSource([]byte(sampleModule), "/project/src/mod.py", types.ArtifactDescriptor{
		Name: "Calculator",
		Kind: types.KindClass,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, loc.StartLine)
	assert.Equal(t, 6, loc.StartColumn)
	assert.Equal(t, 16, loc.EndColumn)
}

func TestFindDefinitionMethodScopedToClass(t *testing.T) {
	// Both Calculator and Register define add; the owning class picks one.
	calcLoc, err := FindDefinitionInSource([]byte(sampleModule), "/project/src/mod.py", types.ArtifactDescriptor{
		Name:        "add",
		Kind:        types.KindFunction,
		OwningClass: "Calculator",
	})
	require.NoError(t, err)
	assert.Equal(t, 13, calcLoc.StartLine)

	regLoc, err := FindDefinitionInSource([]byte(sampleModule), "/project/src/mod.py", types.ArtifactDescriptor{
		Name:        "add",
		Kind:        types.KindFunction,
		OwningClass: "Register",
	})
	require.NoError(t, err)
	assert.Equal(t, 18, regLoc.StartLine)
}

func TestFindDefinitionMethodRequiresOwningClass(t *testing.T) {
	// add exists only as a method; a module-level function lookup misses.
	_, err := FindDefinitionInSource([]byte(sampleModule), "/project/src/mod.py", types.ArtifactDescriptor{
		Name: "add",
		Kind: types.KindFunction,
	})
	assert.True(t, lsperrors.IsNotFound(err))
}

func TestFindDefinitionMethodWrongClass(t *testing.T) {
	_, err := FindDefinitionInSource([]byte(sampleModule), "/project/src/mod.py", types.ArtifactDescriptor{
		Name:        "run",
		Kind:        types.KindFunction,
		OwningClass: "Calculator",
	})
	assert.True(t, lsperrors.IsNotFound(err))
}

func TestFindDefinitionAttribute(t *testing.T) {
	loc, err := FindDefinitionInSource([]byte(sampleModule), "/project/src/mod.py", types.ArtifactDescriptor{
		Name: "GREETING",
		Kind: types.KindAttribute,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, loc.StartLine)
	assert.Equal(t, 0, loc.StartColumn)
	assert.Equal(t, 8, loc.EndColumn)
}

func TestFindDefinitionAnnotatedAttribute(t *testing.T) {
	loc, err := FindDefinitionInSource([]byte(sampleModule), "/project/src/mod.py", types.ArtifactDescriptor{
		Name: "LIMIT",
		Kind: types.KindAttribute,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, loc.StartLine)
	assert.Equal(t, 0, loc.StartColumn)
	assert.Equal(t, 5, loc.EndColumn)
}

func TestFindDefinitionAttributeIgnoresLocals(t *testing.T) {
	source := "def setup():\n    mode = \"fast\"\n"
	_, err := FindDefinitionInSource([]byte(source), "/project/src/mod.py", types.ArtifactDescriptor{
		Name: "mode",
		Kind: types.KindAttribute,
	})
	assert.True(t, lsperrors.IsNotFound(err))
}

func TestFindDefinitionDeterministic(t *testing.T) {
	desc := types.ArtifactDescriptor{Name: "run", Kind: types.KindFunction}
	first, err := FindDefinitionInSource([]byte(sampleModule), "/project/src/mod.py", desc)
	require.NoError(t, err)
	second, err := FindDefinitionInSource([]byte(sampleModule), "/project/src/mod.py", desc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseRejectsBrokenSource(t *testing.T) {
	_, err := Parse([]byte("def broken(:\n    pass\n"), "/project/src/broken.py")
	require.Error(t, err)
	var pe *lsperrors.ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestDescriptorForName(t *testing.T) {
	tests := []struct {
		name string
		want types.ArtifactDescriptor
		ok   bool
	}{
		{name: "run", want: types.ArtifactDescriptor{Name: "run", Kind: types.KindFunction}, ok: true},
		{name: "Calculator", want: types.ArtifactDescriptor{Name: "Calculator", Kind: types.KindClass}, ok: true},
		{name: "GREETING", want: types.ArtifactDescriptor{Name: "GREETING", Kind: types.KindAttribute}, ok: true},
		{name: "add", want: types.ArtifactDescriptor{Name: "add", Kind: types.KindFunction, OwningClass: "Calculator"}, ok: true},
		{name: "missing", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DescriptorForName([]byte(sampleModule), "/project/src/mod.py", tt.name)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
