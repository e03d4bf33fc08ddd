package runner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	lsperrors "github.com/standardbeagle/manifest-lsp/internal/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeBinary writes an executable shell script standing in for the maid CLI.
func fakeBinary(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake CLI scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "maid")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestValidateDecodesReport(t *testing.T) {
	bin := fakeBinary(t, `echo '{"success": false, "errors": [{"code": "E001", "message": "missing artifact", "file": "src/calc.py", "line": 3}], "warnings": [{"code": "W002", "message": "unused artifact"}], "metadata": {"mode": "implementation"}}'`)
	r := New(bin, 0)

	result, err := r.Validate(context.Background(), "/p/manifests/calc.manifest.json", ModeImplementation)
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "E001", result.Errors[0].Code)
	assert.Equal(t, "src/calc.py", result.Errors[0].File)
	assert.Equal(t, 3, result.Errors[0].Line)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "W002", result.Warnings[0].Code)
	assert.Equal(t, "implementation", result.Metadata["mode"])

	// The severities the CLI leaves implicit are filled per list.
	issues := result.Issues()
	require.Len(t, issues, 2)
	assert.Equal(t, "error", issues[0].Severity)
	assert.Equal(t, "warning", issues[1].Severity)
}

func TestValidateIgnoresExitCodeWithOutput(t *testing.T) {
	bin := fakeBinary(t, `echo '{"success": false, "errors": [], "warnings": []}'; exit 1`)
	r := New(bin, 0)

	result, err := r.Validate(context.Background(), "/p/manifests/calc.manifest.json", ModeBehavioral)
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestValidateMalformedOutput(t *testing.T) {
	bin := fakeBinary(t, `echo 'not json'`)
	r := New(bin, 0)

	_, err := r.Validate(context.Background(), "/p/manifests/calc.manifest.json", ModeImplementation)
	require.Error(t, err)
	var ae *lsperrors.AdapterError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, lsperrors.AdapterDecode, ae.Kind)
}

func TestValidateTimeout(t *testing.T) {
	bin := fakeBinary(t, `sleep 5`)
	r := New(bin, 100*time.Millisecond)

	_, err := r.Validate(context.Background(), "/p/manifests/calc.manifest.json", ModeImplementation)
	require.Error(t, err)
	assert.True(t, lsperrors.IsTimeout(err))
}

func TestValidateMissingBinary(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "no-such-binary"), 0)

	_, err := r.Validate(context.Background(), "/p/manifests/calc.manifest.json", ModeImplementation)
	require.Error(t, err)
	var ae *lsperrors.AdapterError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, lsperrors.AdapterProcess, ae.Kind)
}

func TestFindManifestsDecodesPathArray(t *testing.T) {
	bin := fakeBinary(t, `echo '["/p/manifests/a.manifest.json", "/p/manifests/b.manifest.json"]'`)
	r := New(bin, 0)

	manifests, err := r.FindManifests(context.Background(), "/p/src/calc.py")
	require.NoError(t, err)
	assert.Equal(t, []string{"/p/manifests/a.manifest.json", "/p/manifests/b.manifest.json"}, manifests)
}

func TestNewDefaults(t *testing.T) {
	r := New("", 0)
	assert.Equal(t, "maid", r.Binary)
	assert.Equal(t, DefaultTimeout, r.Timeout)
}
