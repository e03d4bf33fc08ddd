// Package runner shells out to the maid CLI for manifest validation and
// discovery, decoding its JSON output into typed results.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"time"

	lsperrors "github.com/standardbeagle/manifest-lsp/internal/errors"
)

// DefaultTimeout bounds a single CLI invocation.
const DefaultTimeout = 10 * time.Second

// ValidationMode selects how strictly the CLI validates a manifest.
type ValidationMode string

const (
	ModeImplementation ValidationMode = "implementation"
	ModeBehavioral     ValidationMode = "behavioral"
)

// ValidationIssue is one finding reported by a validation run.
type ValidationIssue struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Severity string `json:"severity,omitempty"`
}

// ValidationResult is the decoded output of a validate invocation. The CLI
// reports failures through the errors list rather than its exit code, so a
// non-zero exit with decodable output is still a result.
type ValidationResult struct {
	Success  bool              `json:"success"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []ValidationIssue `json:"warnings"`
	Metadata map[string]any    `json:"metadata,omitempty"`
}

// Issues returns errors then warnings, filling in the severity the CLI
// leaves implicit for each list.
func (r *ValidationResult) Issues() []ValidationIssue {
	out := make([]ValidationIssue, 0, len(r.Errors)+len(r.Warnings))
	for _, issue := range r.Errors {
		if issue.Severity == "" {
			issue.Severity = "error"
		}
		out = append(out, issue)
	}
	for _, issue := range r.Warnings {
		if issue.Severity == "" {
			issue.Severity = "warning"
		}
		out = append(out, issue)
	}
	return out
}

// ManifestDiscoveryService resolves the manifests that govern a source file.
// The search and resolve layers depend on this seam rather than the concrete
// runner so tests can substitute a canned implementation.
type ManifestDiscoveryService interface {
	FindManifests(ctx context.Context, sourcePath string) ([]string, error)
}

// Runner invokes the maid binary.
type Runner struct {
	Binary  string
	Timeout time.Duration
}

// New returns a Runner with the given binary name, defaulting to "maid".
func New(binary string, timeout time.Duration) *Runner {
	if binary == "" {
		binary = "maid"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{Binary: binary, Timeout: timeout}
}

// Validate runs manifest validation and decodes its JSON report. The exit
// code is ignored when stdout decodes, because the CLI signals validation
// failures both ways.
func (r *Runner) Validate(ctx context.Context, manifestPath string, mode ValidationMode) (*ValidationResult, error) {
	args := []string{
		"validate", manifestPath,
		"--validation-mode", string(mode),
		"--use-manifest-chain",
		"--json-output",
	}
	stdout, err := r.run(ctx, "validate", args)
	if err != nil {
		return nil, err
	}

	var result ValidationResult
	if decodeErr := json.Unmarshal(stdout, &result); decodeErr != nil {
		return nil, lsperrors.NewAdapterError("validate", lsperrors.AdapterDecode, decodeErr)
	}
	return &result, nil
}

// FindManifests asks the CLI which manifests reference sourcePath.
func (r *Runner) FindManifests(ctx context.Context, sourcePath string) ([]string, error) {
	args := []string{"manifests", sourcePath, "--json-output"}
	stdout, err := r.run(ctx, "manifests", args)
	if err != nil {
		return nil, err
	}

	var paths []string
	if decodeErr := json.Unmarshal(stdout, &paths); decodeErr != nil {
		return nil, lsperrors.NewAdapterError("manifests", lsperrors.AdapterDecode, decodeErr)
	}
	return paths, nil
}

// run executes the binary under the configured timeout and returns stdout.
// An exit error with non-empty stdout is passed through for decoding; the
// caller decides whether the payload is usable.
func (r *Runner) run(ctx context.Context, op string, args []string) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return nil, lsperrors.NewAdapterError(op, lsperrors.AdapterTimeout, runCtx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stdout.Len() > 0 {
			return stdout.Bytes(), nil
		}
		return nil, lsperrors.NewAdapterError(op, lsperrors.AdapterProcess, err)
	}
	return stdout.Bytes(), nil
}
