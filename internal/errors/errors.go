package errors

import (
	"errors"
	"fmt"
)

// ErrNotFound is the normal "no result" outcome for resolution: the cursor
// is not on a recognizable token, the artifact is absent, or the target file
// does not exist. The LSP boundary maps it to a null/empty response, never
// to a protocol error.
var ErrNotFound = errors.New("not found")

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ParseError reports an unparseable source file. During multi-file sweeps
// these are skipped per-file; only a single-target lookup treats one as a
// hard failure.
type ParseError struct {
	Path       string
	Underlying error
}

func NewParseError(path string, err error) *ParseError {
	return &ParseError{Path: path, Underlying: err}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed for %s: %v", e.Path, e.Underlying)
}

func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// ManifestError reports a manifest that could not be read or decoded.
type ManifestError struct {
	Path       string
	Underlying error
}

func NewManifestError(path string, err error) *ManifestError {
	return &ManifestError{Path: path, Underlying: err}
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Path, e.Underlying)
}

func (e *ManifestError) Unwrap() error {
	return e.Underlying
}

// AdapterFailureKind classifies external-tool failures.
type AdapterFailureKind string

const (
	AdapterTimeout AdapterFailureKind = "timeout"
	AdapterDecode  AdapterFailureKind = "decode"
	AdapterProcess AdapterFailureKind = "process"
)

// AdapterError reports a failed call to the external validation tool. The
// Kind distinguishes a timeout (process killed after the deadline), malformed
// JSON output, and a process that could not be started.
type AdapterError struct {
	Op         string // "validate" or "manifests"
	Kind       AdapterFailureKind
	Underlying error
}

func NewAdapterError(op string, kind AdapterFailureKind, err error) *AdapterError {
	return &AdapterError{Op: op, Kind: kind, Underlying: err}
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("runner %s failed (%s): %v", e.Op, e.Kind, e.Underlying)
}

func (e *AdapterError) Unwrap() error {
	return e.Underlying
}

// IsTimeout reports whether err is an adapter timeout.
func IsTimeout(err error) bool {
	var ae *AdapterError
	return errors.As(err, &ae) && ae.Kind == AdapterTimeout
}
