package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(ErrNotFound) {
		t.Error("IsNotFound(ErrNotFound) = false")
	}
	wrapped := fmt.Errorf("artifact %q: %w", "run", ErrNotFound)
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound(wrapped) = false")
	}
	if IsNotFound(errors.New("other")) {
		t.Error("IsNotFound(other) = true")
	}
}

func TestParseErrorUnwrap(t *testing.T) {
	underlying := errors.New("syntax error")
	err := NewParseError("/project/src/mod.py", underlying)
	if !errors.Is(err, underlying) {
		t.Error("ParseError does not unwrap to underlying error")
	}
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Path != "/project/src/mod.py" {
		t.Errorf("errors.As(ParseError) path = %q", pe.Path)
	}
}

func TestManifestErrorUnwrap(t *testing.T) {
	err := NewManifestError("/project/manifests/a.manifest.json", fs.ErrNotExist)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("ManifestError does not unwrap to fs.ErrNotExist")
	}
}

func TestAdapterErrorKinds(t *testing.T) {
	timeout := NewAdapterError("manifests", AdapterTimeout, errors.New("deadline exceeded"))
	if !IsTimeout(timeout) {
		t.Error("IsTimeout(timeout) = false")
	}

	decode := NewAdapterError("validate", AdapterDecode, errors.New("invalid character"))
	if IsTimeout(decode) {
		t.Error("IsTimeout(decode) = true")
	}

	wrapped := fmt.Errorf("resolution failed: %w", timeout)
	if !IsTimeout(wrapped) {
		t.Error("IsTimeout(wrapped) = false")
	}
}
