package types

// ArtifactKind identifies what sort of declaration a manifest expects a
// source file to contain.
type ArtifactKind string

const (
	KindFunction  ArtifactKind = "function"
	KindClass     ArtifactKind = "class"
	KindAttribute ArtifactKind = "attribute"
)

// Valid reports whether the kind is one of the recognized artifact kinds.
func (k ArtifactKind) Valid() bool {
	switch k {
	case KindFunction, KindClass, KindAttribute:
		return true
	}
	return false
}

// ArtifactDescriptor identifies a named entity a manifest expects a source
// file to contain. Descriptors are built transiently per request, from either
// manifest JSON or a structural parse, and are never persisted.
type ArtifactDescriptor struct {
	Name string
	Kind ArtifactKind
	// OwningClass is set only when Kind is KindFunction and the function is
	// a method of that class.
	OwningClass string
}

// IsMethod reports whether the descriptor names a method rather than a
// module-level function.
func (d ArtifactDescriptor) IsMethod() bool {
	return d.Kind == KindFunction && d.OwningClass != ""
}

// SourceLocation is a precise span in a file. All line and column values are
// zero-based. Columns are byte offsets within a line; artifact identifiers
// are ASCII so byte and UTF-16 columns coincide.
//
// Invariant: StartLine <= EndLine, and StartColumn <= EndColumn when the
// span is on a single line.
type SourceLocation struct {
	FilePath    string `json:"file"` // absolute, canonicalized
	StartLine   int    `json:"startLine"`
	StartColumn int    `json:"startColumn"`
	EndLine     int    `json:"endLine"`
	EndColumn   int    `json:"endColumn"`
}

// LocationKey is the dedupe identity of a location: two references to the
// same start position in the same file are the same reference.
type LocationKey struct {
	FilePath  string
	StartLine int
	StartCol  int
}

// Key returns the dedupe identity of the location.
func (l SourceLocation) Key() LocationKey {
	return LocationKey{FilePath: l.FilePath, StartLine: l.StartLine, StartCol: l.StartColumn}
}

// ManifestArtifactSet is the parsed expectedArtifacts block of one manifest:
// the source file it governs and the artifacts that file must contain, in
// file order.
type ManifestArtifactSet struct {
	// SourceFile may be absolute, project-root-relative, or
	// manifest-relative; resolution order is the caller's concern.
	SourceFile string
	Contains   []ArtifactDescriptor
}

// Find returns the first artifact with the given name, in file order.
func (s ManifestArtifactSet) Find(name string) (ArtifactDescriptor, bool) {
	for _, a := range s.Contains {
		if a.Name == name {
			return a, true
		}
	}
	return ArtifactDescriptor{}, false
}
