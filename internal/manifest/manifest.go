// Package manifest reads the artifact declarations this engine navigates:
// each manifest names one source file, the artifacts it must contain, and an
// optional validation command. The package has no execution semantics; the
// validation command is only mined for test-file paths.
package manifest

import (
	"encoding/json"

	lsperrors "github.com/standardbeagle/manifest-lsp/internal/errors"
	"github.com/standardbeagle/manifest-lsp/internal/types"
)

// Manifest is one parsed manifest document, reduced to the fields the
// navigation engine reads.
type Manifest struct {
	Path              string
	Artifacts         types.ManifestArtifactSet
	ValidationCommand []string
}

// rawManifest mirrors the on-disk JSON shape.
type rawManifest struct {
	ExpectedArtifacts struct {
		File     string        `json:"file"`
		Contains []rawArtifact `json:"contains"`
	} `json:"expectedArtifacts"`
	ValidationCommand []string `json:"validationCommand"`
}

type rawArtifact struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Class string `json:"class"`
}

// Parse decodes manifest JSON. Artifact order is preserved as file order.
func Parse(data []byte, path string) (*Manifest, error) {
	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, lsperrors.NewManifestError(path, err)
	}

	m := &Manifest{
		Path:              path,
		ValidationCommand: raw.ValidationCommand,
		Artifacts: types.ManifestArtifactSet{
			SourceFile: raw.ExpectedArtifacts.File,
		},
	}
	for _, a := range raw.ExpectedArtifacts.Contains {
		m.Artifacts.Contains = append(m.Artifacts.Contains, types.ArtifactDescriptor{
			Name:        a.Name,
			Kind:        types.ArtifactKind(a.Type),
			OwningClass: a.Class,
		})
	}
	return m, nil
}

// FindArtifact returns the first declared artifact with the given name.
func (m *Manifest) FindArtifact(name string) (types.ArtifactDescriptor, bool) {
	return m.Artifacts.Find(name)
}
