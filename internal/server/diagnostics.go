package server

import (
	"context"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/standardbeagle/manifest-lsp/internal/manifest"
	"github.com/standardbeagle/manifest-lsp/internal/runner"
	"github.com/standardbeagle/manifest-lsp/pkg/pathutil"
)

const diagnosticSource = "maid"

// didSave validates saved manifests through the CLI adapter and publishes
// the findings as diagnostics. Non-manifest saves are ignored, and adapter
// failures clear nothing: stale diagnostics are better than flapping ones.
func (s *Server) didSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	path := pathutil.URIToPath(uri)
	if !pathutil.IsManifestFile(path) {
		return nil
	}

	// A manifest that does not decode gets a parse diagnostic directly;
	// no point invoking the validator on it.
	if content, ok := s.documentContent(uri, path); ok {
		if _, err := manifest.Parse(content, path); err != nil {
			severity := protocol.DiagnosticSeverityError
			source := diagnosticSource
			ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
				URI: params.TextDocument.URI,
				Diagnostics: []protocol.Diagnostic{{
					Range: protocol.Range{
						Start: protocol.Position{Line: 0, Character: 0},
						End:   protocol.Position{Line: 0, Character: 0},
					},
					Severity: &severity,
					Source:   &source,
					Message:  "manifest does not parse: " + err.Error(),
				}},
			})
			return nil
		}
	}

	result, err := s.runner.Validate(context.Background(), path, runner.ModeImplementation)
	if err != nil {
		s.log.Warningf("validation failed for %s: %v", path, err)
		return nil
	}

	issues := result.Issues()
	diagnostics := make([]protocol.Diagnostic, 0, len(issues))
	for _, issue := range issues {
		diagnostics = append(diagnostics, toDiagnostic(issue))
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: diagnostics,
	})
	return nil
}

func toDiagnostic(issue runner.ValidationIssue) protocol.Diagnostic {
	severity := severityFor(issue.Severity)
	source := diagnosticSource
	line := uint32(0)
	if issue.Line > 0 {
		line = uint32(issue.Line - 1)
	}
	col := uint32(0)
	if issue.Column > 0 {
		col = uint32(issue.Column - 1)
	}
	message := issue.Message
	if issue.Code != "" {
		message = issue.Code + ": " + message
	}
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: col},
			End:   protocol.Position{Line: line, Character: col},
		},
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

func severityFor(level string) protocol.DiagnosticSeverity {
	switch level {
	case "error":
		return protocol.DiagnosticSeverityError
	case "warning":
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}
