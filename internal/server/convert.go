package server

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/standardbeagle/manifest-lsp/internal/types"
	"github.com/standardbeagle/manifest-lsp/pkg/pathutil"
)

func toProtocolRange(loc types.SourceLocation) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{
			Line:      uint32(loc.StartLine),
			Character: uint32(loc.StartColumn),
		},
		End: protocol.Position{
			Line:      uint32(loc.EndLine),
			Character: uint32(loc.EndColumn),
		},
	}
}

func toProtocolLocation(loc types.SourceLocation) protocol.Location {
	return protocol.Location{
		URI:   protocol.DocumentUri(pathutil.PathToURI(loc.FilePath)),
		Range: toProtocolRange(loc),
	}
}

func toProtocolLocations(locs []types.SourceLocation) []protocol.Location {
	out := make([]protocol.Location, 0, len(locs))
	for _, loc := range locs {
		out = append(out, toProtocolLocation(loc))
	}
	return out
}
