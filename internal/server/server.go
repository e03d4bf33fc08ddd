// Package server exposes the navigation engine over the Language Server
// Protocol: definition and references requests, document synchronization,
// and manifest validation diagnostics on save.
package server

import (
	"context"
	"os"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserv "github.com/tliron/glsp/server"

	"github.com/standardbeagle/manifest-lsp/internal/config"
	lsperrors "github.com/standardbeagle/manifest-lsp/internal/errors"
	"github.com/standardbeagle/manifest-lsp/internal/resolve"
	"github.com/standardbeagle/manifest-lsp/internal/runner"
	"github.com/standardbeagle/manifest-lsp/internal/search"
	"github.com/standardbeagle/manifest-lsp/internal/version"
	"github.com/standardbeagle/manifest-lsp/pkg/pathutil"
)

const serverName = "manifest-lsp"

// Server wires the document store, search engine, and resolver behind an
// LSP handler.
type Server struct {
	cfg      *config.Config
	docs     *documentStore
	engine   *search.Engine
	resolver *resolve.Resolver
	runner   *runner.Runner
	handler  protocol.Handler
	log      commonlog.Logger
}

// New builds a Server from the given configuration.
func New(cfg *config.Config) *Server {
	s := &Server{
		cfg:  cfg,
		docs: newDocumentStore(),
		log:  commonlog.GetLogger(serverName),
	}
	s.rebuild(cfg)
	s.handler = protocol.Handler{
		Initialize:             s.initialize,
		Initialized:            s.initialized,
		Shutdown:               s.shutdown,
		SetTrace:               s.setTrace,
		TextDocumentDidOpen:    s.didOpen,
		TextDocumentDidChange:  s.didChange,
		TextDocumentDidClose:   s.didClose,
		TextDocumentDidSave:    s.didSave,
		TextDocumentDefinition: s.definition,
		TextDocumentReferences: s.references,
	}
	return s
}

// rebuild derives the engine, resolver, and runner from a configuration.
// Called again when initialize reports a different workspace root.
func (s *Server) rebuild(cfg *config.Config) {
	s.cfg = cfg
	pctx := cfg.ProjectContext()
	s.runner = runner.New(cfg.Runner.Binary, cfg.RunnerTimeout())
	s.engine = search.New(pctx, cfg.Workers)
	s.resolver = resolve.New(pctx, s.runner)
}

// Run serves LSP over stdio until the client disconnects.
func (s *Server) Run() error {
	srv := glspserv.NewServer(&s.handler, serverName, false)
	return srv.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if params.RootURI != nil && *params.RootURI != "" {
		root := pathutil.URIToPath(string(*params.RootURI))
		if root != s.cfg.Project.Root {
			cfg, err := config.Load(root)
			if err != nil {
				s.log.Warningf("config load failed for %s, keeping current: %v", root, err)
			} else {
				s.rebuild(cfg)
			}
		}
	}

	capabilities := s.handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindFull
	openClose := true
	capabilities.TextDocumentSync = protocol.TextDocumentSyncOptions{
		OpenClose: &openClose,
		Change:    &syncKind,
		Save:      true,
	}

	ver := version.Version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &ver,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	s.log.Infof("serving workspace %s", s.cfg.Project.Root)
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.docs.open(string(params.TextDocument.URI), params.TextDocument.Text)
	return nil
}

func (s *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.docs.applyChanges(string(params.TextDocument.URI), params.ContentChanges)
	return nil
}

func (s *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.docs.close(string(params.TextDocument.URI))
	return nil
}

func (s *Server) definition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := string(params.TextDocument.URI)
	path := pathutil.URIToPath(uri)
	content, ok := s.documentContent(uri, path)
	if !ok {
		return nil, nil
	}

	loc, err := s.resolver.Resolve(context.Background(), path, content,
		int(params.Position.Line), int(params.Position.Character))
	if err != nil {
		if !lsperrors.IsNotFound(err) {
			s.log.Errorf("definition request failed for %s: %v", path, err)
		}
		return nil, nil
	}
	return toProtocolLocation(loc), nil
}

func (s *Server) references(ctx *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	uri := string(params.TextDocument.URI)
	path := pathutil.URIToPath(uri)
	content, ok := s.documentContent(uri, path)
	if !ok {
		return nil, nil
	}

	locs, err := s.engine.FindReferences(context.Background(), path, content,
		int(params.Position.Line), int(params.Position.Character))
	if err != nil {
		if !lsperrors.IsNotFound(err) {
			s.log.Errorf("references request failed for %s: %v", path, err)
		}
		return nil, nil
	}
	return toProtocolLocations(locs), nil
}

// documentContent prefers the open-document text over the on-disk copy.
func (s *Server) documentContent(uri, path string) ([]byte, bool) {
	if text, ok := s.docs.get(uri); ok {
		return []byte(text), true
	}
	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Debugf("no content for %s: %v", path, err)
		return nil, false
	}
	return data, true
}
