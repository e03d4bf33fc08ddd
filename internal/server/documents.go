package server

import (
	"strings"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// documentStore keeps the text of open documents keyed by URI.
type documentStore struct {
	mu   sync.RWMutex
	docs map[string]string
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: make(map[string]string)}
}

func (s *documentStore) open(uri, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = text
}

func (s *documentStore) close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

func (s *documentStore) get(uri string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.docs[uri]
	return text, ok
}

// applyChanges folds content change events into the stored text. Whole
// events replace the document; ranged events splice into it.
func (s *documentStore) applyChanges(uri string, changes []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.docs[uri]
	for _, change := range changes {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		case protocol.TextDocumentContentChangeEvent:
			if c.Range == nil {
				text = c.Text
				continue
			}
			start := offsetAt(text, c.Range.Start)
			end := offsetAt(text, c.Range.End)
			text = text[:start] + c.Text + text[end:]
		}
	}
	s.docs[uri] = text
}

// offsetAt converts a protocol position to a byte offset, clamping to the
// document bounds.
func offsetAt(text string, pos protocol.Position) int {
	offset := 0
	line := uint32(0)
	for line < pos.Line {
		next := strings.IndexByte(text[offset:], '\n')
		if next < 0 {
			return len(text)
		}
		offset += next + 1
		line++
	}
	offset += int(pos.Character)
	if offset > len(text) {
		offset = len(text)
	}
	return offset
}
