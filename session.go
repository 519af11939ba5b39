package docsection

import (
	"context"
	"sync"
)

// Session holds the text of the most recently loaded document for one user
// of a front end. Loads are serialized; readers always see a complete text.
type Session struct {
	ex *Extractor

	loadMu sync.Mutex // held for a whole Load so requests never interleave

	mu        sync.RWMutex
	loaded    bool
	text      string
	path      string
	selection string
}

// NewSession creates an empty session backed by ex.
func NewSession(ex *Extractor) *Session {
	return &Session{ex: ex}
}

// Extractor returns the extractor backing the session.
func (s *Session) Extractor() *Extractor { return s.ex }

// Load extracts path with selection and, on success, replaces the session
// text. On failure the previous text is kept.
func (s *Session) Load(ctx context.Context, path, selection string) (string, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	text, err := s.ex.Extract(ctx, path, selection)
	if err != nil {
		return "", err
	}
	if selection == "" {
		selection = s.ex.cfg.DefaultBackend
	}

	s.mu.Lock()
	s.loaded = true
	s.text = text
	s.path = path
	s.selection = selection
	s.mu.Unlock()

	return text, nil
}

// Text returns the current document text, "" before the first Load.
func (s *Session) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// Source reports the path and selection of the current text.
func (s *Session) Source() (path, selection string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path, s.selection, s.loaded
}

// Search runs Search over the current text. It fails with ErrNoDocument
// before the first successful Load.
func (s *Session) Search(query string) ([]string, error) {
	s.mu.RLock()
	loaded, text := s.loaded, s.text
	s.mu.RUnlock()

	if !loaded {
		return nil, ErrNoDocument
	}
	return Search(text, query), nil
}
