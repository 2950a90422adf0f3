package server

import (
	"sync"

	"site_cms/editor"
	"site_cms/generator"
	"site_cms/metrics"
)

// entry is one open authoring session. mu serialises commands on it.
type entry struct {
	mu     sync.Mutex
	editor *editor.Session
	draft  *generator.Session
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*entry
}

func newStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*entry)}
}

func (s *sessionStore) set(id string, e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		metrics.EditorSessions.Inc()
	}
	s.sessions[id] = e
}

func (s *sessionStore) get(id string) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	return e, ok
}

func (s *sessionStore) remove(id string) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
		metrics.EditorSessions.Dec()
	}
	return e, ok
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
