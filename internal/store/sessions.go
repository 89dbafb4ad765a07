package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"care-companion/pkg"
)

// DefaultSession is the name of the session that always exists when
// nothing else does.
const DefaultSession = "default"

// SessionStore maps session names to ordered turns and mirrors the whole
// mapping to a single JSON file.  It is not safe for concurrent use.
type SessionStore struct {
	file     *jsonFile
	sessions map[string][]pkg.Turn
}

// NewSessionStore returns a store backed by path holding only the default
// session until Load is called.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{
		file:     newJSONFile(path),
		sessions: map[string][]pkg.Turn{DefaultSession: {}},
	}
}

// Load reads the backing file.  A missing file yields {"default": []}.  An
// unreadable file yields the same default plus an error wrapping
// ErrUnreadable.
func (s *SessionStore) Load() (map[string][]pkg.Turn, error) {
	var sessions map[string][]pkg.Turn
	exists, err := s.file.read(&sessions)
	if err != nil || !exists || len(sessions) == 0 {
		s.sessions = map[string][]pkg.Turn{DefaultSession: {}}
		return s.snapshot(), err
	}
	s.sessions = normalise(sessions)
	return s.snapshot(), nil
}

// Save writes the current mapping to the backing file.
func (s *SessionStore) Save() error {
	return s.file.locked(func() error { return s.file.write(s.sessions) })
}

// Replace swaps in sessions wholesale and saves them.
func (s *SessionStore) Replace(sessions map[string][]pkg.Turn) error {
	next := normalise(copySessions(sessions))
	if len(next) == 0 {
		next[DefaultSession] = []pkg.Turn{}
	}
	if err := s.file.locked(func() error { return s.file.write(next) }); err != nil {
		return err
	}
	s.sessions = next
	return nil
}

// Has reports whether a session exists.
func (s *SessionStore) Has(name string) bool {
	_, ok := s.sessions[name]
	return ok
}

// Names returns the session names in sorted order.
func (s *SessionStore) Names() []string {
	names := make([]string, 0, len(s.sessions))
	for name := range s.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Turns returns a copy of the turns of a session.
func (s *SessionStore) Turns(name string) ([]pkg.Turn, error) {
	turns, ok := s.sessions[name]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", name, ErrNotFound)
	}
	return append([]pkg.Turn{}, turns...), nil
}

// Create adds an empty session.  Creating an existing session is a no-op.
func (s *SessionStore) Create(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("session name must not be empty")
	}
	if s.Has(name) {
		return nil
	}
	return s.mutate(func(m map[string][]pkg.Turn) {
		if _, ok := m[name]; !ok {
			m[name] = []pkg.Turn{}
		}
	})
}

// Delete removes a session and returns the session that should be active
// afterwards.  If the deleted session was active the first remaining name
// is chosen; deleting the last session recreates an empty default.
func (s *SessionStore) Delete(name, active string) (string, error) {
	if !s.Has(name) {
		return active, fmt.Errorf("session %q: %w", name, ErrNotFound)
	}
	err := s.mutate(func(m map[string][]pkg.Turn) {
		delete(m, name)
		if len(m) == 0 {
			m[DefaultSession] = []pkg.Turn{}
		}
	})
	if err != nil {
		return active, err
	}
	if active != name && s.Has(active) {
		return active, nil
	}
	return s.Names()[0], nil
}

// Append adds turns to the end of a session, creating it on first
// reference, and persists the store.
func (s *SessionStore) Append(name string, turns ...pkg.Turn) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("session name must not be empty")
	}
	return s.mutate(func(m map[string][]pkg.Turn) {
		m[name] = append(m[name], turns...)
	})
}

func (s *SessionStore) mutate(fn func(map[string][]pkg.Turn)) error {
	return s.file.locked(func() error {
		next := copySessions(s.sessions)
		var onDisk map[string][]pkg.Turn
		if exists, err := s.file.read(&onDisk); err == nil && exists && len(onDisk) > 0 {
			next = normalise(onDisk)
		}
		fn(next)
		if err := s.file.write(next); err != nil {
			return err
		}
		s.sessions = next
		return nil
	})
}

func (s *SessionStore) snapshot() map[string][]pkg.Turn {
	return copySessions(s.sessions)
}

func copySessions(in map[string][]pkg.Turn) map[string][]pkg.Turn {
	out := make(map[string][]pkg.Turn, len(in))
	for name, turns := range in {
		out[name] = append([]pkg.Turn{}, turns...)
	}
	return out
}

func normalise(m map[string][]pkg.Turn) map[string][]pkg.Turn {
	if m == nil {
		return map[string][]pkg.Turn{}
	}
	for name, turns := range m {
		if turns == nil {
			m[name] = []pkg.Turn{}
		}
	}
	return m
}
