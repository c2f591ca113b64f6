package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/gogpu/ggedit"
)

// ErrNoSession is returned for an unknown or expired session id.
var ErrNoSession = errors.New("server: no such session")

type session struct {
	id       string
	editor   *ggedit.Editor
	lastUsed time.Time
}

// Store holds the live editor sessions. Sessions idle for longer than the
// TTL are dropped by Sweep.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration
	newEd    func() (*ggedit.Editor, error)
	now      func() time.Time
}

// NewStore creates a store whose sessions are built by newEditor.
// A ttl of zero disables expiry.
func NewStore(ttl time.Duration, newEditor func() (*ggedit.Editor, error)) *Store {
	return &Store{
		sessions: make(map[string]*session),
		ttl:      ttl,
		newEd:    newEditor,
		now:      time.Now,
	}
}

// Create starts a session and returns its id.
func (s *Store) Create() (string, *ggedit.Editor, error) {
	ed, err := s.newEd()
	if err != nil {
		return "", nil, err
	}
	id, err := newID()
	if err != nil {
		return "", nil, err
	}

	s.mu.Lock()
	s.sessions[id] = &session{id: id, editor: ed, lastUsed: s.now()}
	s.mu.Unlock()
	return id, ed, nil
}

// Get returns the editor of session id and marks it used.
func (s *Store) Get(id string) (*ggedit.Editor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNoSession
	}
	sess.lastUsed = s.now()
	return sess.editor, nil
}

// Touch marks session id used. It reports whether the session is live.
func (s *Store) Touch(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if ok {
		sess.lastUsed = s.now()
	}
	return ok
}

// Delete ends session id. It reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were dropped.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				ggedit.Logger().Info("sessions expired", "count", n, "live", s.Len())
			}
		}
	}
}

func newID() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
