package memory

import (
	"sync"
	"time"

	"kidlingo-service/internal/quiz"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Sessions idle longer than ttl are evicted and closed; ttl <= 0 keeps them
// until removed.
type SessionStore struct {
	mu        sync.Mutex
	ttl       time.Duration
	clock     func() time.Time
	nextSweep time.Time
	sessions  map[string]*sessionEntry
}

type sessionEntry struct {
	session *quiz.Session
	touched time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// WithClock replaces the time source, for tests.
func (s *SessionStore) WithClock(clock func() time.Time) *SessionStore {
	s.clock = clock
	return s
}

func (s *SessionStore) Add(session *quiz.Session) {
	now := s.clock()
	s.mu.Lock()
	s.sessions[session.ID()] = &sessionEntry{session: session, touched: now}
	expired := s.sweepLocked(now)
	s.mu.Unlock()
	closeAll(expired)
}

func (s *SessionStore) Get(id string) (*quiz.Session, bool) {
	now := s.clock()
	s.mu.Lock()
	entry, ok := s.sessions[id]
	if ok && s.expired(entry, now) {
		delete(s.sessions, id)
		s.mu.Unlock()
		entry.session.Close()
		return nil, false
	}
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	return entry.session, true
}

// Touch marks the session as active.
func (s *SessionStore) Touch(session *quiz.Session) {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.sessions[session.ID()]; ok && entry.session == session {
		entry.touched = now
	}
}

// Remove drops the session and closes it so late results are discarded.
func (s *SessionStore) Remove(id string) {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		entry.session.Close()
	}
}

// Len is the number of sessions currently held.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) expired(entry *sessionEntry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(entry.touched) > s.ttl
}

// sweepLocked runs at most once per ttl.
func (s *SessionStore) sweepLocked(now time.Time) []*quiz.Session {
	if s.ttl <= 0 || now.Before(s.nextSweep) {
		return nil
	}
	s.nextSweep = now.Add(s.ttl)
	var expired []*quiz.Session
	for id, entry := range s.sessions {
		if s.expired(entry, now) {
			delete(s.sessions, id)
			expired = append(expired, entry.session)
		}
	}
	return expired
}

func closeAll(sessions []*quiz.Session) {
	for _, session := range sessions {
		session.Close()
	}
}
