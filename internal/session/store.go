// Package session keeps each bot user's in-progress brand draft.
package session

import (
	"sync"
	"time"

	"instagenie/internal/brand"
)

// Draft is what a user has told the bot so far. Palette is nil until a logo
// has been processed.
type Draft struct {
	LogoFilename string
	Palette      *brand.Palette
	CompanyName  string
	Industry     string
	ContentTheme string
	Tone         brand.Tone
}

func (d Draft) clone() Draft {
	if d.Palette != nil {
		p := d.Palette.Clone()
		d.Palette = &p
	}
	return d
}

// Key scopes a draft to one user in one chat.
type Key struct {
	ChatID int64
	UserID int64
}

type Session struct {
	Key          Key
	Username     string
	Draft        Draft
	Busy         bool
	LastActivity time.Time
}

type Options struct {
	TTL time.Duration
}

type Store struct {
	mu       sync.Mutex
	sessions map[Key]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(opts Options) *Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Store{
		sessions: make(map[Key]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *Store) Clear(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[key]; ok {
		sess.Draft = Draft{Tone: brand.ToneCreative}
		sess.LastActivity = s.now()
	}
}

// Snapshot returns a copy of the user's draft, creating an empty one on
// first contact.
func (s *Store) Snapshot(key Key, username string) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(key, username)
	sess.LastActivity = s.now()
	return sess.Draft.clone()
}

// Update applies fn to the user's draft under the store lock.
func (s *Store) Update(key Key, username string, fn func(*Draft)) Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(key, username)
	sess.LastActivity = s.now()
	fn(&sess.Draft)
	return sess.Draft.clone()
}

// TryBegin marks the user busy and reports whether they were idle. Callers
// that get true must call End.
func (s *Store) TryBegin(key Key, username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(key, username)
	if sess.Busy {
		return false
	}
	sess.Busy = true
	sess.LastActivity = s.now()
	return true
}

func (s *Store) End(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[key]; ok {
		sess.Busy = false
	}
}

// Prune drops idle sessions older than the TTL and returns how many went.
func (s *Store) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, sess := range s.sessions {
		if !sess.Busy && sess.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) getOrCreateLocked(key Key, username string) *Session {
	if sess, ok := s.sessions[key]; ok {
		if sess.Username == "" && username != "" {
			sess.Username = username
		}
		return sess
	}

	sess := &Session{
		Key:          key,
		Username:     username,
		Draft:        Draft{Tone: brand.ToneCreative},
		LastActivity: s.now(),
	}
	s.sessions[key] = sess
	return sess
}
