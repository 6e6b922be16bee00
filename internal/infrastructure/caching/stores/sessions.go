// Package stores provides concrete in-memory store implementations
package stores

import (
	"sort"
	"sync"
	"time"

	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/session"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/security"
)

// SessionsStore keeps participant sessions in memory. The default session is
// created eagerly and never expires.
type SessionsStore struct {
	sessions map[string]*session.Session
	ttl      time.Duration
	now      func() time.Time
	mu       sync.RWMutex
	logger   *logging.ChanneledLogger
}

// NewSessionsStore creates a new sessions store
func NewSessionsStore(ttl time.Duration, logger *logging.ChanneledLogger) *SessionsStore {
	ss := &SessionsStore{
		sessions: make(map[string]*session.Session),
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
	ss.sessions[session.DefaultID] = session.New(session.DefaultID, 0, ss.now())
	if logger != nil {
		logger.Session().Info("Initializing sessions store", "ttl", ttl)
	}
	return ss
}

// SetClock replaces the time source.
func (ss *SessionsStore) SetClock(now func() time.Time) {
	ss.mu.Lock()
	ss.now = now
	ss.mu.Unlock()
}

// TTL returns the inactivity window for named sessions.
func (ss *SessionsStore) TTL() time.Duration {
	return ss.ttl
}

// Create registers a new session with a fresh ULID.
func (ss *SessionsStore) Create() *session.Session {
	start := time.Now()
	ss.mu.Lock()
	s := session.New(security.GenerateULID(), ss.ttl, ss.now())
	ss.sessions[s.ID] = s
	total := len(ss.sessions)
	ss.mu.Unlock()

	if ss.logger != nil {
		ss.logger.Session().Debug("Cache operation", "operation", "create", "sessionId", s.ID, "sessions", total, "duration", time.Since(start))
	}
	return s
}

// Default returns the shared session for tokenless clients.
func (ss *SessionsStore) Default() *session.Session {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return ss.sessions[session.DefaultID]
}

// Get returns a live session and slides its expiry.
func (ss *SessionsStore) Get(id string) (*session.Session, error) {
	start := time.Now()
	ss.mu.RLock()
	s, exists := ss.sessions[id]
	now := ss.now()
	ss.mu.RUnlock()

	if !exists || s.Expired(now) {
		if ss.logger != nil {
			ss.logger.Session().Debug("Cache operation", "operation", "get", "sessionId", id, "hit", false, "duration", time.Since(start))
		}
		return nil, session.ErrSessionNotFound
	}

	s.Touch(now, ss.ttl)
	if ss.logger != nil {
		ss.logger.Session().Debug("Cache operation", "operation", "get", "sessionId", id, "hit", true, "duration", time.Since(start))
	}
	return s, nil
}

// List returns live sessions ordered by creation time, default first.
func (ss *SessionsStore) List() []*session.Session {
	ss.mu.RLock()
	now := ss.now()
	out := make([]*session.Session, 0, len(ss.sessions))
	for _, s := range ss.sessions {
		if !s.Expired(now) {
			out = append(out, s)
		}
	}
	ss.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ID == session.DefaultID {
			return true
		}
		if out[j].ID == session.DefaultID {
			return false
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of stored sessions including expired ones not yet purged.
func (ss *SessionsStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// PurgeExpired removes expired sessions and returns how many were dropped.
func (ss *SessionsStore) PurgeExpired() int {
	start := time.Now()
	ss.mu.Lock()
	now := ss.now()
	var removed int
	for id, s := range ss.sessions {
		if id == session.DefaultID {
			continue
		}
		if s.Expired(now) {
			delete(ss.sessions, id)
			removed++
		}
	}
	remaining := len(ss.sessions)
	ss.mu.Unlock()

	if ss.logger != nil && removed > 0 {
		ss.logger.Session().Info("Purged expired sessions", "removed", removed, "remaining", remaining, "duration", time.Since(start))
	}
	return removed
}
