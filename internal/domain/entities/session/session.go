// Package session holds per-participant navigation state: the position in the
// playlist, the active user and the path of that user's record file.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/corpus"
)

// DefaultID identifies the shared session used by clients that send no token.
const DefaultID = "default"

var (
	ErrEmptyPlaylist   = errors.New("no stimuli available")
	ErrNoActiveUser    = errors.New("no active user for session")
	ErrSessionNotFound = errors.New("session not found")
)

// Session is the mutable state of one participant. All field access goes
// through the session mutex.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	userID       string
	dataFile     string
	index        int
	lastActiveAt time.Time
	expiresAt    time.Time // zero means never
}

// Progress is the playlist position reported to clients.
type Progress struct {
	TotalFiles   int `json:"total_files"`
	CurrentIndex int `json:"current_index"`
}

// Snapshot is a point-in-time copy used by the progress monitor.
type Snapshot struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	DataFile     string    `json:"data_file,omitempty"`
	CurrentIndex int       `json:"current_index"`
	TotalFiles   int       `json:"total_files"`
	FileName     string    `json:"file_name"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
}

// New creates a session. A ttl of zero makes it permanent.
func New(id string, ttl time.Duration, now time.Time) *Session {
	s := &Session{ID: id, CreatedAt: now, lastActiveAt: now}
	if ttl > 0 {
		s.expiresAt = now.Add(ttl)
	}
	return s
}

// Current returns the filename and index the session points at.
func (s *Session) Current(p *corpus.Playlist) (string, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := p.At(s.index)
	if !ok {
		return "", 0, ErrEmptyPlaylist
	}
	return name, s.index, nil
}

// Advance moves to the next stimulus, wrapping to the start.
func (s *Session) Advance(p *corpus.Playlist) (int, error) {
	n := p.Len()
	if n == 0 {
		return 0, ErrEmptyPlaylist
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = (s.index + 1) % n
	return s.index, nil
}

// Progress reports the playlist length and current index.
func (s *Session) Progress(p *corpus.Playlist) Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Progress{TotalFiles: p.Len(), CurrentIndex: s.index}
}

// Position returns the index and filename used to tag logged events. The
// filename is empty when the playlist is empty.
func (s *Session) Position(p *corpus.Playlist) (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, _ := p.At(s.index)
	return s.index, name
}

// BindUser makes userID the active user, recording to dataFile.
func (s *Session) BindUser(userID, dataFile string) {
	s.mu.Lock()
	s.userID = userID
	s.dataFile = dataFile
	s.mu.Unlock()
}

// Identity returns the active user and record path.
func (s *Session) Identity() (userID, dataFile string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.dataFile
}

// RequireUser returns the active identity or ErrNoActiveUser.
func (s *Session) RequireUser() (userID, dataFile string, err error) {
	userID, dataFile = s.Identity()
	if userID == "" {
		return "", "", ErrNoActiveUser
	}
	return userID, dataFile, nil
}

// Touch records activity and slides the expiry window.
func (s *Session) Touch(now time.Time, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActiveAt = now
	if !s.expiresAt.IsZero() && ttl > 0 {
		s.expiresAt = now.Add(ttl)
	}
}

// Expired reports whether the session has outlived its ttl.
func (s *Session) Expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.expiresAt.IsZero() && now.After(s.expiresAt)
}

// ExpiresAt returns the expiry, zero for permanent sessions.
func (s *Session) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

func (s *Session) Snapshot(p *corpus.Playlist) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, _ := p.At(s.index)
	return Snapshot{
		SessionID:    s.ID,
		UserID:       s.userID,
		DataFile:     s.dataFile,
		CurrentIndex: s.index,
		TotalFiles:   p.Len(),
		FileName:     name,
		CreatedAt:    s.CreatedAt,
		LastActiveAt: s.lastActiveAt,
		ExpiresAt:    s.expiresAt,
	}
}
