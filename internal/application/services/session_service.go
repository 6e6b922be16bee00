// Package services provides application-level services that orchestrate
// experiment logic and coordinate between repositories and domain entities.
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/tonecanvas/tonecanvas-go/internal/domain/entities/session"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/caching/stores"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/logging"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/observability/performance"
	"github.com/tonecanvas/tonecanvas-go/internal/infrastructure/security"
)

// ErrInvalidToken is returned when a presented session token cannot be used.
var ErrInvalidToken = errors.New("invalid or expired session token")

// SessionToken is handed to clients that start their own session.
type SessionToken struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// SessionService creates sessions and resolves tokens back to them.
type SessionService struct {
	store       *stores.SessionsStore
	secret      string
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewSessionService creates a new session service
func NewSessionService(store *stores.SessionsStore, secret string, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SessionService {
	return &SessionService{
		store:       store,
		secret:      secret,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// CreateSession registers a new session and signs its token.
func (s *SessionService) CreateSession() (*SessionToken, error) {
	start := time.Now()
	marker := s.perfTracker.StartOperation("create_session", "")
	defer marker.Complete()

	sess := s.store.Create()
	token, err := s.TokenFor(sess)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}
	marker.AddMetadata("sessionId", sess.ID)

	s.logger.Session().Info("Successfully created session", "sessionId", sess.ID, "expiresAt", sess.ExpiresAt(), "duration", time.Since(start))
	return &SessionToken{SessionID: sess.ID, Token: token, ExpiresAt: sess.ExpiresAt()}, nil
}

// TokenFor signs a token for an existing session.
func (s *SessionService) TokenFor(sess *session.Session) (string, error) {
	token, err := security.IssueSessionToken(sess.ID, s.secret, time.Now(), sess.ExpiresAt())
	if err != nil {
		return "", fmt.Errorf("failed to issue token for session %s: %w", sess.ID, err)
	}
	return token, nil
}

// Resolve maps a client token to its session. An empty token selects the
// default session.
func (s *SessionService) Resolve(token string) (*session.Session, error) {
	if token == "" {
		return s.store.Default(), nil
	}
	id, err := security.ParseSessionToken(token, s.secret)
	if err != nil {
		s.logger.Session().Debug("Rejected session token", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	sess, err := s.store.Get(id)
	if err != nil {
		s.logger.Session().Debug("Token refers to unknown session", "sessionId", id)
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return sess, nil
}

// Sessions returns all live sessions.
func (s *SessionService) Sessions() []*session.Session {
	return s.store.List()
}

// ActiveCount returns the number of live sessions, default included.
func (s *SessionService) ActiveCount() int {
	return len(s.store.List())
}
