package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/learnportal/internal/client/models"
	"github.com/dmitrijs2005/learnportal/internal/logging"
)

var (
	// ErrInvalidSession is returned by Replace for a user without a token.
	ErrInvalidSession = errors.New("session has a user but no token")
	// ErrClosed is returned after Teardown.
	ErrClosed = errors.New("session store closed")
)

// Store is the process-wide {token, user} slot. Reads never observe a
// half-written session: Replace swaps the whole value under a lock.
type Store struct {
	mu      sync.RWMutex
	current models.Session
	storage TokenStorage
	logger  logging.Logger
	closed  bool
}

func NewStore(storage TokenStorage, logger logging.Logger) *Store {
	return &Store{storage: storage, logger: logger}
}

// Init loads the durable token into the slot and returns it. The user stays
// empty until a profile fetch confirms the token.
func (s *Store) Init(ctx context.Context) (string, error) {
	token, err := s.storage.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	s.current = models.Session{Token: token}
	s.logger.Debug(ctx, "session store initialized", "has_token", token != "")
	return token, nil
}

// Read returns a copy of the current session.
func (s *Store) Read() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Session{Token: s.current.Token, User: s.current.User.Clone()}
}

// Token returns the current bearer token, "" if none.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// Replace overwrites token and user together and persists the token, or
// clears durable storage when the new token is empty.
func (s *Store) Replace(ctx context.Context, next models.Session) error {
	if next.User != nil && next.Token == "" {
		return ErrInvalidSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	if next.Token == "" {
		if err := s.storage.Clear(ctx); err != nil {
			return fmt.Errorf("clear token: %w", err)
		}
	} else if next.Token != s.current.Token {
		if err := s.storage.Save(ctx, next.Token); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
	}

	s.current = models.Session{Token: next.Token, User: next.User.Clone()}
	return nil
}

// Clear is Replace with an empty session.
func (s *Store) Clear(ctx context.Context) error {
	return s.Replace(ctx, models.Session{})
}

// Teardown drops the in-memory session without touching durable storage.
// Later writes fail with ErrClosed.
func (s *Store) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = models.Session{}
	s.closed = true
}
