package cli

import (
	"sync"

	"github.com/spec-kit/vaccine-scheduler/internal/domain"
	apperrors "github.com/spec-kit/vaccine-scheduler/pkg/util/errorutil"
)

// Session holds the single authenticated identity for a console. At
// most one identity is active at a time; login sets it, logout clears
// it, everything else only reads it. The HTTP API does not use this:
// there identity rides each request in its token.
type Session struct {
	mu       sync.Mutex
	identity *domain.Identity
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// Login activates an identity. Fails if one is already active, even
// for the same user.
func (s *Session) Login(identity domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity != nil {
		return apperrors.NewAlreadyLoggedIn()
	}
	s.identity = &identity
	return nil
}

// Logout clears the active identity.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return apperrors.NewNoActiveSession()
	}
	s.identity = nil
	return nil
}

// Current returns the active identity, if any.
func (s *Session) Current() (domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return domain.Identity{}, false
	}
	return *s.identity, true
}
