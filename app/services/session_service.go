package services

import "sync"

// Frontend route names the session guard knows about
const (
	RouteLogin    = "/"
	RouteMainMenu = "/main-menu"
)

// SessionService is the session guard: a process-scoped authenticated
// flag (the sessionStorage analogue) consulted on every route entry.
// It is deliberately not persisted; a terminal restart requires login.
type SessionService struct {
	mu            sync.Mutex
	authenticated bool
}

// NewSessionService creates a session service with no active session
func NewSessionService() *SessionService {
	return &SessionService{}
}

// SetAuthenticated flips the session flag after a successful login
func (s *SessionService) SetAuthenticated(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = v
}

// IsAuthenticated reports whether a session is active
func (s *SessionService) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Authorize decides whether a route may render. It returns the route to
// actually navigate to: the requested route for the login screen or an
// authenticated session, the login route otherwise. No side effects
// beyond that decision; re-evaluated on every route entry.
func (s *SessionService) Authorize(route string) string {
	if route == RouteLogin {
		return route
	}
	if s.IsAuthenticated() {
		return route
	}
	return RouteLogin
}

// Clear drops the session, as the login screen does on entry
func (s *SessionService) Clear() {
	s.SetAuthenticated(false)
}
