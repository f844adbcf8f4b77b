package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"PosTerminal/app/api"
	"PosTerminal/app/database"
)

// IdentityProvider resolves the logged-in user from the session token.
// The draft workflow and customer directory depend on this capability
// instead of decoding tokens themselves.
type IdentityProvider interface {
	// CurrentUserID returns 0 when no identity can be resolved
	CurrentUserID() int
	CurrentUserName() string
}

// AuthService handles login against the ERP backend and owns the
// persisted session state (token, username, user id, one-shot flag).
type AuthService struct {
	client  *api.Client
	store   *database.LocalStore
	session *SessionService
	logger  *LoggerService
}

// NewAuthService creates a new auth service
func NewAuthService(client *api.Client, store *database.LocalStore, session *SessionService, logger *LoggerService) *AuthService {
	return &AuthService{client: client, store: store, session: session, logger: logger}
}

// Token returns the stored bearer token, preferring the current key and
// falling back to the legacy one.
func (s *AuthService) Token() string {
	for _, key := range []string{database.KeyAccessToken, database.KeyToken} {
		if token, err := s.store.GetSecret(key); err == nil && token != "" {
			return token
		}
	}
	return ""
}

// PrepareLogin clears stale session state, as the login screen does on
// entry: session flag, token and cached user id all go.
func (s *AuthService) PrepareLogin() {
	s.session.Clear()
	s.store.DeleteValue(database.KeyAccessToken)
	s.store.DeleteValue(database.KeyToken)
	s.store.DeleteValue(database.KeyUserID)
}

// Login exchanges credentials for a session. The entered username is
// sent as the email field; the backend accepts either.
func (s *AuthService) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}

	s.store.DeleteValue(database.KeyAccessToken)
	s.store.DeleteValue(database.KeyToken)
	s.store.DeleteValue(database.KeyUserID)

	result, err := s.client.Login(ctx, username, password)
	if err != nil {
		s.logger.LogError("Login failed", err)
		return err
	}

	if err := s.store.SetSecret(database.KeyAccessToken, result.Token); err != nil {
		return fmt.Errorf("could not store session token: %w", err)
	}
	s.store.SetValue(database.KeyUsername, username)
	if result.UserID > 0 {
		s.store.SetValue(database.KeyUserID, strconv.Itoa(result.UserID))
	} else {
		s.logger.LogWarning("No user ID found in login response")
	}
	s.store.SetValue(database.KeyLoginSuccess, "true")

	s.session.SetAuthenticated(true)
	s.logger.LogInfo("Login successful", "User: "+username)
	return nil
}

// ConsumeLoginSuccess reads and clears the one-shot "just logged in"
// flag the main menu uses to show its welcome state exactly once.
func (s *AuthService) ConsumeLoginSuccess() bool {
	v, err := s.store.GetValue(database.KeyLoginSuccess)
	if err != nil || v != "true" {
		return false
	}
	s.store.DeleteValue(database.KeyLoginSuccess)
	return true
}

// Logout drops the session and all persisted credentials
func (s *AuthService) Logout() {
	s.session.Clear()
	s.store.DeleteValue(database.KeyAccessToken)
	s.store.DeleteValue(database.KeyToken)
	s.store.DeleteValue(database.KeyUserID)
	s.store.DeleteValue(database.KeyLoginSuccess)
	s.logger.LogInfo("Logged out")
}

// currentClaims decodes the stored token's payload without verifying
// the signature; the backend is the authority, the terminal only needs
// the identity claims for display and audit fields.
func (s *AuthService) currentClaims() jwt.MapClaims {
	token := s.Token()
	if token == "" {
		return nil
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}

// CurrentUserID resolves the user id from the token claims, probing
// sub, user_id and id in that order. Returns 0 when unresolvable.
func (s *AuthService) CurrentUserID() int {
	claims := s.currentClaims()
	if claims == nil {
		return 0
	}
	for _, key := range []string{"sub", "user_id", "id"} {
		if id := claimInt(claims[key]); id > 0 {
			return id
		}
	}
	return 0
}

// CurrentUserName resolves a display name from the token claims. An
// email address is reduced to its local part.
func (s *AuthService) CurrentUserName() string {
	claims := s.currentClaims()
	value := "User"
	if claims != nil {
		for _, key := range []string{"username", "name", "email"} {
			if v, ok := claims[key].(string); ok && v != "" {
				value = v
				break
			}
		}
	}

	if at := strings.Index(value, "@"); at >= 0 {
		return value[:at]
	}
	return value
}

// claimInt converts a JWT claim value to an int across the encodings
// backends use for identifiers.
func claimInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed
		}
	}
	return 0
}
