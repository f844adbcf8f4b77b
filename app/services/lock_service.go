package services

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"PosTerminal/app/database"
)

// LockService implements the terminal lock screen. The PIN hash lives
// in the local store so the lock survives restarts; the locked flag is
// session state only.
type LockService struct {
	store  *database.LocalStore
	logger *LoggerService

	mu     sync.Mutex
	locked bool
}

// NewLockService creates a new lock service
func NewLockService(store *database.LocalStore, logger *LoggerService) *LockService {
	return &LockService{store: store, logger: logger}
}

// HasPIN reports whether a lock PIN has been configured
func (s *LockService) HasPIN() bool {
	hash, err := s.store.GetValue(database.KeyLockPINHash)
	return err == nil && hash != ""
}

// SetPIN hashes and stores a new lock PIN
func (s *LockService) SetPIN(pin string) error {
	if len(pin) < 4 {
		return fmt.Errorf("PIN must be at least 4 digits")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash PIN: %w", err)
	}

	if err := s.store.SetValue(database.KeyLockPINHash, string(hash)); err != nil {
		return fmt.Errorf("failed to store PIN: %w", err)
	}

	s.logger.LogInfo("Terminal lock PIN updated")
	return nil
}

// Lock engages the lock screen. Locking without a PIN is refused.
func (s *LockService) Lock() error {
	if !s.HasPIN() {
		return fmt.Errorf("no lock PIN configured")
	}

	s.mu.Lock()
	s.locked = true
	s.mu.Unlock()
	return nil
}

// Unlock verifies the PIN and releases the lock
func (s *LockService) Unlock(pin string) error {
	hash, err := s.store.GetValue(database.KeyLockPINHash)
	if err != nil || hash == "" {
		return fmt.Errorf("no lock PIN configured")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		s.logger.LogWarning("Failed unlock attempt")
		return fmt.Errorf("incorrect PIN")
	}

	s.mu.Lock()
	s.locked = false
	s.mu.Unlock()
	return nil
}

// IsLocked reports whether the lock screen is engaged
func (s *LockService) IsLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// ClearPIN removes the stored PIN and releases any active lock
func (s *LockService) ClearPIN() error {
	if err := s.store.DeleteValue(database.KeyLockPINHash); err != nil {
		return fmt.Errorf("failed to clear PIN: %w", err)
	}

	s.mu.Lock()
	s.locked = false
	s.mu.Unlock()
	return nil
}
