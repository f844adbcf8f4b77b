// Package database owns the terminal's local SQLite store. The ERP
// backend is the source of truth for all business data; this store only
// keeps what a browser would keep in localStorage: the session token,
// cached identifiers, the offline draft blob and terminal settings.
package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"PosTerminal/app/models"
	"PosTerminal/app/security"
)

// Fixed keys of the key-value store. They mirror what the terminal
// would keep under localStorage keys in a browser deployment.
const (
	KeyAccessToken  = "access_token"
	KeyToken        = "token"
	KeyUsername     = "username"
	KeyUserID       = "user_id"
	KeyLoginSuccess = "loginSuccess"
	KeyOutletID     = "outlet_id"
	KeyOfflineDraft = "pos_local_draft_invoice"
	KeyLockPINHash  = "lock_pin_hash"
)

// KVEntry is one row of the key-value store
type KVEntry struct {
	Key       string    `gorm:"primaryKey"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LocalStore manages the local SQLite database
type LocalStore struct {
	db   *gorm.DB
	path string
}

// DefaultPath returns the store location under the user's AppData
func DefaultPath() string {
	appData := os.Getenv("APPDATA")
	if appData == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join("data", "local.db")
		}
		appData = filepath.Join(homeDir, "AppData", "Roaming")
	}
	return filepath.Join(appData, "PosTerminal", "data", "local.db")
}

// Open opens (and migrates) the local store at dbPath
func Open(dbPath string) (*LocalStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// CGO-free driver
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}

	store := &LocalStore{db: db, path: dbPath}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run local migrations: %w", err)
	}

	return store, nil
}

func (s *LocalStore) migrate() error {
	return s.db.AutoMigrate(
		&KVEntry{},
		&models.SheetsConfig{},
	)
}

// DB exposes the underlying connection for services that keep their own
// configuration tables in the local store.
func (s *LocalStore) DB() *gorm.DB {
	return s.db
}

// GetValue reads a key, returning "" when it was never set
func (s *LocalStore) GetValue(key string) (string, error) {
	var entry KVEntry
	err := s.db.First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return entry.Value, nil
}

// SetValue writes a key. Last writer wins, same as localStorage.
func (s *LocalStore) SetValue(key, value string) error {
	entry := KVEntry{Key: key, Value: value}
	return s.db.Save(&entry).Error
}

// DeleteValue removes a key; removing an absent key is not an error
func (s *LocalStore) DeleteValue(key string) error {
	return s.db.Delete(&KVEntry{}, "key = ?", key).Error
}

// SetSecret stores a value encrypted at rest
func (s *LocalStore) SetSecret(key, value string) error {
	if value == "" {
		return s.DeleteValue(key)
	}
	sealed, err := security.Encrypt(value)
	if err != nil {
		return fmt.Errorf("could not encrypt %s: %w", key, err)
	}
	return s.SetValue(key, sealed)
}

// GetSecret reads an encrypted value. A value that fails to decrypt is
// returned as-is so plain-text rows from older versions keep working.
func (s *LocalStore) GetSecret(key string) (string, error) {
	sealed, err := s.GetValue(key)
	if err != nil || sealed == "" {
		return "", err
	}
	plain, err := security.Decrypt(sealed)
	if err != nil {
		return sealed, nil
	}
	return plain, nil
}

// Close closes the underlying connection
func (s *LocalStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
