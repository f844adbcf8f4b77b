package models

import "time"

// SheetsConfig is the Google Sheets export configuration, persisted in
// the terminal's local store. Credentials hold a service-account JSON
// key, encrypted at rest by the sheets service.
type SheetsConfig struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	IsEnabled      bool       `json:"is_enabled"`
	SpreadsheetID  string     `json:"spreadsheet_id"`
	SheetName      string     `json:"sheet_name"`
	Credentials    string     `json:"-"`
	AutoSync       bool       `json:"auto_sync"`
	SyncMode       string     `json:"sync_mode"`     // "interval" or "daily"
	SyncInterval   int        `json:"sync_interval"` // minutes, interval mode
	SyncTime       string     `json:"sync_time"`     // "23:00", daily mode
	LastSync       *time.Time `json:"last_sync,omitempty"`
	LastSyncStatus string     `json:"last_sync_status"`
	LastSyncError  string     `json:"last_sync_error,omitempty"`
	TotalSyncs     int        `json:"total_syncs"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
