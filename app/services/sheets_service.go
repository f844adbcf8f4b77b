package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"gorm.io/gorm"

	"PosTerminal/app/database"
	"PosTerminal/app/models"
	"PosTerminal/app/security"
)

// SheetsService exports daily invoice summaries to a Google Sheet. The
// service-account key is held encrypted in the local store.
type SheetsService struct {
	store   *database.LocalStore
	history *InvoiceHistoryService
	logger  *LoggerService
}

// NewSheetsService creates a new sheets export service
func NewSheetsService(store *database.LocalStore, history *InvoiceHistoryService, logger *LoggerService) *SheetsService {
	return &SheetsService{store: store, history: history, logger: logger}
}

// GetConfig retrieves the export configuration, creating a disabled
// default row on first access.
func (s *SheetsService) GetConfig() (*models.SheetsConfig, error) {
	var config models.SheetsConfig
	result := s.store.DB().First(&config)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			config = models.SheetsConfig{
				IsEnabled:      false,
				SheetName:      "Invoices",
				AutoSync:       false,
				SyncMode:       "interval",
				SyncInterval:   60,
				SyncTime:       "23:00",
				LastSyncStatus: "pending",
			}
			if err := s.store.DB().Create(&config).Error; err != nil {
				return nil, fmt.Errorf("failed to create default config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to get config: %w", result.Error)
		}
	}

	return &config, nil
}

// SaveConfig persists the export configuration. A non-empty
// credentialsJSON replaces the stored service-account key.
func (s *SheetsService) SaveConfig(config *models.SheetsConfig, credentialsJSON string) error {
	if credentialsJSON != "" {
		encrypted, err := security.Encrypt(credentialsJSON)
		if err != nil {
			return fmt.Errorf("failed to protect credentials: %w", err)
		}
		config.Credentials = encrypted
	}

	if config.ID == 0 {
		return s.store.DB().Create(config).Error
	}
	return s.store.DB().Save(config).Error
}

func (s *SheetsService) credentials(config *models.SheetsConfig) (string, error) {
	if config.Credentials == "" {
		return "", fmt.Errorf("missing credentials")
	}
	plain, err := security.Decrypt(config.Credentials)
	if err != nil {
		// Key written before encryption was introduced
		return config.Credentials, nil
	}
	return plain, nil
}

func (s *SheetsService) newSheetsClient(ctx context.Context, config *models.SheetsConfig) (*sheets.Service, error) {
	key, err := s.credentials(config)
	if err != nil {
		return nil, err
	}

	creds, err := google.CredentialsFromJSON(ctx, []byte(key), sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("invalid service account credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

// TestConnection verifies the credentials can open the spreadsheet
func (s *SheetsService) TestConnection(config *models.SheetsConfig) error {
	if config.SpreadsheetID == "" {
		return fmt.Errorf("missing spreadsheet ID")
	}

	ctx := context.Background()
	srv, err := s.newSheetsClient(ctx, config)
	if err != nil {
		return err
	}

	if _, err := srv.Spreadsheets.Get(config.SpreadsheetID).Do(); err != nil {
		return fmt.Errorf("unable to access spreadsheet: %w", err)
	}
	return nil
}

// DailySummary is one exported row, aggregated per calendar day
type DailySummary struct {
	Date       string  `json:"date"`
	Invoices   int     `json:"invoices"`
	TotalSales float64 `json:"total_sales"`
	PaidTotal  float64 `json:"paid_total"`
	Pending    int     `json:"pending"`
	Cancelled  int     `json:"cancelled"`
}

// BuildDailySummary aggregates the invoice list for one calendar day.
// Cancelled invoices are counted but excluded from the money totals.
func (s *SheetsService) BuildDailySummary(invoices []models.Invoice, date time.Time) *DailySummary {
	day := date.Format("2006-01-02")
	summary := &DailySummary{Date: day}

	for _, invoice := range invoices {
		if invoiceDay(invoice.CreatedAt) != day {
			continue
		}
		summary.Invoices++

		status := models.NormalizeStatus(invoice.Status)
		if status == models.StatusCancelled || status == models.StatusCancelledAlt {
			summary.Cancelled++
			continue
		}
		if status == models.StatusPending {
			summary.Pending++
		}
		if invoice.TotalAmount != nil {
			summary.TotalSales += invoice.TotalAmount.InexactFloat64()
		}
		if invoice.PaidAmount != nil {
			summary.PaidTotal += invoice.PaidAmount.InexactFloat64()
		}
	}

	return summary
}

// invoiceDay extracts the calendar day from a backend timestamp, which
// may come back in RFC3339 or a bare date form.
func invoiceDay(createdAt string) string {
	createdAt = strings.TrimSpace(createdAt)
	if len(createdAt) >= 10 {
		if _, err := time.Parse("2006-01-02", createdAt[:10]); err == nil {
			return createdAt[:10]
		}
	}
	return ""
}

// findExistingRowIndex finds the 1-indexed row for a date, -1 if absent
func (s *SheetsService) findExistingRowIndex(srv *sheets.Service, config *models.SheetsConfig, date string) (int, error) {
	sheetRange := fmt.Sprintf("%s!A:A", config.SheetName)
	resp, err := srv.Spreadsheets.Values.Get(config.SpreadsheetID, sheetRange).Do()
	if err != nil {
		return -1, err
	}

	for i, row := range resp.Values {
		if len(row) > 0 {
			if dateStr, ok := row[0].(string); ok && dateStr == date {
				return i + 1, nil
			}
		}
	}
	return -1, nil
}

// SendSummary writes one daily row, updating in place when the day was
// already exported.
func (s *SheetsService) SendSummary(config *models.SheetsConfig, summary *DailySummary) error {
	if !config.IsEnabled {
		return fmt.Errorf("sheets export is disabled")
	}
	if config.SpreadsheetID == "" {
		return fmt.Errorf("missing spreadsheet ID")
	}

	ctx := context.Background()
	srv, err := s.newSheetsClient(ctx, config)
	if err != nil {
		return err
	}

	if err := s.ensureHeaders(srv, config); err != nil {
		return fmt.Errorf("failed to ensure headers: %w", err)
	}

	row := []interface{}{
		summary.Date,
		summary.Invoices,
		summary.TotalSales,
		summary.PaidTotal,
		summary.Pending,
		summary.Cancelled,
	}

	rowIndex, err := s.findExistingRowIndex(srv, config, summary.Date)
	if err != nil {
		return fmt.Errorf("failed to check existing row: %w", err)
	}

	valueRange := &sheets.ValueRange{Values: [][]interface{}{row}}

	if rowIndex > 0 {
		sheetRange := fmt.Sprintf("%s!A%d:F%d", config.SheetName, rowIndex, rowIndex)
		_, err = srv.Spreadsheets.Values.Update(config.SpreadsheetID, sheetRange, valueRange).
			ValueInputOption("USER_ENTERED").
			Do()
		if err != nil {
			return fmt.Errorf("unable to update data: %w", err)
		}
	} else {
		sheetRange := fmt.Sprintf("%s!A:F", config.SheetName)
		_, err = srv.Spreadsheets.Values.Append(config.SpreadsheetID, sheetRange, valueRange).
			ValueInputOption("USER_ENTERED").
			Do()
		if err != nil {
			return fmt.Errorf("unable to append data: %w", err)
		}
	}

	now := time.Now()
	config.LastSync = &now
	config.LastSyncStatus = "success"
	config.LastSyncError = ""
	config.TotalSyncs++
	s.store.DB().Save(config)

	return nil
}

// ensureHeaders writes the header row when the sheet is empty
func (s *SheetsService) ensureHeaders(srv *sheets.Service, config *models.SheetsConfig) error {
	sheetRange := fmt.Sprintf("%s!A1:F1", config.SheetName)
	resp, err := srv.Spreadsheets.Values.Get(config.SpreadsheetID, sheetRange).Do()
	if err != nil {
		return err
	}

	if len(resp.Values) == 0 || len(resp.Values[0]) < 6 {
		headers := []interface{}{
			"date",
			"invoices",
			"total_sales",
			"paid_total",
			"pending",
			"cancelled",
		}
		valueRange := &sheets.ValueRange{Values: [][]interface{}{headers}}
		_, err := srv.Spreadsheets.Values.Update(config.SpreadsheetID, sheetRange, valueRange).
			ValueInputOption("USER_ENTERED").
			Do()
		return err
	}

	return nil
}

// SyncNow exports today's summary immediately
func (s *SheetsService) SyncNow(ctx context.Context) error {
	config, err := s.GetConfig()
	if err != nil {
		return err
	}
	if !config.IsEnabled {
		return fmt.Errorf("sheets export is disabled")
	}

	invoices := s.history.LoadAll(ctx)
	summary := s.BuildDailySummary(invoices, time.Now())

	if err := s.SendSummary(config, summary); err != nil {
		now := time.Now()
		config.LastSync = &now
		config.LastSyncStatus = "error"
		config.LastSyncError = err.Error()
		s.store.DB().Save(config)
		return fmt.Errorf("failed to export summary: %w", err)
	}

	return nil
}
