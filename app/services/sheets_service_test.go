package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"PosTerminal/app/models"
)

func amount(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestBuildDailySummary(t *testing.T) {
	svc := &SheetsService{}
	day := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	invoices := []models.Invoice{
		{ID: 1, Status: "PENDING", CreatedAt: "2026-08-30T09:00:00Z", TotalAmount: amount("100"), PaidAmount: amount("40")},
		{ID: 2, Status: "SENT", CreatedAt: "2026-08-30T10:00:00Z", TotalAmount: amount("50")},
		{ID: 3, Status: "CANCELLED", CreatedAt: "2026-08-30T11:00:00Z", TotalAmount: amount("999")},
		{ID: 4, Status: "ACTIVE", CreatedAt: "2026-08-29T11:00:00Z", TotalAmount: amount("70")},
		{ID: 5, Status: "ACTIVE", CreatedAt: "", TotalAmount: amount("10")},
	}

	summary := svc.BuildDailySummary(invoices, day)

	if summary.Date != "2026-08-30" {
		t.Errorf("Date = %q", summary.Date)
	}
	if summary.Invoices != 3 {
		t.Errorf("Invoices = %d, want 3", summary.Invoices)
	}
	// Cancelled invoice counted but excluded from money totals
	if summary.Cancelled != 1 {
		t.Errorf("Cancelled = %d, want 1", summary.Cancelled)
	}
	if summary.TotalSales != 150 {
		t.Errorf("TotalSales = %v, want 150", summary.TotalSales)
	}
	if summary.PaidTotal != 40 {
		t.Errorf("PaidTotal = %v, want 40", summary.PaidTotal)
	}
	// SENT normalizes to PENDING
	if summary.Pending != 2 {
		t.Errorf("Pending = %d, want 2", summary.Pending)
	}
}

func TestInvoiceDay(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2026-08-30T09:00:00Z", "2026-08-30"},
		{"2026-08-30 09:00:00", "2026-08-30"},
		{"2026-08-30", "2026-08-30"},
		{"", ""},
		{"yesterday", ""},
	}

	for _, tc := range cases {
		if got := invoiceDay(tc.in); got != tc.want {
			t.Errorf("invoiceDay(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGetConfigCreatesDefault(t *testing.T) {
	store := testStore(t)
	svc := NewSheetsService(store, nil, NewLoggerService())

	config, err := svc.GetConfig()
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}
	if config.IsEnabled {
		t.Error("default config must be disabled")
	}
	if config.SheetName != "Invoices" || config.SyncMode != "interval" || config.SyncInterval != 60 {
		t.Errorf("default config = %+v", config)
	}

	// Second call reads the same row back
	again, err := svc.GetConfig()
	if err != nil {
		t.Fatalf("GetConfig again: %v", err)
	}
	if again.ID != config.ID {
		t.Errorf("second GetConfig created a new row: %d != %d", again.ID, config.ID)
	}
}

func TestSaveConfigEncryptsCredentials(t *testing.T) {
	store := testStore(t)
	svc := NewSheetsService(store, nil, NewLoggerService())

	config, err := svc.GetConfig()
	if err != nil {
		t.Fatalf("GetConfig: %v", err)
	}

	keyJSON := `{"type":"service_account","project_id":"demo"}`
	if err := svc.SaveConfig(config, keyJSON); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if config.Credentials == keyJSON {
		t.Error("credentials stored in plaintext")
	}

	plain, err := svc.credentials(config)
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}
	if plain != keyJSON {
		t.Errorf("decrypted credentials = %q", plain)
	}
}
