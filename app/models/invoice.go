package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Invoice statuses as the ERP backend knows them. Both CANCELLED
// spellings exist in the wild; the draft workflow tries the first and
// falls back to the second.
const (
	StatusActive       = "ACTIVE"
	StatusPending      = "PENDING"
	StatusSent         = "SENT"
	StatusCancelled    = "CANCELLED"
	StatusCancelledAlt = "CANCELED"
	StatusUnknown      = "UNKNOWN"
)

// NormalizeStatus maps backend status values onto the set the UI logic
// works with. Older backend versions return SENT for invoices that are
// still recallable, so SENT reads as PENDING.
func NormalizeStatus(status string) string {
	s := strings.ToUpper(strings.TrimSpace(status))
	if s == StatusSent {
		return StatusPending
	}
	if s == "" {
		return StatusUnknown
	}
	return s
}

// IsRecallable reports whether an invoice in the given status may be
// recalled into the draft screen.
func IsRecallable(status string) bool {
	st := NormalizeStatus(status)
	return st == StatusPending || st == StatusActive
}

// InvoiceUser is the creator reference embedded in invoice listings
type InvoiceUser struct {
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Invoice is the persisted invoice record as returned by the backend.
// Amounts are decimals because some backend versions serialize them as
// strings and some as numbers.
type Invoice struct {
	ID                 int              `json:"id"`
	InvoiceNo          string           `json:"invoice_no,omitempty"`
	PreviousInvoiceID  *int             `json:"previous_invoice_id,omitempty"`
	CustomerID         int              `json:"customer_id,omitempty"`
	CreatedUserID      int              `json:"created_user_id,omitempty"`
	Status             string           `json:"status"`
	PaidAmount         *decimal.Decimal `json:"paid_amount,omitempty"`
	TotalAmount        *decimal.Decimal `json:"total_amount,omitempty"`
	DiscountType       string           `json:"discount_type,omitempty"`
	DiscountAmount     *decimal.Decimal `json:"discount_amount,omitempty"`
	NextBoxNumber      *decimal.Decimal `json:"next_box_number,omitempty"`
	CreatedAt          string           `json:"created_at,omitempty"`
	UpdatedAt          string           `json:"updated_at,omitempty"`
	CreatedUser        *InvoiceUser     `json:"created_user,omitempty"`
	Customer           *Customer        `json:"customer,omitempty"`
	Items              []InvoiceItem    `json:"invoice_items,omitempty"`
}

// CreatorName returns the creator's display name, empty when absent
func (inv *Invoice) CreatorName() string {
	if inv == nil || inv.CreatedUser == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimSpace(inv.CreatedUser.FirstName) + " " + strings.TrimSpace(inv.CreatedUser.LastName))
}

// InvoiceItem is a persisted invoice line. Display fields may live on
// the line itself or on the embedded stock depending on the backend
// version; the draft workflow remaps them field by field on recall.
type InvoiceItem struct {
	ID           int              `json:"id,omitempty"`
	StockID      int              `json:"stock_id,omitempty"`
	Quantity     *decimal.Decimal `json:"quantity,omitempty"`
	SellingPrice *decimal.Decimal `json:"selling_price,omitempty"`
	SKU          string           `json:"sku,omitempty"`
	Name         string           `json:"name,omitempty"`
	Description  string           `json:"description,omitempty"`
	Stock        *Stock           `json:"stock,omitempty"`

	// Variant keys used when the line was shaped by an older client
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
	Qty       *decimal.Decimal `json:"qty,omitempty"`
}

// CreateInvoicePayload is the request body for POST /pos/invoice
type CreateInvoicePayload struct {
	CustomerID        int      `json:"customer_id"`
	CreatedUserID     int      `json:"created_user_id"`
	Status            string   `json:"status"`
	PreviousInvoiceID *int     `json:"previous_invoice_id"`
	PaidAmount        *float64 `json:"paid_amount,omitempty"`
	TotalAmount       float64  `json:"total_amount"`
	DiscountType      string   `json:"discount_type,omitempty"`
	DiscountAmount    *float64 `json:"discount_amount,omitempty"`
	NextBoxNumber     int      `json:"next_box_number"`
}

// AddInvoiceItemPayload is the request body for POST /pos/invoice/{id}/item
type AddInvoiceItemPayload struct {
	StockID        int     `json:"stock_id"`
	Quantity       int     `json:"quantity"`
	SellingPrice   float64 `json:"selling_price"`
	DiscountType   string  `json:"discount_type,omitempty"`
	DiscountAmount float64 `json:"discount_amount"`
}
