package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType selects how the draft discount is applied
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// DraftPhase is the lifecycle state of the in-memory invoice draft
type DraftPhase string

const (
	PhaseEmpty     DraftPhase = "empty"
	PhaseBuilding  DraftPhase = "building"
	PhaseSent      DraftPhase = "sent"
	PhaseCancelled DraftPhase = "cancelled"
	PhaseRecovered DraftPhase = "recovered"
)

// DraftLine is one line of the in-memory draft invoice. Identity is the
// catalog item id; adding the same item twice merges quantities.
type DraftLine struct {
	ItemID      int             `json:"id"`
	StockID     int             `json:"stock_id,omitempty"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Qty         int             `json:"qty"`
}

// LineTotal is unit price times quantity
func (l DraftLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// DraftTotals is the computed money summary of a draft
type DraftTotals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// OfflineDraft is the blob stashed in the local store when the screen is
// torn down before a customer was chosen. It keeps the cashier's work
// from silently disappearing.
type OfflineDraft struct {
	Reason         string          `json:"reason"`
	SavedAt        time.Time       `json:"saved_at"`
	Customer       *Customer       `json:"customer"`
	Items          []DraftLine     `json:"items"`
	BoxQty         string          `json:"qty"`
	DiscountType   DiscountType    `json:"discount_type"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
}

// DraftSnapshot is the read-only view of the draft pushed to customer
// display clients and served from the display server's REST endpoint.
type DraftSnapshot struct {
	Phase         DraftPhase  `json:"phase"`
	CustomerName  string      `json:"customer_name"`
	Items         []DraftLine `json:"items"`
	Totals        DraftTotals `json:"totals"`
	BoxQty        string      `json:"box_qty"`
	InvoiceNumber string      `json:"invoice_number"`
}
