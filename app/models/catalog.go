package models

import "github.com/shopspring/decimal"

// Item is a catalog entry. Read-only from the terminal's perspective.
type Item struct {
	ID            int    `json:"id"`
	SubCategoryID int    `json:"sub_category_id,omitempty"`
	Name          string `json:"name"`
	OtherName     string `json:"other_name,omitempty"`
	Description   string `json:"description,omitempty"`
	Origin        string `json:"origin,omitempty"`
	SKU           string `json:"sku"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// Outlet is a physical stock location
type Outlet struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Stock is a per-outlet quantity and price for an item. Prices are
// pointers because which price field is populated varies by backend
// version; StockPrice wins, then RetailPrice, then SellingPrice.
type Stock struct {
	ID           int              `json:"id"`
	ItemID       int              `json:"item_id"`
	OutletID     int              `json:"outlet_id,omitempty"`
	Quantity     decimal.Decimal  `json:"quantity"`
	StockPrice   *decimal.Decimal `json:"stock_price,omitempty"`
	RetailPrice  *decimal.Decimal `json:"retail_price,omitempty"`
	SellingPrice *decimal.Decimal `json:"selling_price,omitempty"`

	// Denormalized display fields present on some endpoints
	SKU         string  `json:"sku,omitempty"`
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	OutletName  string  `json:"outlet_name,omitempty"`
	Outlet      *Outlet `json:"outlet,omitempty"`
}

// UnitPrice resolves the selling price by the backend's priority order
func (s *Stock) UnitPrice() decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	if s.StockPrice != nil {
		return *s.StockPrice
	}
	if s.RetailPrice != nil {
		return *s.RetailPrice
	}
	if s.SellingPrice != nil {
		return *s.SellingPrice
	}
	return decimal.Zero
}

// ResolveOutletName returns the outlet name wherever the backend put it
func (s *Stock) ResolveOutletName() string {
	if s == nil {
		return ""
	}
	if s.OutletName != "" {
		return s.OutletName
	}
	if s.Outlet != nil {
		return s.Outlet.Name
	}
	return ""
}
