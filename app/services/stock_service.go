package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"PosTerminal/app/api"
	"PosTerminal/app/database"
	"PosTerminal/app/models"
)

const (
	itemPageSize       = 10
	stockViewPageSize  = 20
	stockFetchPageSize = 200
	stockFetchMaxPages = 50
)

// StockService backs product selection and the stock overview screen.
// Quantities shown here are optimistic; the backend re-validates stock
// when an invoice item is created.
type StockService struct {
	client          *api.Client
	store           *database.LocalStore
	logger          *LoggerService
	defaultOutletID int
}

// NewStockService creates a new stock service
func NewStockService(client *api.Client, store *database.LocalStore, logger *LoggerService, defaultOutletID int) *StockService {
	return &StockService{client: client, store: store, logger: logger, defaultOutletID: defaultOutletID}
}

// OutletID resolves the outlet this terminal sells from: the stored
// override, then the configured default, then outlet 1.
func (s *StockService) OutletID() int {
	if v, err := s.store.GetValue(database.KeyOutletID); err == nil && v != "" {
		if id, err := strconv.Atoi(v); err == nil && id > 0 {
			return id
		}
	}
	if s.defaultOutletID > 0 {
		return s.defaultOutletID
	}
	return 1
}

// SearchItems fetches catalog items matching the name filter. Read
// failures degrade to an empty list.
func (s *StockService) SearchItems(ctx context.Context, name string) []models.Item {
	items, err := s.client.ListItems(ctx, name)
	if err != nil {
		s.logger.LogError("Failed to fetch items", err)
		return nil
	}
	return items
}

// ItemPage is one page of catalog items
type ItemPage struct {
	Items       []models.Item `json:"items"`
	TotalPages  int           `json:"total_pages"`
	CurrentPage int           `json:"current_page"`
}

// ItemsPage slices the item list for display
func (s *StockService) ItemsPage(items []models.Item, page int) ItemPage {
	start, end, totalPages, current := pageBounds(len(items), itemPageSize, page)
	return ItemPage{Items: items[start:end], TotalPages: totalPages, CurrentPage: current}
}

// OutletStocks loads current stock for this terminal's outlet, keyed by
// item id, along with the outlet's display name (taken from the first
// row that carries one).
func (s *StockService) OutletStocks(ctx context.Context) (map[int]models.Stock, string) {
	stocks, err := s.client.StocksByOutlet(ctx, s.OutletID())
	if err != nil {
		s.logger.LogError("Failed to load outlet stocks", err)
		return map[int]models.Stock{}, ""
	}

	byItem := make(map[int]models.Stock, len(stocks))
	outletName := ""
	for _, stock := range stocks {
		if stock.ItemID > 0 {
			byItem[stock.ItemID] = stock
		}
		if outletName == "" {
			outletName = stock.ResolveOutletName()
		}
	}
	return byItem, outletName
}

// StockSelection is the resolved stock context for a selected item
type StockSelection struct {
	StockID   int             `json:"stock_id"`
	Available int             `json:"available"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SelectForItem resolves the stock row backing an item in the current
// outlet. Items without stock cannot be added to an invoice.
func (s *StockService) SelectForItem(stocks map[int]models.Stock, item models.Item) (*StockSelection, error) {
	stock, ok := stocks[item.ID]
	if !ok {
		return nil, fmt.Errorf("no stock found for this item in current outlet")
	}
	return &StockSelection{
		StockID:   stock.ID,
		Available: int(stock.Quantity.IntPart()),
		UnitPrice: stock.UnitPrice(),
	}, nil
}

// BuildDraftLine turns a selected item into a draft line, applying the
// optimistic pre-check against available quantity. Quantity text that
// does not parse to a positive integer falls back to 1.
func (s *StockService) BuildDraftLine(item models.Item, selection *StockSelection, quantityText string) (*models.DraftLine, error) {
	if selection == nil || selection.StockID <= 0 {
		return nil, fmt.Errorf("please select an item with available stock first")
	}

	qty, err := strconv.Atoi(strings.TrimSpace(quantityText))
	if err != nil || qty < 1 {
		qty = 1
	}
	if qty > selection.Available {
		return nil, fmt.Errorf("insufficient stock, available: %d", selection.Available)
	}

	return &models.DraftLine{
		ItemID:      item.ID,
		StockID:     selection.StockID,
		SKU:         item.SKU,
		Name:        item.Name,
		Description: item.Description,
		UnitPrice:   selection.UnitPrice,
		Qty:         qty,
	}, nil
}

// AllStocks loads the whole stock list by paging until the backend
// returns a short page.
func (s *StockService) AllStocks(ctx context.Context) []models.Stock {
	var all []models.Stock
	skip := 0
	for i := 0; i < stockFetchMaxPages; i++ {
		page, err := s.client.ListStocks(ctx, stockFetchPageSize, skip)
		if err != nil {
			s.logger.LogError("Failed to load stocks", err)
			return nil
		}
		all = append(all, page...)
		if len(page) < stockFetchPageSize {
			break
		}
		skip += stockFetchPageSize
	}
	return all
}

// FilterStocks applies the stock overview search across item name, SKU
// and description.
func (s *StockService) FilterStocks(stocks []models.Stock, search string) []models.Stock {
	query := strings.ToLower(strings.TrimSpace(search))
	if query == "" {
		return stocks
	}

	filtered := make([]models.Stock, 0, len(stocks))
	for _, stock := range stocks {
		if strings.Contains(strings.ToLower(stock.Name), query) ||
			strings.Contains(strings.ToLower(stock.SKU), query) ||
			strings.Contains(strings.ToLower(stock.Description), query) {
			filtered = append(filtered, stock)
		}
	}
	return filtered
}

// StockPage is one page of the stock overview
type StockPage struct {
	Stocks      []models.Stock `json:"stocks"`
	TotalPages  int            `json:"total_pages"`
	CurrentPage int            `json:"current_page"`
}

// StocksPage slices the filtered stock list for display
func (s *StockService) StocksPage(stocks []models.Stock, page int) StockPage {
	start, end, totalPages, current := pageBounds(len(stocks), stockViewPageSize, page)
	return StockPage{Stocks: stocks[start:end], TotalPages: totalPages, CurrentPage: current}
}
