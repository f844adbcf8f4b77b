package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"PosTerminal/app/models"
)

// ListItems fetches catalog items, optionally filtered by name
func (c *Client) ListItems(ctx context.Context, name string) ([]models.Item, error) {
	var query url.Values
	if name != "" {
		query = url.Values{"name": {name}}
	}

	body, err := c.Get(ctx, "/store/items", query)
	if err != nil {
		return nil, err
	}

	rows, err := UnwrapList(body, "items")
	if err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(rows))
	for _, row := range rows {
		var item models.Item
		if err := json.Unmarshal(row, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// StocksByOutlet fetches current stock rows for one outlet
func (c *Client) StocksByOutlet(ctx context.Context, outletID int) ([]models.Stock, error) {
	body, err := c.Get(ctx, fmt.Sprintf("/store/stocks/%d", outletID), nil)
	if err != nil {
		return nil, err
	}
	return decodeStocks(body)
}

// ListStocks fetches one page of the full stock list
func (c *Client) ListStocks(ctx context.Context, take, skip int) ([]models.Stock, error) {
	query := url.Values{}
	query.Set("take", strconv.Itoa(take))
	query.Set("skip", strconv.Itoa(skip))

	body, err := c.Get(ctx, "/store/stocks", query)
	if err != nil {
		return nil, err
	}
	return decodeStocks(body)
}

func decodeStocks(body []byte) ([]models.Stock, error) {
	rows, err := UnwrapList(body, "stocks")
	if err != nil {
		return nil, err
	}

	stocks := make([]models.Stock, 0, len(rows))
	for _, row := range rows {
		var stock models.Stock
		if err := json.Unmarshal(row, &stock); err != nil {
			continue
		}
		stocks = append(stocks, stock)
	}
	return stocks, nil
}
