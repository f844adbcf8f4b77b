package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"PosTerminal/app/models"
)

// ListCustomers fetches one page of the customer directory
func (c *Client) ListCustomers(ctx context.Context, page, limit int, search string) ([]models.Customer, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	if search != "" {
		query.Set("search", search)
	}

	body, err := c.Get(ctx, "/pos/customers", query)
	if err != nil {
		return nil, err
	}

	rows, err := UnwrapList(body, "customers")
	if err != nil {
		return nil, err
	}

	customers := make([]models.Customer, 0, len(rows))
	for _, row := range rows {
		var customer models.Customer
		if err := json.Unmarshal(row, &customer); err != nil {
			continue
		}
		customers = append(customers, customer)
	}
	return customers, nil
}

// CreateCustomer creates a customer and returns the persisted record
func (c *Client) CreateCustomer(ctx context.Context, payload models.CreateCustomerPayload) (*models.Customer, error) {
	body, err := c.Post(ctx, "/pos/customer", payload)
	if err != nil {
		return nil, err
	}

	var customer models.Customer
	if err := json.Unmarshal(UnwrapObject(body), &customer); err != nil {
		return nil, fmt.Errorf("could not parse created customer: %w", err)
	}
	return &customer, nil
}

// UpdateCustomer patches the given fields on a customer record
func (c *Client) UpdateCustomer(ctx context.Context, id int, fields map[string]interface{}) (*models.Customer, error) {
	body, err := c.Patch(ctx, fmt.Sprintf("/pos/customer/%d", id), fields)
	if err != nil {
		return nil, err
	}

	var customer models.Customer
	if err := json.Unmarshal(UnwrapObject(body), &customer); err != nil {
		return nil, fmt.Errorf("could not parse updated customer: %w", err)
	}
	return &customer, nil
}
