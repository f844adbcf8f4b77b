package api

import (
	"context"
	"encoding/json"
	"fmt"

	"PosTerminal/app/models"
)

// ListInvoices fetches all invoices visible to this terminal
func (c *Client) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	body, err := c.Get(ctx, "/pos/invoices", nil)
	if err != nil {
		return nil, err
	}

	rows, err := UnwrapList(body, "invoices")
	if err != nil {
		return nil, err
	}

	invoices := make([]models.Invoice, 0, len(rows))
	for _, row := range rows {
		var invoice models.Invoice
		if err := json.Unmarshal(row, &invoice); err != nil {
			continue
		}
		invoices = append(invoices, invoice)
	}
	return invoices, nil
}

// GetInvoice fetches one invoice with its items and customer embedded
func (c *Client) GetInvoice(ctx context.Context, id int) (*models.Invoice, error) {
	body, err := c.Get(ctx, fmt.Sprintf("/pos/invoice/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var invoice models.Invoice
	if err := json.Unmarshal(UnwrapObject(body), &invoice); err != nil {
		return nil, fmt.Errorf("could not parse invoice: %w", err)
	}
	return &invoice, nil
}

// CreateInvoice creates a persisted invoice record
func (c *Client) CreateInvoice(ctx context.Context, payload models.CreateInvoicePayload) (*models.Invoice, error) {
	body, err := c.Post(ctx, "/pos/invoice", payload)
	if err != nil {
		return nil, err
	}

	var invoice models.Invoice
	if err := json.Unmarshal(UnwrapObject(body), &invoice); err != nil {
		return nil, fmt.Errorf("could not parse created invoice: %w", err)
	}
	return &invoice, nil
}

// UpdateInvoice patches fields (status, paid_amount, ...) on an invoice
func (c *Client) UpdateInvoice(ctx context.Context, id int, fields map[string]interface{}) error {
	_, err := c.Patch(ctx, fmt.Sprintf("/pos/invoice/%d", id), fields)
	return err
}

// AddInvoiceItem attaches one line to a persisted invoice
func (c *Client) AddInvoiceItem(ctx context.Context, invoiceID int, payload models.AddInvoiceItemPayload) error {
	_, err := c.Post(ctx, fmt.Sprintf("/pos/invoice/%d/item", invoiceID), payload)
	return err
}
