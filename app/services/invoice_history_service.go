package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"PosTerminal/app/api"
	"PosTerminal/app/models"
)

const (
	recallPageSize  = 10
	historyPageSize = 20
)

// InvoiceHistoryService backs the previous-invoice list and the recall
// picker. Listing is read-only; recalling hands a fully loaded invoice
// to the draft workflow.
type InvoiceHistoryService struct {
	client    *api.Client
	customers *CustomerService
	logger    *LoggerService
}

// NewInvoiceHistoryService creates a new invoice history service
func NewInvoiceHistoryService(client *api.Client, customers *CustomerService, logger *LoggerService) *InvoiceHistoryService {
	return &InvoiceHistoryService{client: client, customers: customers, logger: logger}
}

// LoadAll fetches every invoice visible to the terminal, attaching
// customer objects from the directory when the backend omitted them.
// Read failures degrade to an empty list.
func (s *InvoiceHistoryService) LoadAll(ctx context.Context) []models.Invoice {
	invoices, err := s.client.ListInvoices(ctx)
	if err != nil {
		s.logger.LogError("Failed to load invoices", err)
		return nil
	}

	directory := s.customers.DirectoryByID(ctx)
	for i := range invoices {
		if invoices[i].Customer == nil {
			if customer, ok := directory[invoices[i].CustomerID]; ok {
				attached := customer
				invoices[i].Customer = &attached
			}
		}
	}
	return invoices
}

// Recallable keeps only invoices whose normalized status still allows
// recall (pending or active).
func (s *InvoiceHistoryService) Recallable(invoices []models.Invoice) []models.Invoice {
	recallable := make([]models.Invoice, 0, len(invoices))
	for _, invoice := range invoices {
		if models.IsRecallable(invoice.Status) {
			recallable = append(recallable, invoice)
		}
	}
	return recallable
}

// CustomerName resolves a display name for an invoice row
func (s *InvoiceHistoryService) CustomerName(invoice models.Invoice) string {
	if invoice.Customer != nil {
		return invoice.Customer.DisplayName()
	}
	if invoice.CustomerID > 0 {
		return fmt.Sprintf("Customer %d", invoice.CustomerID)
	}
	return "Customer"
}

// FilterForRecall applies the recall picker search: id, invoice number,
// creation date, customer name and creator name.
func (s *InvoiceHistoryService) FilterForRecall(invoices []models.Invoice, search string) []models.Invoice {
	query := strings.ToLower(strings.TrimSpace(search))
	if query == "" {
		return invoices
	}

	filtered := make([]models.Invoice, 0, len(invoices))
	for _, invoice := range invoices {
		if strings.Contains(strconv.Itoa(invoice.ID), query) ||
			strings.Contains(strings.ToLower(invoice.InvoiceNo), query) ||
			strings.Contains(strings.ToLower(invoice.CreatedAt), query) ||
			strings.Contains(strings.ToLower(s.CustomerName(invoice)), query) ||
			strings.Contains(strings.ToLower(invoice.CreatorName()), query) {
			filtered = append(filtered, invoice)
		}
	}
	return filtered
}

// FilterHistory applies the previous-invoice view search: invoice
// number, status and creator name.
func (s *InvoiceHistoryService) FilterHistory(invoices []models.Invoice, search string) []models.Invoice {
	query := strings.ToLower(strings.TrimSpace(search))
	if query == "" {
		return invoices
	}

	filtered := make([]models.Invoice, 0, len(invoices))
	for _, invoice := range invoices {
		if strings.Contains(strings.ToLower(invoice.InvoiceNo), query) ||
			strings.Contains(strings.ToLower(invoice.Status), query) ||
			strings.Contains(strings.ToLower(invoice.CreatorName()), query) {
			filtered = append(filtered, invoice)
		}
	}
	return filtered
}

// InvoicePage is one page of an invoice list
type InvoicePage struct {
	Invoices    []models.Invoice `json:"invoices"`
	TotalPages  int              `json:"total_pages"`
	CurrentPage int              `json:"current_page"`
}

// RecallPage slices the recall picker list
func (s *InvoiceHistoryService) RecallPage(invoices []models.Invoice, page int) InvoicePage {
	start, end, totalPages, current := pageBounds(len(invoices), recallPageSize, page)
	return InvoicePage{Invoices: invoices[start:end], TotalPages: totalPages, CurrentPage: current}
}

// HistoryPage slices the previous-invoice view list
func (s *InvoiceHistoryService) HistoryPage(invoices []models.Invoice, page int) InvoicePage {
	start, end, totalPages, current := pageBounds(len(invoices), historyPageSize, page)
	return InvoicePage{Invoices: invoices[start:end], TotalPages: totalPages, CurrentPage: current}
}

// FullInvoice loads the complete invoice (items and customer embedded)
// ahead of a recall. A failed fetch falls back to the row the list
// already had so recall still works with whatever detail is present.
func (s *InvoiceHistoryService) FullInvoice(ctx context.Context, invoice models.Invoice) models.Invoice {
	full, err := s.client.GetInvoice(ctx, invoice.ID)
	if err != nil {
		s.logger.LogWarning("Could not fetch full invoice for recall", err.Error())
		return invoice
	}

	if full.Customer == nil {
		full.Customer = invoice.Customer
	}
	return *full
}
