package services

import (
	"context"
	"strconv"
	"strings"

	"PosTerminal/app/api"
	"PosTerminal/app/models"
)

const (
	customerFetchLimit    = 200
	customerFetchMaxPages = 50
	customerPageSize      = 10
)

// CustomerService backs the customer directory: list, search, create
// and update. Filtering and pagination happen locally over a fetch-all
// snapshot, matching how the terminal screens consume the directory.
type CustomerService struct {
	client   *api.Client
	identity IdentityProvider
	logger   *LoggerService
}

// NewCustomerService creates a new customer service
func NewCustomerService(client *api.Client, identity IdentityProvider, logger *LoggerService) *CustomerService {
	return &CustomerService{client: client, identity: identity, logger: logger}
}

// FetchAll pages through the directory until the backend returns a
// short page. The page cap keeps a misbehaving backend from looping
// forever.
func (s *CustomerService) FetchAll(ctx context.Context) ([]models.Customer, error) {
	var all []models.Customer
	for page := 1; page <= customerFetchMaxPages; page++ {
		customers, err := s.client.ListCustomers(ctx, page, customerFetchLimit, "")
		if err != nil {
			return nil, err
		}
		if len(customers) == 0 {
			break
		}
		all = append(all, customers...)
		if len(customers) < customerFetchLimit {
			break
		}
	}
	return all, nil
}

// DirectoryByID returns the directory keyed by customer id. Rows
// without a usable id are dropped. Read failures degrade to an empty
// map so list screens show "no results" instead of an error screen.
func (s *CustomerService) DirectoryByID(ctx context.Context) map[int]models.Customer {
	customers, err := s.FetchAll(ctx)
	if err != nil {
		s.logger.LogError("Failed to load customer directory", err)
		return map[int]models.Customer{}
	}

	directory := make(map[int]models.Customer, len(customers))
	for _, customer := range customers {
		if customer.ID <= 0 {
			continue
		}
		directory[customer.ID] = customer
	}
	return directory
}

// Filter applies the directory search: case-insensitive substring match
// over id, name, address, telephone and description.
func (s *CustomerService) Filter(customers []models.Customer, search string) []models.Customer {
	query := strings.ToLower(strings.TrimSpace(search))
	if query == "" {
		return customers
	}

	filtered := make([]models.Customer, 0, len(customers))
	for _, customer := range customers {
		if strings.Contains(strconv.Itoa(customer.ID), query) ||
			strings.Contains(strings.ToLower(customer.DisplayName()), query) ||
			strings.Contains(strings.ToLower(customer.Address), query) ||
			strings.Contains(strings.ToLower(customer.Telephone), query) ||
			strings.Contains(strings.ToLower(customer.Description), query) {
			filtered = append(filtered, customer)
		}
	}
	return filtered
}

// CustomerPage is one page of the filtered directory
type CustomerPage struct {
	Customers   []models.Customer `json:"customers"`
	TotalPages  int               `json:"total_pages"`
	CurrentPage int               `json:"current_page"`
}

// Page slices the filtered directory for display
func (s *CustomerService) Page(customers []models.Customer, page int) CustomerPage {
	start, end, totalPages, current := pageBounds(len(customers), customerPageSize, page)
	return CustomerPage{
		Customers:   customers[start:end],
		TotalPages:  totalPages,
		CurrentPage: current,
	}
}

// Create creates a customer, stamping added_by with the current user
// (falling back to 1 when no identity is resolvable, as the terminal
// always has at least the built-in operator).
func (s *CustomerService) Create(ctx context.Context, payload models.CreateCustomerPayload) (*models.Customer, error) {
	payload.AddedBy = s.identity.CurrentUserID()
	if payload.AddedBy <= 0 {
		payload.AddedBy = 1
	}

	customer, err := s.client.CreateCustomer(ctx, payload)
	if err != nil {
		s.logger.LogError("Failed to create customer", err)
		return nil, err
	}
	return customer, nil
}

// Update patches fields on an existing customer
func (s *CustomerService) Update(ctx context.Context, id int, fields map[string]interface{}) (*models.Customer, error) {
	customer, err := s.client.UpdateCustomer(ctx, id, fields)
	if err != nil {
		s.logger.LogError("Failed to update customer", err)
		return nil, err
	}
	return customer, nil
}
