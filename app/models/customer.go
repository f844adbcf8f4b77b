package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Customer represents a customer record owned by the ERP backend.
// Field names vary across backend versions, so the variant keys are
// carried alongside the canonical ones and resolved by DisplayName.
type Customer struct {
	ID          int    `json:"id"`
	FirstName   string `json:"first_name,omitempty"`
	MiddleName  string `json:"middle_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Address     string `json:"address,omitempty"`
	Telephone   string `json:"telephone,omitempty"`
	Description string `json:"description,omitempty"`
	AddedBy     int    `json:"added_by,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`

	// Variant keys some backend versions use instead
	Name     string `json:"name,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// DisplayName resolves a printable customer name across the shapes the
// backend is known to return.
func (c *Customer) DisplayName() string {
	if c == nil {
		return "Customer"
	}
	if v := strings.TrimSpace(c.FullName); v != "" {
		return v
	}
	full := strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
	if full != "" {
		return full
	}
	if v := strings.TrimSpace(c.Name); v != "" {
		return v
	}
	if c.ID > 0 {
		return fmt.Sprintf("Customer %d", c.ID)
	}
	return "Customer"
}

// UnmarshalJSON tolerates the customer shapes the backend has shipped
// over time: a full object (snake_case or camelCase keys), a bare name
// string, or a bare numeric id.
func (c *Customer) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*c = Customer{FullName: strings.TrimSpace(asString)}
		return nil
	}

	var asID int
	if err := json.Unmarshal(data, &asID); err == nil {
		*c = Customer{ID: asID}
		return nil
	}

	type plain Customer
	var row struct {
		plain
		IDAlt        *int   `json:"customer_id"`
		FirstNameAlt string `json:"firstName"`
		LastNameAlt  string `json:"lastName"`
		FullNameAlt  string `json:"fullName"`
	}
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}

	out := Customer(row.plain)
	if out.ID == 0 && row.IDAlt != nil {
		out.ID = *row.IDAlt
	}
	if out.FirstName == "" {
		out.FirstName = row.FirstNameAlt
	}
	if out.LastName == "" {
		out.LastName = row.LastNameAlt
	}
	if out.FullName == "" {
		out.FullName = row.FullNameAlt
	}
	*c = out
	return nil
}

// CreateCustomerPayload is the request body for POST /pos/customer
type CreateCustomerPayload struct {
	FirstName   string `json:"first_name"`
	MiddleName  string `json:"middle_name,omitempty"`
	LastName    string `json:"last_name"`
	Address     string `json:"address,omitempty"`
	Telephone   string `json:"telephone,omitempty"`
	Description string `json:"description,omitempty"`
	AddedBy     int    `json:"added_by"`
}
