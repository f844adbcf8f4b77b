package models

import (
	"encoding/json"
	"testing"
)

func TestCustomerUnmarshalShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want Customer
	}{
		{
			"snake_case object",
			`{"id":4,"first_name":"Maya","last_name":"Chan"}`,
			Customer{ID: 4, FirstName: "Maya", LastName: "Chan"},
		},
		{
			"camelCase variants",
			`{"customer_id":7,"firstName":"Ben","lastName":"Oak","fullName":"Ben Oak"}`,
			Customer{ID: 7, FirstName: "Ben", LastName: "Oak", FullName: "Ben Oak"},
		},
		{
			"bare string",
			`"Walk-in "`,
			Customer{FullName: "Walk-in"},
		},
		{
			"bare id",
			`12`,
			Customer{ID: 12},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got Customer
			if err := json.Unmarshal([]byte(tc.body), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestCustomerDisplayName(t *testing.T) {
	cases := []struct {
		name     string
		customer *Customer
		want     string
	}{
		{"full name wins", &Customer{FullName: "Ada L", FirstName: "X"}, "Ada L"},
		{"first and last", &Customer{FirstName: "Ada", LastName: "L"}, "Ada L"},
		{"first only", &Customer{FirstName: "Ada"}, "Ada"},
		{"name variant", &Customer{Name: "Regular"}, "Regular"},
		{"id fallback", &Customer{ID: 42}, "Customer 42"},
		{"empty", &Customer{}, "Customer"},
		{"nil", nil, "Customer"},
	}

	for _, tc := range cases {
		if got := tc.customer.DisplayName(); got != tc.want {
			t.Errorf("%s: DisplayName = %q, want %q", tc.name, got, tc.want)
		}
	}
}
