package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveBaseURL(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"", "/api"},
		{"   ", "/api"},
		{"http://erp.local", "http://erp.local/api"},
		{"http://erp.local/", "http://erp.local/api"},
		{"http://erp.local///", "http://erp.local/api"},
		{"http://erp.local/api", "http://erp.local/api"},
		{"http://erp.local/api/", "http://erp.local/api"},
		{"  http://erp.local  ", "http://erp.local/api"},
	}

	for _, tc := range cases {
		if got := ResolveBaseURL(tc.raw); got != tc.want {
			t.Errorf("ResolveBaseURL(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestBearerTokenInjection(t *testing.T) {
	var gotAuth, gotContentType, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, func() string { return "tok-123" })
	if _, err := client.Get(context.Background(), "/pos/invoices", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
}

func TestNoTokenNoAuthorizationHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, func() string { return "" })
	if _, err := client.Get(context.Background(), "/items", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if gotAuth != "" {
		t.Errorf("Authorization header set without a token: %q", gotAuth)
	}
}

func TestErrorMessageProbing(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"message key", `{"message":"invoice not found"}`, 404, "invoice not found"},
		{"error key", `{"error":"bad credentials"}`, 401, "bad credentials"},
		{"detail key", `{"detail":"missing field"}`, 422, "missing field"},
		{"non-json body", `internal server error`, 500, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, nil)
			_, err := client.Get(context.Background(), "/pos/invoices", nil)
			apiErr, ok := err.(*Error)
			if !ok {
				t.Fatalf("expected *Error, got %T (%v)", err, err)
			}
			if apiErr.Status != tc.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tc.status)
			}
			if apiErr.Message != tc.message {
				t.Errorf("Message = %q, want %q", apiErr.Message, tc.message)
			}
		})
	}
}

func TestBaseURLAppendedToRequests(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	if _, err := client.Get(context.Background(), "/pos/customer", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}

	if gotPath != "/api/pos/customer" {
		t.Errorf("path = %q, want %q", gotPath, "/api/pos/customer")
	}
}
