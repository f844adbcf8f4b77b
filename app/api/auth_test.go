package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func loginServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(body))
	}))
}

func TestLoginTokenShapes(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		token    string
		userID   int
		username string
	}{
		{
			"camelCase with user object",
			`{"accessToken":"t1","user":{"id":5,"username":"cashier"}}`,
			"t1", 5, "cashier",
		},
		{
			"snake_case token, root user_id",
			`{"access_token":"t2","user_id":9}`,
			"t2", 9, "",
		},
		{
			"wrapped in data",
			`{"data":{"token":"t3","user":{"user_id":11,"email":"pos@shop.example"}}}`,
			"t3", 11, "pos@shop.example",
		},
		{
			"flat user fields",
			`{"token":"t4","id":3,"name":"Front Desk"}`,
			"t4", 3, "Front Desk",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := loginServer(t, tc.body)
			defer server.Close()

			client := NewClient(server.URL, nil)
			result, err := client.Login(context.Background(), "user", "pass")
			if err != nil {
				t.Fatalf("Login: %v", err)
			}
			if result.Token != tc.token {
				t.Errorf("Token = %q, want %q", result.Token, tc.token)
			}
			if result.UserID != tc.userID {
				t.Errorf("UserID = %d, want %d", result.UserID, tc.userID)
			}
			if result.Username != tc.username {
				t.Errorf("Username = %q, want %q", result.Username, tc.username)
			}
		})
	}
}

func TestLoginWithoutToken(t *testing.T) {
	server := loginServer(t, `{"user":{"id":5}}`)
	defer server.Close()

	client := NewClient(server.URL, nil)
	if _, err := client.Login(context.Background(), "user", "pass"); err == nil {
		t.Error("expected error when no token in response")
	}
}

func TestLoginSendsEmailField(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.Write([]byte(`{"token":"t"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, nil)
	if _, err := client.Login(context.Background(), "cashier1", "secret"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	want := `{"email":"cashier1","password":"secret"}`
	if gotBody != want {
		t.Errorf("request body = %s, want %s", gotBody, want)
	}
}
