package api

import (
	"context"
	"encoding/json"
	"fmt"
)

// LoginResult is the normalized outcome of a login call
type LoginResult struct {
	Token    string
	UserID   int
	Username string
}

type loginUser struct {
	ID       int    `json:"id"`
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type loginBody struct {
	AccessToken string     `json:"accessToken"`
	AccessSnake string     `json:"access_token"`
	Token       string     `json:"token"`
	User        *loginUser `json:"user"`
	UserID      int        `json:"user_id"`
	loginUser
}

// Login exchanges credentials for a bearer token and user identity.
// Token and user id locations vary across backend versions, so every
// known shape is probed before giving up.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	body, err := c.Post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var root loginBody
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("could not parse login response: %w", err)
	}

	var nested loginBody
	_ = json.Unmarshal(UnwrapObject(body), &nested)

	token := firstNonEmpty(nested.AccessToken, root.AccessSnake, nested.Token, root.AccessToken, root.Token)
	if token == "" {
		return nil, fmt.Errorf("no token received from server")
	}

	result := &LoginResult{Token: token}

	user := nested.User
	if user == nil {
		user = &nested.loginUser
	}
	if user.ID != 0 {
		result.UserID = user.ID
	} else if user.UserID != 0 {
		result.UserID = user.UserID
	} else if root.UserID != 0 {
		result.UserID = root.UserID
	}
	result.Username = firstNonEmpty(user.Username, user.Name, user.Email)

	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
