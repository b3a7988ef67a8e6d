package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// User is the identity endpoint payload.
type User struct {
	Name string `json:"name"`
}

// Me returns the user owning token.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	data, err := c.do(ctx, http.MethodGet, MePath, url.Values{"token": {token}}, nil, nil)
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// Logout ends the session identified by token and returns the server's message.
func (c *Client) Logout(ctx context.Context, email, token string) (string, error) {
	body := map[string]string{"email": email, "token": token}
	header := http.Header{"Authorization": {"Bearer " + token}}
	data, err := c.do(ctx, http.MethodPost, LogoutPath, nil, body, header)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
