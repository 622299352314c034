package api

import (
	"context"
	"errors"

	"github.com/xli340/carbn/internal/types"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Token string     `json:"token"`
		User  types.User `json:"user"`
	} `json:"data"`
}

// Login authenticates with the platform and returns the new session. A 400
// or 401 response is normalized to an AuthError with the fixed
// incorrect-credentials message; other failures surface the raw server
// message. The client's token is updated on success.
func (c *Client) Login(ctx context.Context, email, password string) (*types.Session, error) {
	var resp loginResponse
	err := c.postJSON(ctx, "/api/v1/auth/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == 400 || apiErr.Status == 401) {
			return nil, &AuthError{Status: apiErr.Status}
		}
		return nil, err
	}

	c.SetToken(resp.Data.Token)
	return &types.Session{Token: resp.Data.Token, User: resp.Data.User}, nil
}
