package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/gugverein/portal/internal/model"
)

// TokenResponse is the payload of a successful authentication call.
type TokenResponse struct {
	Token string `json:"token"`
}

// loginRequest is the credential pair sent to the token endpoint.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for a new member registration.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"required"`
}

// Login exchanges a username/password pair for a bearer token. An
// authorization failure here is returned to the caller without touching
// the current session: a rejected login must not clear a token that was
// never stored.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp TokenResponse
	err := c.send(
		ctx, "POST", "/jwt-auth/v1/token",
		loginRequest{Username: username, Password: password},
		&resp, true,
	)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Me fetches the authenticated member's profile.
func (c *Client) Me(ctx context.Context) (*model.Profile, error) {
	var p model.Profile
	if err := c.Get(ctx, "/gug/v1/me", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Register submits a new member registration.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.Post(ctx, "/gug/v1/register", req, nil)
}

// VerifyEmail confirms a member's email address with the uid/token pair
// from the verification mail.
func (c *Client) VerifyEmail(ctx context.Context, uid, token string) error {
	path := fmt.Sprintf(
		"/gug/v1/verify-email?uid=%s&token=%s",
		url.QueryEscape(uid), url.QueryEscape(token),
	)
	return c.Get(ctx, path, nil)
}
